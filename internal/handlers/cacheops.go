package handlers

import (
	"net/http"

	"gallery-tags/internal/logging"
)

// RefreshCacheRequest is the body for POST /api/cache/refresh.
type RefreshCacheRequest struct {
	FullRescan bool `json:"fullRescan,omitempty"`
}

// RefreshCache rescans the current folder. The default quick refresh
// re-reads only files whose mtime or size changed; fullRescan re-reads
// everything, picking up tag edits made by other tools that preserve
// file timestamps.
func (h *Handlers) RefreshCache(w http.ResponseWriter, r *http.Request) {
	folder, recursive, _, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	var req RefreshCacheRequest
	if r.ContentLength > 0 {
		if err := decodeJSONBody(r, &req); err != nil {
			writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	records, err := h.scanner.LoadFolder(r.Context(), folder, recursive, req.FullRescan)
	if err != nil && records == nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err != nil {
		logging.Warn("Refresh of %s completed but cache save failed: %v", folder, err)
	}

	h.setState(folder, recursive, records)

	writeJSON(w, FolderResponse{
		Folder:    folder,
		Recursive: recursive,
		Count:     len(records),
		Images:    records,
	})
}

// ClearCache drops the persisted tag cache. The loaded records stay as
// they are; the next scan rebuilds the cache from file metadata.
func (h *Handlers) ClearCache(w http.ResponseWriter, _ *http.Request) {
	if err := h.scanner.ClearCache(); err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "cleared")
}

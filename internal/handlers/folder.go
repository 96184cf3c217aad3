package handlers

import (
	"net/http"
	"path/filepath"

	"gallery-tags/internal/logging"
	"gallery-tags/internal/scanner"
)

// OpenFolderRequest is the body for POST /api/folder/open.
type OpenFolderRequest struct {
	Path      string `json:"path"`
	Recursive *bool  `json:"recursive,omitempty"`
}

// FolderResponse describes the open folder and its loaded records.
type FolderResponse struct {
	Folder    string                `json:"folder"`
	Recursive bool                  `json:"recursive"`
	Count     int                   `json:"count"`
	Images    []scanner.ImageRecord `json:"images"`
}

// OpenFolder scans a folder and makes it the current working set. A
// quick refresh is enough here: unchanged files come from the cache.
func (h *Handlers) OpenFolder(w http.ResponseWriter, r *http.Request) {
	var req OpenFolderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}

	recursive := h.config.ScanRecursive
	if req.Recursive != nil {
		recursive = *req.Recursive
	}

	// Resolve up front so folder-scoped routes agree on path prefixes.
	folder, err := filepath.Abs(req.Path)
	if err != nil {
		writeJSONError(w, "invalid path: "+err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.scanner.LoadFolder(r.Context(), folder, recursive, false)
	if err != nil && records == nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		// Records loaded but the cache could not be persisted; serve
		// them anyway, the next scan re-reads what was lost.
		logging.Warn("Folder %s opened but cache save failed: %v", folder, err)
	}

	h.setState(folder, recursive, records)

	writeJSON(w, FolderResponse{
		Folder:    folder,
		Recursive: recursive,
		Count:     len(records),
		Images:    records,
	})
}

// CurrentFolder reports the open folder without rescanning.
func (h *Handlers) CurrentFolder(w http.ResponseWriter, _ *http.Request) {
	folder, recursive, records, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, FolderResponse{
		Folder:    folder,
		Recursive: recursive,
		Count:     len(records),
		Images:    records,
	})
}

package handlers

import (
	"net/http"

	"gallery-tags/internal/imagetypes"
	"gallery-tags/internal/logging"
	"gallery-tags/internal/scanner"
	"gallery-tags/internal/tagquery"
)

// ListImagesRequest is the body for POST /api/images/list.
type ListImagesRequest struct {
	ForceRescan bool `json:"forceRescan,omitempty"`
}

// ListImages rescans the current folder. With forceRescan every file's
// metadata is re-read; otherwise only changed files are.
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	folder, recursive, _, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	var req ListImagesRequest
	if r.ContentLength > 0 {
		if err := decodeJSONBody(r, &req); err != nil {
			writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	records, err := h.scanner.LoadFolder(r.Context(), folder, recursive, req.ForceRescan)
	if err != nil && records == nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err != nil {
		logging.Warn("Rescan of %s completed but cache save failed: %v", folder, err)
	}

	h.setState(folder, recursive, records)

	writeJSON(w, FolderResponse{
		Folder:    folder,
		Recursive: recursive,
		Count:     len(records),
		Images:    records,
	})
}

// SearchResponse is the result of an in-memory tag query.
type SearchResponse struct {
	Query   string                `json:"query"`
	Mode    string                `json:"mode"`
	Terms   []string              `json:"terms"`
	Count   int                   `json:"count"`
	Total   int                   `json:"total"`
	Results []scanner.ImageRecord `json:"results"`
}

// Search filters the loaded records by a tag query and sorts the
// result. An empty query matches everything: search is a view over the
// folder, and no filter means no filtering.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	_, _, records, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	q := tagquery.Parse(r.URL.Query().Get("q"))

	matched := make([]scanner.ImageRecord, 0, len(records))
	for _, rec := range records {
		if q.Matches(rec.Tags, true) {
			matched = append(matched, rec)
		}
	}

	field, order := sortParams(r)
	scanner.SortRecords(matched, field, order)

	writeJSON(w, SearchResponse{
		Query:   r.URL.Query().Get("q"),
		Mode:    string(q.Mode),
		Terms:   q.Terms,
		Count:   len(matched),
		Total:   len(records),
		Results: matched,
	})
}

// sortParams reads sort/order query parameters, defaulting to natural
// name order ascending.
func sortParams(r *http.Request) (imagetypes.SortField, imagetypes.SortOrder) {
	field := imagetypes.SortByName
	switch r.URL.Query().Get("sort") {
	case string(imagetypes.SortByDate):
		field = imagetypes.SortByDate
	case string(imagetypes.SortBySize):
		field = imagetypes.SortBySize
	}

	order := imagetypes.SortAsc
	if r.URL.Query().Get("order") == string(imagetypes.SortDesc) {
		order = imagetypes.SortDesc
	}
	return field, order
}

package handlers

import (
	"errors"
	"net/http"

	"gallery-tags/internal/metadata"
	"gallery-tags/internal/scanner"
)

// TagsResponse is the current tag string of one file.
type TagsResponse struct {
	Path string `json:"path"`
	Tags string `json:"tags"`
}

// GetTags reads one file's tags straight through the gateway. This is
// the "am I sure" path: it bypasses the cache so the user sees exactly
// what is in the file right now.
func (h *Handlers) GetTags(w http.ResponseWriter, r *http.Request) {
	folder, _, _, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	path, err := resolveInFolder(folder, r.URL.Query().Get("path"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tags, err := h.scanner.ReadTags(r.Context(), path)
	if err != nil {
		writeJSONError(w, err.Error(), tagErrorStatus(err))
		return
	}

	writeJSON(w, TagsResponse{Path: path, Tags: tags})
}

// WriteTagsRequest is the body for POST /api/image/tags.
type WriteTagsRequest struct {
	Paths []string `json:"paths"`
	Tags  string   `json:"tags"`
}

// WriteTagsResponse carries the per-path outcomes of a batch write.
type WriteTagsResponse struct {
	Results   []scanner.WriteResult `json:"results"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
}

// WriteTags writes the same tag string to a batch of files. Per-path
// results; a failed file never blocks the rest. The response is 200
// even with partial failures, the caller inspects the results.
func (h *Handlers) WriteTags(w http.ResponseWriter, r *http.Request) {
	folder, _, _, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	var req WriteTagsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Paths) == 0 {
		writeJSONError(w, "paths is required", http.StatusBadRequest)
		return
	}

	paths := make([]string, 0, len(req.Paths))
	for _, p := range req.Paths {
		resolved, err := resolveInFolder(folder, p)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		paths = append(paths, resolved)
	}

	results, err := h.scanner.WriteTags(r.Context(), paths, req.Tags)
	if err != nil {
		// Writes went through but the cache was not persisted; the
		// results are still correct.
		writeJSONError(w, "tags written but cache save failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.applyWriteResults(results)

	resp := WriteTagsResponse{Results: results}
	for _, res := range results {
		if res.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	writeJSON(w, resp)
}

// tagErrorStatus maps gateway errors to HTTP status codes.
func tagErrorStatus(err error) int {
	switch {
	case errors.Is(err, metadata.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, metadata.ErrToolUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

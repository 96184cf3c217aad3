package handlers

import (
	"net/http"

	"gallery-tags/internal/tagquery"
)

// StatsResponse summarizes the loaded folder.
type StatsResponse struct {
	Folder            string   `json:"folder"`
	TotalImages       int      `json:"totalImages"`
	TaggedImages      int      `json:"taggedImages"`
	UntaggedImages    int      `json:"untaggedImages"`
	UnavailableImages int      `json:"unavailableImages"`
	TotalSizeBytes    int64    `json:"totalSizeBytes"`
	Vocabulary        []string `json:"vocabulary"`
	VocabularySize    int      `json:"vocabularySize"`
}

// Stats reports counts, total size, and the live tag vocabulary of the
// loaded records. The vocabulary comes from the in-memory records, not
// the cache, so it always reflects what the user currently sees.
func (h *Handlers) Stats(w http.ResponseWriter, _ *http.Request) {
	folder, _, records, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	resp := StatsResponse{Folder: folder, TotalImages: len(records)}

	tagStrings := make([]string, 0, len(records))
	for _, rec := range records {
		resp.TotalSizeBytes += rec.Size
		if rec.MetadataUnavailable {
			resp.UnavailableImages++
		}
		if rec.Tags != "" {
			resp.TaggedImages++
			tagStrings = append(tagStrings, rec.Tags)
		} else {
			resp.UntaggedImages++
		}
	}

	resp.Vocabulary = tagquery.Vocabulary(tagStrings)
	resp.VocabularySize = len(resp.Vocabulary)

	writeJSON(w, resp)
}

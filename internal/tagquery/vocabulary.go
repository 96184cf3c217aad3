package tagquery

import (
	"sort"
	"strings"
)

// Vocabulary returns the distinct tags across the given tag strings,
// deduplicated case-insensitively with the first-seen spelling kept,
// sorted alphabetically. It is a pure function of the in-memory records
// passed in, so it reflects live edits immediately, including ones not
// yet persisted to the cache.
func Vocabulary(tagStrings []string) []string {
	seen := make(map[string]string)
	for _, tagString := range tagStrings {
		if strings.TrimSpace(tagString) == "" {
			continue
		}
		for _, part := range strings.Split(tagString, ",") {
			tag := strings.TrimSpace(part)
			if tag == "" {
				continue
			}
			key := strings.ToLower(tag)
			if _, ok := seen[key]; !ok {
				seen[key] = tag
			}
		}
	}

	vocab := make([]string, 0, len(seen))
	for _, tag := range seen {
		vocab = append(vocab, tag)
	}
	sort.Slice(vocab, func(i, j int) bool {
		return strings.ToLower(vocab[i]) < strings.ToLower(vocab[j])
	})
	return vocab
}

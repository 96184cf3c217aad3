package scanner

import (
	"sort"

	"gallery-tags/internal/imagetypes"
)

// SortRecords sorts records in place. Sorting is a pure in-memory step
// over an already-loaded record list; it never touches the cache or the
// gateway. Name order is natural (img2 before img10), date and size
// fall back to natural name order on ties so the result is stable
// across runs.
func SortRecords(records []ImageRecord, field imagetypes.SortField, order imagetypes.SortOrder) {
	less := func(a, b ImageRecord) bool {
		switch field {
		case imagetypes.SortByDate:
			if a.Modified != b.Modified {
				return a.Modified < b.Modified
			}
		case imagetypes.SortBySize:
			if a.Size != b.Size {
				return a.Size < b.Size
			}
		}
		return imagetypes.NaturalLess(a.Name, b.Name)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if order == imagetypes.SortDesc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}

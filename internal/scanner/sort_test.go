package scanner

import (
	"testing"

	"gallery-tags/internal/imagetypes"
)

func names(records []ImageRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestSortRecords(t *testing.T) {
	base := []ImageRecord{
		{Name: "img10.jpg", Size: 300, Modified: 30},
		{Name: "img2.jpg", Size: 100, Modified: 10},
		{Name: "IMG1.jpg", Size: 200, Modified: 20},
	}

	tests := []struct {
		name  string
		field imagetypes.SortField
		order imagetypes.SortOrder
		want  []string
	}{
		{"name asc natural", imagetypes.SortByName, imagetypes.SortAsc, []string{"IMG1.jpg", "img2.jpg", "img10.jpg"}},
		{"name desc", imagetypes.SortByName, imagetypes.SortDesc, []string{"img10.jpg", "img2.jpg", "IMG1.jpg"}},
		{"date asc", imagetypes.SortByDate, imagetypes.SortAsc, []string{"img2.jpg", "IMG1.jpg", "img10.jpg"}},
		{"date desc", imagetypes.SortByDate, imagetypes.SortDesc, []string{"img10.jpg", "IMG1.jpg", "img2.jpg"}},
		{"size asc", imagetypes.SortBySize, imagetypes.SortAsc, []string{"img2.jpg", "IMG1.jpg", "img10.jpg"}},
		{"size desc", imagetypes.SortBySize, imagetypes.SortDesc, []string{"img10.jpg", "IMG1.jpg", "img2.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]ImageRecord, len(base))
			copy(records, base)
			SortRecords(records, tt.field, tt.order)
			got := names(records)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("order = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSortRecordsTieBreaksByName(t *testing.T) {
	records := []ImageRecord{
		{Name: "b.jpg", Size: 100, Modified: 10},
		{Name: "a.jpg", Size: 100, Modified: 10},
	}
	SortRecords(records, imagetypes.SortBySize, imagetypes.SortAsc)
	if records[0].Name != "a.jpg" {
		t.Errorf("tie order = %v", names(records))
	}
}

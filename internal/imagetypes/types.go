package imagetypes

// SortField specifies which record field to sort by.
type SortField string

// SortOrder specifies the direction of sorting.
type SortOrder string

const (
	// SortByName sorts records by filename using natural ordering.
	SortByName SortField = "name"
	// SortByDate sorts records by modification time.
	SortByDate SortField = "date"
	// SortBySize sorts records by file size.
	SortBySize SortField = "size"

	// SortAsc sorts in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts in descending order.
	SortDesc SortOrder = "desc"
)

// SupportedExtensions maps file extensions to whether they are taggable
// image formats. Extensions not listed here are silently skipped during
// folder scans.
var SupportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// MimeTypes maps supported extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// IsSupported returns true if the extension is a taggable image format.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
func IsSupported(ext string) bool {
	return SupportedExtensions[ext]
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

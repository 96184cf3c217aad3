package scanner

import "context"

// ImageRecord is one file loaded into memory for the current folder.
// Tags holds the comma-separated tag string exactly as stored in the
// file's metadata; the cache is only a shadow of it. Records are
// folder-scoped and rebuilt on every folder open.
type ImageRecord struct {
	Path     string `json:"fullPath"` // absolute
	RelPath  string `json:"path"`     // relative to the folder root
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"` // unix seconds
	Tags     string `json:"tags"`

	// MetadataUnavailable marks a record whose tag read failed (tool
	// missing, unreadable file). Tags is empty in that case; the file
	// still shows up so one bad file never hides the rest.
	MetadataUnavailable bool `json:"metadataUnavailable,omitempty"`
}

// WriteResult is the per-path outcome of a batch tag write.
type WriteResult struct {
	Path    string `json:"path"`
	Success bool   `json:"success"`
	Tags    string `json:"tags,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Gateway reads and writes the tag string embedded in a file's own
// metadata. Calls are blocking external-process invocations that may
// fail per file; implementations must be safe for concurrent use.
type Gateway interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path, value string) error
}

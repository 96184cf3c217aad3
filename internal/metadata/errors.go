package metadata

import "errors"

// Sentinel errors for the metadata gateway. Callers classify per-file
// failures with errors.Is; anything else is an IO or tool execution
// failure carrying the underlying reason.
var (
	// ErrToolUnavailable means the exiftool binary is not in PATH or
	// could not be invoked.
	ErrToolUnavailable = errors.New("exiftool not available")

	// ErrUnsupportedFormat means the file extension has no metadata
	// field mapping. During scans such files are skipped silently;
	// on an explicit write attempt this is a real error.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

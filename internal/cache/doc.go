// Package cache persists the tag string last read from each image file,
// keyed by absolute path, so repeated folder loads avoid re-invoking the
// external metadata reader for unchanged files.
//
// An entry is valid only while its stored mtime and size match the file
// on disk. The persisted form is a single JSON object; a corrupt or
// missing file degrades to an empty cache rather than an error.
package cache

// Package scanner orchestrates folder scans over the tag cache and the
// metadata gateway.
//
// A scan enumerates supported image files, serves unchanged files from
// the mtime/size-validated cache, re-reads only stale or missing entries
// through a bounded worker pool, and persists the cache once per scan.
// Batch tag writes succeed or fail per file and refresh the cache so a
// subsequent quick refresh needs no external reads.
package scanner

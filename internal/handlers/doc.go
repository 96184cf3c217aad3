// Package handlers implements the HTTP API: folder open and rescan, tag
// queries over the loaded records, gateway-backed tag reads and batch
// writes, cache maintenance, export configuration and runs, stats,
// thumbnails, and health probes.
//
// Handlers hold the folder-scoped state (open folder plus loaded
// records) behind a read-write mutex; all durable state lives in the
// cache store and in the image files themselves.
package handlers

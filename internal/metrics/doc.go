// Package metrics declares the Prometheus metrics exported by the
// gallery tag service: HTTP traffic, folder scans, external metadata
// tool invocations, cache persistence, tag writes, exports, and
// thumbnail generation.
package metrics

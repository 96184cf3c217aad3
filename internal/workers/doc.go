// Package workers provides worker pool sizing helpers that respect
// container CPU limits and an environment override.
package workers

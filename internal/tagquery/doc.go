// Package tagquery parses and evaluates the AND/OR tag query grammar
// used by both interactive search and export filtering, and derives the
// tag vocabulary currently in use across a loaded image set.
package tagquery

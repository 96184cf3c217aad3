// Package imagetypes defines the supported image formats, MIME types,
// sort constants, and natural filename ordering shared across the
// scanner and HTTP layers.
package imagetypes

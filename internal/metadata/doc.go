// Package metadata wraps the external exiftool process used to read and
// write the tag string embedded in each image file's own metadata.
//
// Tags live in the files, not in a database: the cache elsewhere in this
// repository is only a shadow copy. Which metadata field holds the tag
// string depends on the image format and is driven by a configurable
// extension table.
package metadata

// Package export evaluates per-folder export rules into rendered list
// files.
//
// Each folder may carry a JSON rule file mapping output paths to tag
// queries. Running an export filters the loaded records per rule and
// writes one templated file per rule, deterministically, with per-rule
// failure isolation.
package export

// Package logging provides leveled logging for the gallery tag service.
//
// The level is read once from the DEBUG and LOG_LEVEL environment
// variables. Output goes to stderr, optionally duplicated to a rotating
// log file when LOG_FILE is set.
package logging

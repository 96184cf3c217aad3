package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gallery-tags/internal/metadata"
	"gallery-tags/internal/scanner"
	"gallery-tags/internal/startup"
)

// errNoFolder is returned by folder-scoped handlers before a folder has
// been opened.
var errNoFolder = errors.New("no folder is open")

// Handlers holds the HTTP handler dependencies and the folder-scoped
// state: the currently open folder and its loaded records. The records
// are the working set every search, export, and stats request operates
// on; scans and tag writes both replace the slice wholesale, so a
// reader holding the previous slice never sees it change.
type Handlers struct {
	scanner *scanner.Scanner
	formats *metadata.FormatConfig
	config  *startup.Config
	started time.Time

	mu        sync.RWMutex
	folder    string
	recursive bool
	records   []scanner.ImageRecord
}

// New creates the handler set.
func New(scan *scanner.Scanner, formats *metadata.FormatConfig, config *startup.Config) *Handlers {
	return &Handlers{
		scanner: scan,
		formats: formats,
		config:  config,
		started: time.Now(),
	}
}

// currentState returns the open folder and a snapshot reference of its
// records.
func (h *Handlers) currentState() (string, bool, []scanner.ImageRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.folder == "" {
		return "", false, nil, errNoFolder
	}
	return h.folder, h.recursive, h.records, nil
}

// SetFolder installs an already-scanned folder as the working set.
// Used at startup when DEFAULT_FOLDER is configured.
func (h *Handlers) SetFolder(folder string, recursive bool, records []scanner.ImageRecord) {
	h.setState(folder, recursive, records)
}

// setState replaces the folder-scoped state after a scan.
func (h *Handlers) setState(folder string, recursive bool, records []scanner.ImageRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.folder = folder
	h.recursive = recursive
	h.records = records
}

// applyWriteResults patches the in-memory records with the outcome of a
// batch tag write, so the UI sees the new tags without a rescan.
// Readers hold the slice returned by currentState after releasing the
// lock, so the patch goes onto a fresh copy that is swapped in whole;
// the slice a reader already holds is never written to.
func (h *Handlers) applyWriteResults(results []scanner.WriteResult) {
	updated := make(map[string]string, len(results))
	for _, res := range results {
		if res.Success {
			updated[res.Path] = res.Tags
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	patched := make([]scanner.ImageRecord, len(h.records))
	copy(patched, h.records)
	for i := range patched {
		if tags, ok := updated[patched[i].Path]; ok {
			patched[i].Tags = tags
			patched[i].MetadataUnavailable = false
		}
	}
	h.records = patched
}

// resolveInFolder resolves a client-supplied path against the open
// folder and rejects anything that escapes it. Relative paths are
// joined to the folder root; absolute paths must already be inside it.
func resolveInFolder(folder, p string) (string, error) {
	if p == "" {
		return "", errors.New("path is required")
	}

	resolved := filepath.Clean(p)
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(folder, resolved)
	}

	rel, err := filepath.Rel(folder, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the open folder", p)
	}
	return resolved, nil
}

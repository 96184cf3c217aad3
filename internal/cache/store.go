package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gallery-tags/internal/logging"
	"gallery-tags/internal/metrics"
)

// Entry is the persisted shadow of one file's tag string. The file's own
// metadata is the source of truth; an entry is only usable while the
// stored mtime and size still match the file on disk.
type Entry struct {
	Tags  string `json:"tags"`
	MTime int64  `json:"mtime"` // unix seconds
	Size  int64  `json:"size"`
}

// Matches reports whether the entry is still valid for a file with the
// given mtime (unix seconds) and size. This is the single staleness
// definition; every caller goes through it or through IsStale.
func (e Entry) Matches(mtime, size int64) bool {
	return e.MTime == mtime && e.Size == size
}

// IsStale reports whether the entry no longer matches the file's current
// filesystem metadata.
func IsStale(entry Entry, info os.FileInfo) bool {
	return !entry.Matches(info.ModTime().Unix(), info.Size())
}

// Store persists the global path to Entry mapping as one JSON file.
// The key space is absolute paths, shared across all scanned folders.
// Load and Save operate on the whole mapping; callers are responsible
// for serializing load-modify-save sequences.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file. The parent
// directory is created on the first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the platform configuration directory location for
// the cache file.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "gallerytags", "cache.json"), nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole mapping from disk. A missing file is a normal
// first run and a corrupt file is recovered by starting empty; neither
// is an error. Only the empty map is shared state the caller mutates, so
// Load always returns a fresh map.
func (s *Store) Load() map[string]Entry {
	entries := make(map[string]Entry)

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		logging.Debug("No cache file at %s, starting empty", s.path)
		return entries
	}
	if err != nil {
		logging.Warn("Failed to read cache file %s: %v, starting empty", s.path, err)
		metrics.CacheLoadErrors.Inc()
		return entries
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		logging.Warn("Cache file %s is corrupt: %v, starting empty", s.path, err)
		metrics.CacheLoadErrors.Inc()
		return make(map[string]Entry)
	}

	logging.Debug("Loaded %d entries from cache %s", len(entries), s.path)
	metrics.CacheEntriesTotal.Set(float64(len(entries)))
	return entries
}

// Save writes the whole mapping atomically: the JSON is written to a
// temp file in the same directory and renamed over the previous file,
// so a crash mid-write cannot corrupt the last good state. Unlike Load,
// a failed Save is reported: silently losing persistence would be worse.
func (s *Store) Save(entries map[string]Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		metrics.CacheSavesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		metrics.CacheSavesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		metrics.CacheSavesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		metrics.CacheSavesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		metrics.CacheSavesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		metrics.CacheSavesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	logging.Debug("Saved %d entries to cache %s", len(entries), s.path)
	metrics.CacheSavesTotal.WithLabelValues("success").Inc()
	metrics.CacheEntriesTotal.Set(float64(len(entries)))
	return nil
}

// Clear removes the persisted cache file. Entries for deleted files are
// never pruned automatically, so this is the only way to shrink the
// mapping.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	metrics.CacheEntriesTotal.Set(0)
	logging.Info("Cleared tag cache at %s", s.path)
	return nil
}

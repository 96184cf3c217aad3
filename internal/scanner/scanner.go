package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gallery-tags/internal/cache"
	"gallery-tags/internal/logging"
	"gallery-tags/internal/metrics"
	"gallery-tags/internal/workers"
)

// Hard cap on concurrent gateway calls. Each call spawns an external
// process, so this bounds process count on large folders no matter what
// SCAN_WORKERS says.
const maxGatewayWorkers = 8

// Scanner orchestrates folder scans and tag writes against the cache
// store and the metadata gateway. All load-modify-save sequences over
// the store run under one mutex, so concurrent requests (two browser
// tabs tagging at once) cannot interleave and lose updates.
type Scanner struct {
	store   *cache.Store
	gateway Gateway
	exts    map[string]bool
	mu      sync.Mutex
	limit   int
}

// New creates a Scanner. Scans pick up files whose extension is in
// extensions (the format table's extension set, so a custom table
// changes what gets scanned). The gateway worker pool is sized for
// I/O-bound work, capped at maxGatewayWorkers.
func New(store *cache.Store, gateway Gateway, extensions []string) *Scanner {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Scanner{
		store:   store,
		gateway: gateway,
		exts:    exts,
		limit:   workers.ForIO(maxGatewayWorkers),
	}
}

// LoadFolder enumerates supported image files under folder and returns a
// fully populated record per file, in enumeration order. Unsupported
// extensions are skipped silently. With forceRescan false, files whose
// cache entry still matches their mtime and size are served from the
// cache without touching the gateway; everything else (stale, missing,
// or forced) is re-read through a bounded worker pool. The store is
// persisted once at the end; a failed save is returned as the error
// alongside the records, since losing persistence silently would be
// worse than reporting it.
func (s *Scanner) LoadFolder(ctx context.Context, folder string, recursive, forceRescan bool) ([]ImageRecord, error) {
	folder, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder path: %w", err)
	}
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a folder: %s", folder)
	}

	start := time.Now()
	kind := "quick"
	if forceRescan {
		kind = "full"
	}
	metrics.ScanRunsTotal.WithLabelValues(kind).Inc()
	metrics.ScanIsRunning.Set(1)
	defer func() {
		metrics.ScanIsRunning.Set(0)
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	records, err := s.enumerate(folder, recursive)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.store.Load()

	// Decide per file: cached tags or gateway read
	var pending []int
	for i := range records {
		rec := &records[i]
		entry, ok := entries[rec.Path]
		if !forceRescan && ok && entry.Matches(rec.Modified, rec.Size) {
			rec.Tags = entry.Tags
			metrics.ScanFilesTotal.WithLabelValues("cache_hit").Inc()
			continue
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 {
		logging.Info("Scanning %s: %d files, %d need metadata reads (%s)", folder, len(records), len(pending), kind)
		s.readPending(ctx, records, pending, entries)
	} else {
		logging.Debug("Scanning %s: %d files, all served from cache", folder, len(records))
	}

	if err := s.store.Save(entries); err != nil {
		logging.Error("Failed to persist tag cache: %v", err)
		return records, err
	}

	return records, nil
}

// readPending reads tags through the gateway for the given record
// indices with a bounded worker pool. Failures flag the record instead
// of aborting the scan; successful reads refresh the cache entries.
func (s *Scanner) readPending(ctx context.Context, records []ImageRecord, pending []int, entries map[string]cache.Entry) {
	var entriesMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for _, i := range pending {
		rec := &records[i]
		g.Go(func() error {
			tags, err := s.gateway.Read(ctx, rec.Path)
			if err != nil {
				logging.Warn("Metadata read failed for %s: %v", rec.Path, err)
				rec.Tags = ""
				rec.MetadataUnavailable = true
				metrics.ScanFilesTotal.WithLabelValues("failed").Inc()
				return nil
			}

			rec.Tags = tags
			metrics.ScanFilesTotal.WithLabelValues("refreshed").Inc()

			entriesMu.Lock()
			entries[rec.Path] = cache.Entry{Tags: tags, MTime: rec.Modified, Size: rec.Size}
			entriesMu.Unlock()
			return nil
		})
	}

	// Workers never return errors; per-file failures are recorded on
	// the records themselves.
	_ = g.Wait()
}

// WriteTags writes the same tag string to each path and returns a
// per-path result. A failure leaves that file's prior state untouched
// and never rolls back sibling successes. Successful writes re-stat the
// file (the metadata write bumps its mtime) and refresh the cache entry
// so the next quick refresh is a cache hit. The store is saved once; a
// failed save is the returned error.
func (s *Scanner) WriteTags(ctx context.Context, paths []string, tagString string) ([]WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.store.Load()
	results := make([]WriteResult, 0, len(paths))

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err == nil {
			err = s.gateway.Write(ctx, abs, tagString)
		}
		if err != nil {
			logging.Warn("Tag write failed for %s: %v", path, err)
			metrics.TagWritesTotal.WithLabelValues("error").Inc()
			results = append(results, WriteResult{Path: path, Error: err.Error()})
			continue
		}

		info, statErr := os.Stat(abs)
		if statErr != nil {
			// Write succeeded but the file vanished from under us;
			// report success with tags and drop the cache refresh.
			logging.Warn("Stat after tag write failed for %s: %v", abs, statErr)
		} else {
			entries[abs] = cache.Entry{Tags: tagString, MTime: info.ModTime().Unix(), Size: info.Size()}
		}

		metrics.TagWritesTotal.WithLabelValues("success").Inc()
		results = append(results, WriteResult{Path: path, Success: true, Tags: tagString})
	}

	if err := s.store.Save(entries); err != nil {
		logging.Error("Failed to persist tag cache after write: %v", err)
		return results, err
	}

	return results, nil
}

// ReadTags reads one file's tag string straight through the gateway,
// bypassing the cache, and refreshes the cache entry on success.
func (s *Scanner) ReadTags(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	tags, err := s.gateway.Read(ctx, abs)
	if err != nil {
		return "", err
	}

	if info, statErr := os.Stat(abs); statErr == nil {
		s.mu.Lock()
		entries := s.store.Load()
		entries[abs] = cache.Entry{Tags: tags, MTime: info.ModTime().Unix(), Size: info.Size()}
		if err := s.store.Save(entries); err != nil {
			logging.Warn("Failed to persist cache after tag read: %v", err)
		}
		s.mu.Unlock()
	}

	return tags, nil
}

// ClearCache drops the persisted cache entirely.
func (s *Scanner) ClearCache() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clear()
}

// enumerate collects supported image files under folder in walk order.
// Dot files and dot directories are skipped.
func (s *Scanner) enumerate(folder string, recursive bool) ([]ImageRecord, error) {
	var records []ImageRecord

	appendFile := func(path string, info os.FileInfo) {
		ext := strings.ToLower(filepath.Ext(info.Name()))
		if !s.exts[ext] {
			return
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			rel = info.Name()
		}
		records = append(records, ImageRecord{
			Path:     path,
			RelPath:  rel,
			Name:     info.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Unix(),
		})
	}

	if !recursive {
		dirEntries, err := os.ReadDir(folder)
		if err != nil {
			return nil, fmt.Errorf("failed to read folder: %w", err)
		}
		for _, de := range dirEntries {
			if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
				continue
			}
			info, err := de.Info()
			if err != nil {
				logging.Warn("Error reading %s: %v", de.Name(), err)
				continue
			}
			appendFile(filepath.Join(folder, de.Name()), info)
		}
		return records, nil
	}

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != folder {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logging.Warn("Error reading %s: %v", path, err)
			return nil
		}
		appendFile(path, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}

	return records, nil
}

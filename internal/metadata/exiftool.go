package metadata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"gallery-tags/internal/logging"
	"gallery-tags/internal/metrics"
)

// Timeout for a single exiftool invocation. The tool is normally fast but
// can hang on a file held by another process.
const callTimeout = 30 * time.Second

// ExifTool reads and writes the embedded tag field of image files by
// invoking the exiftool binary, one process per call.
type ExifTool struct {
	binary  string
	formats *FormatConfig
}

// NewExifTool creates a gateway using the given format table.
func NewExifTool(formats *FormatConfig) *ExifTool {
	return &ExifTool{
		binary:  "exiftool",
		formats: formats,
	}
}

// Check verifies that the exiftool binary is invocable. Returns
// ErrToolUnavailable when it is not; the caller decides whether that is
// fatal (the service still works for cached tags without it).
func (e *ExifTool) Check() error {
	path, err := exec.LookPath(e.binary)
	if err != nil {
		return fmt.Errorf("%w: %s not found in PATH", ErrToolUnavailable, e.binary)
	}
	logging.Debug("exiftool path: %s", path)
	return nil
}

// Read returns the raw tag string stored in the file's metadata field.
// The field is chosen from the format table by extension.
func (e *ExifTool) Read(ctx context.Context, path string) (string, error) {
	field, err := e.formats.FieldFor(path)
	if err != nil {
		return "", err
	}

	done := observeCall("read")

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	// exiftool -FIELD -b prints the bare field value
	cmd := exec.CommandContext(ctx, e.binary, field, "-b", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		err = e.classify(err, stderr.String(), path)
		done(err)
		return "", err
	}

	done(nil)
	return strings.TrimSpace(stdout.String()), nil
}

// Write replaces the file's metadata field with the given tag string.
// exiftool rewrites the file in place, so a successful write changes the
// file's mtime; callers must re-stat afterwards.
func (e *ExifTool) Write(ctx context.Context, path, value string) error {
	field, err := e.formats.FieldFor(path)
	if err != nil {
		return err
	}

	done := observeCall("write")

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary, fmt.Sprintf("%s=%s", field, value), "-overwrite_original", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		err = e.classify(err, stderr.String(), path)
		done(err)
		return err
	}

	done(nil)
	return nil
}

// classify maps an exec failure to the gateway error taxonomy.
func (e *ExifTool) classify(err error, stderr, path string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}

	detail := strings.TrimSpace(stderr)
	if detail == "" {
		detail = err.Error()
	}
	return fmt.Errorf("exiftool failed for %s: %s", path, detail)
}

// observeCall records gateway metrics for one invocation.
func observeCall(operation string) func(error) {
	start := time.Now()
	return func(err error) {
		metrics.GatewayCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.GatewayCallsTotal.WithLabelValues(operation, status).Inc()
	}
}

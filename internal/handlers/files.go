package handlers

import (
	"image/jpeg"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"

	"gallery-tags/internal/imagetypes"
	"gallery-tags/internal/logging"
	"gallery-tags/internal/metrics"
)

const (
	defaultThumbnailSize = 256
	maxThumbnailSize     = 1024
	thumbnailJPEGQuality = 85
)

// Thumbnail renders a downscaled JPEG of an image in the open folder.
// Thumbnails are generated on the fly; browsers cache them via the
// Cache-Control header so a folder is only resized once per session.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	folder, _, _, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	path, err := resolveInFolder(folder, mux.Vars(r)["path"])
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !imagetypes.IsSupported(strings.ToLower(filepath.Ext(path))) {
		writeJSONError(w, "unsupported image format", http.StatusBadRequest)
		return
	}

	size := defaultThumbnailSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 16 || parsed > maxThumbnailSize {
			writeJSONError(w, "size must be between 16 and 1024", http.StatusBadRequest)
			return
		}
		size = parsed
	}

	start := time.Now()
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		logging.Warn("Failed to open image %s: %v", path, err)
		writeJSONError(w, "failed to open image", http.StatusNotFound)
		return
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := jpeg.Encode(w, thumb, &jpeg.Options{Quality: thumbnailJPEGQuality}); err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		logging.Error("Failed to encode thumbnail for %s: %v", path, err)
		return
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
}

// Image serves the full-resolution file bytes.
func (h *Handlers) Image(w http.ResponseWriter, r *http.Request) {
	folder, _, _, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	path, err := resolveInFolder(folder, mux.Vars(r)["path"])
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !imagetypes.IsSupported(ext) {
		writeJSONError(w, "unsupported image format", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", imagetypes.GetMimeType(ext))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}

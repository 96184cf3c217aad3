package handlers

import (
	"net/http"
	"runtime"
	"time"

	"gallery-tags/internal/startup"
)

const (
	statusHealthy = "healthy"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	FolderOpen   bool   `json:"folderOpen"`
	Folder       string `json:"folder,omitempty"`
	LoadedImages int    `json:"loadedImages"`
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The server is
// healthy with no folder open; folder state is informational.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	folder, _, records, _ := h.currentState()

	writeJSON(w, HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		FolderOpen:   folder != "",
		Folder:       folder,
		LoadedImages: len(records),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	})
}

// LivenessCheck is a simple liveness probe (always 200 while running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 once startup has completed. There is no
// background indexer to wait for; the server is ready as soon as it
// serves requests.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, "ready")
}

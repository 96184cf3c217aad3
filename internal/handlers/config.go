package handlers

import (
	"net/http"
	"sort"
)

// ConfigResponse exposes the app defaults a client needs to render its
// UI: export rendering settings, the metadata field table, and the
// supported extensions.
type ConfigResponse struct {
	DefaultFolder        string            `json:"defaultFolder,omitempty"`
	ScanRecursive        bool              `json:"scanRecursive"`
	ExportItemFormat     string            `json:"exportItemFormat"`
	ExportHeading        string            `json:"exportHeading,omitempty"`
	ExportGroupBy        int               `json:"exportGroupBy"`
	ExportConfigFilename string            `json:"exportConfigFilename"`
	FormatTable          map[string]string `json:"formatTable"`
	SupportedExtensions  []string          `json:"supportedExtensions"`
}

// GetConfig returns the application configuration defaults.
func (h *Handlers) GetConfig(w http.ResponseWriter, _ *http.Request) {
	extensions := h.formats.Extensions()
	sort.Strings(extensions)

	writeJSON(w, ConfigResponse{
		DefaultFolder:        h.config.DefaultFolder,
		ScanRecursive:        h.config.ScanRecursive,
		ExportItemFormat:     h.config.ExportItemFormat,
		ExportHeading:        h.config.ExportHeading,
		ExportGroupBy:        h.config.ExportGroupBy,
		ExportConfigFilename: h.config.ExportConfigFilename,
		FormatTable:          h.formats.Table(),
		SupportedExtensions:  extensions,
	})
}

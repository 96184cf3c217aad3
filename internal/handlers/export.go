package handlers

import (
	"net/http"

	"gallery-tags/internal/export"
)

// GetExportConfig returns the export rules of the current folder.
func (h *Handlers) GetExportConfig(w http.ResponseWriter, _ *http.Request) {
	folder, _, _, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	rules, err := export.LoadRules(folder, h.config.ExportConfigFilename)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rules)
}

// SaveExportConfig validates and saves the export rules of the current
// folder.
func (h *Handlers) SaveExportConfig(w http.ResponseWriter, r *http.Request) {
	folder, _, _, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	var rules export.Rules
	if err := decodeJSONBody(r, &rules); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := export.SaveRules(folder, h.config.ExportConfigFilename, rules); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, "saved")
}

// RunExportResponse is the outcome of an export run.
type RunExportResponse struct {
	Rules   int                 `json:"rules"`
	Results []export.RuleResult `json:"results"`
}

// RunExport evaluates the folder's export rules against the loaded
// records and writes the output files.
func (h *Handlers) RunExport(w http.ResponseWriter, _ *http.Request) {
	folder, _, records, err := h.currentState()
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	rules, err := export.LoadRules(folder, h.config.ExportConfigFilename)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(rules) == 0 {
		writeJSONError(w, "no export rules configured for this folder", http.StatusNotFound)
		return
	}

	results := export.Run(folder, records, rules, export.Format{
		ItemTemplate: h.config.ExportItemFormat,
		Heading:      h.config.ExportHeading,
		GroupBy:      h.config.ExportGroupBy,
	})

	writeJSON(w, RunExportResponse{Rules: len(rules), Results: results})
}

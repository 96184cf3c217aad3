package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gallery-tags/internal/logging"
	"gallery-tags/internal/metrics"
	"gallery-tags/internal/scanner"
	"gallery-tags/internal/tagquery"
)

// DefaultItemFormat renders a markdown image reference per matched
// record, one per line.
const DefaultItemFormat = "![$fn]($fp/$fn.$fe)\n"

// Format controls how matched records are rendered into an output file.
type Format struct {
	// ItemTemplate is expanded once per matched record. Placeholders:
	// $fn file name without extension, $fe extension without the dot,
	// $fp record directory relative to the output file's directory
	// ("." or "./sub"), $ffp absolute record directory.
	ItemTemplate string

	// Heading, when non-empty, is written first followed by a newline.
	Heading string

	// GroupBy inserts a blank line after every N items; 0 disables
	// grouping.
	GroupBy int
}

// RuleResult is the outcome of one rule within a run.
type RuleResult struct {
	Output  string `json:"output"`
	Query   string `json:"query"`
	Matched int    `json:"matched"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Run evaluates every rule against the in-memory records and writes one
// output file per rule. Rules run in sorted output-path order and a
// failing rule never skips the others. The same records and rules always
// produce byte-identical files, so re-running an export is safe.
//
// Queries use export semantics: an empty term list matches nothing, and
// the file is still written (heading only) so a stale previous export
// cannot linger with outdated content.
func Run(folder string, records []scanner.ImageRecord, rules Rules, format Format) []RuleResult {
	metrics.ExportRunsTotal.Inc()
	if format.ItemTemplate == "" {
		format.ItemTemplate = DefaultItemFormat
	}

	results := make([]RuleResult, 0, len(rules))
	for _, output := range rules.sortedOutputs() {
		query := rules[output]
		result := RuleResult{Output: output, Query: query}

		n, err := runRule(folder, records, output, query, format)
		result.Matched = n
		if err != nil {
			logging.Warn("Export rule %q failed: %v", output, err)
			result.Error = err.Error()
			metrics.ExportRulesTotal.WithLabelValues("error").Inc()
		} else {
			result.Success = true
			metrics.ExportRulesTotal.WithLabelValues("success").Inc()
			metrics.ExportMatchedRecords.Observe(float64(n))
		}

		results = append(results, result)
	}
	return results
}

func runRule(folder string, records []scanner.ImageRecord, output, query string, format Format) (int, error) {
	outPath := output
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(folder, outPath)
	}
	outDir := filepath.Dir(outPath)

	q := tagquery.Parse(query)

	var matched []scanner.ImageRecord
	for _, rec := range records {
		if q.Matches(rec.Tags, false) {
			matched = append(matched, rec)
		}
	}

	var b strings.Builder
	if format.Heading != "" {
		b.WriteString(format.Heading)
		b.WriteString("\n")
	}
	for i, rec := range matched {
		b.WriteString(renderItem(format.ItemTemplate, rec, outDir))
		if format.GroupBy > 0 && (i+1)%format.GroupBy == 0 && i+1 < len(matched) {
			b.WriteString("\n")
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return len(matched), fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}
	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return len(matched), fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	logging.Debug("Export rule %q wrote %d of %d records to %s", query, len(matched), len(records), outPath)
	return len(matched), nil
}

// renderItem expands the item template for one record. $ffp is listed
// before $fp so the replacer never splits it.
func renderItem(template string, rec scanner.ImageRecord, outDir string) string {
	name := rec.Name
	ext := ""
	if i := strings.LastIndex(name, "."); i > 0 {
		ext = name[i+1:]
		name = name[:i]
	}

	absDir := filepath.Dir(rec.Path)
	relDir := "."
	if rel, err := filepath.Rel(outDir, absDir); err == nil {
		relDir = filepath.ToSlash(rel)
	}
	if relDir != "." && relDir != ".." && !strings.HasPrefix(relDir, "./") && !strings.HasPrefix(relDir, "../") {
		relDir = "./" + relDir
	}

	return strings.NewReplacer(
		"$ffp", filepath.ToSlash(absDir),
		"$fp", relDir,
		"$fn", name,
		"$fe", ext,
	).Replace(template)
}

package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"gallery-tags/internal/tagquery"
)

// DefaultRuleFilename is the per-folder rule file name unless overridden
// by EXPORT_CONFIG_FILENAME.
const DefaultRuleFilename = ".gallery_export.json"

// Rules maps an output path to the query string selecting the records
// written there. Output paths are resolved relative to the folder root
// unless absolute.
type Rules map[string]string

// Validate checks every rule: the output path must be non-empty and the
// query must contain at least one term. An empty query would export
// nothing, which is always a mistake in a saved rule file.
func (r Rules) Validate() error {
	for output, query := range r {
		err := validation.Validate(output,
			validation.Required.Error("output path must not be empty"),
		)
		if err == nil {
			err = validation.Validate(query,
				validation.Required.Error("query must not be empty"),
				validation.By(queryHasTerms),
			)
		}
		if err != nil {
			return fmt.Errorf("rule %q: %w", output, err)
		}
	}
	return nil
}

func queryHasTerms(value interface{}) error {
	raw, _ := value.(string)
	if len(tagquery.Parse(raw).Terms) == 0 {
		return errors.New("query must contain at least one term")
	}
	return nil
}

// LoadRules reads the rule file for a folder. A missing file means no
// rules yet and is not an error; a corrupt or invalid file is, since the
// user needs to know their rules will not run.
func LoadRules(folder, filename string) (Rules, error) {
	if filename == "" {
		filename = DefaultRuleFilename
	}
	path := filepath.Join(folder, filename)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Rules{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read export rules %s: %w", path, err)
	}

	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("export rules %s are not valid JSON: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("export rules %s: %w", path, err)
	}

	return rules, nil
}

// SaveRules validates and writes the rule file for a folder.
func SaveRules(folder, filename string, rules Rules) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	if filename == "" {
		filename = DefaultRuleFilename
	}
	path := filepath.Join(folder, filename)

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export rules: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write export rules %s: %w", path, err)
	}
	return nil
}

// sortedOutputs returns the rule output paths in stable order so runs
// and results are deterministic regardless of map iteration.
func (r Rules) sortedOutputs() []string {
	outputs := make([]string, 0, len(r))
	for output := range r {
		outputs = append(outputs, output)
	}
	sort.Strings(outputs)
	return outputs
}

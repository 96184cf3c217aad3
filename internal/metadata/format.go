package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"gallery-tags/internal/logging"
)

// FormatEntry maps a set of file extensions to the exiftool field that
// holds their tag string.
type FormatEntry struct {
	Field      string   `yaml:"field"`
	Extensions []string `yaml:"extensions"`
}

// FormatConfig is the extension to exiftool field table. Which embedded
// field stores the tag string differs per image format, so the table is
// configuration rather than code.
type FormatConfig struct {
	fields map[string]string // lowercase extension (with dot) to field
}

// DefaultFormatConfig returns the built-in format table: EXIF image
// description for JPEG, XMP description for PNG and WebP.
func DefaultFormatConfig() *FormatConfig {
	return newFormatConfig([]FormatEntry{
		{Field: "-EXIF:ImageDescription", Extensions: []string{".jpg", ".jpeg"}},
		{Field: "-XMP:Description", Extensions: []string{".png"}},
		{Field: "-XMP:Description", Extensions: []string{".webp"}},
	})
}

// LoadFormatConfig reads a format table from a YAML file. An empty path
// returns the defaults.
func LoadFormatConfig(path string) (*FormatConfig, error) {
	if path == "" {
		return DefaultFormatConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read format config: %w", err)
	}

	var doc struct {
		Formats []FormatEntry `yaml:"formats"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse format config %s: %w", path, err)
	}
	if len(doc.Formats) == 0 {
		return nil, fmt.Errorf("format config %s defines no formats", path)
	}

	cfg := newFormatConfig(doc.Formats)
	logging.Info("Loaded format config from %s (%d extensions)", path, len(cfg.fields))
	return cfg, nil
}

func newFormatConfig(entries []FormatEntry) *FormatConfig {
	fields := make(map[string]string)
	for _, entry := range entries {
		for _, ext := range entry.Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			fields[ext] = entry.Field
		}
	}
	return &FormatConfig{fields: fields}
}

// FieldFor returns the exiftool field for a file path, or
// ErrUnsupportedFormat when the extension is not in the table.
func (c *FormatConfig) FieldFor(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	field, ok := c.fields[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return field, nil
}

// Extensions returns the supported extensions in the table.
func (c *FormatConfig) Extensions() []string {
	exts := make([]string, 0, len(c.fields))
	for ext := range c.fields {
		exts = append(exts, ext)
	}
	return exts
}

// Table returns a copy of the extension to field mapping, used by the
// config API endpoint.
func (c *FormatConfig) Table() map[string]string {
	table := make(map[string]string, len(c.fields))
	for ext, field := range c.fields {
		table[ext] = field
	}
	return table
}

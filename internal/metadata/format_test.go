package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultFormatConfigFields(t *testing.T) {
	cfg := DefaultFormatConfig()

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "jpg uses EXIF description",
			path: "/photos/cat.jpg",
			want: "-EXIF:ImageDescription",
		},
		{
			name: "jpeg uses EXIF description",
			path: "/photos/cat.JPEG",
			want: "-EXIF:ImageDescription",
		},
		{
			name: "png uses XMP description",
			path: "/photos/dog.png",
			want: "-XMP:Description",
		},
		{
			name: "webp uses XMP description",
			path: "/photos/bird.webp",
			want: "-XMP:Description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.FieldFor(tt.path)
			if err != nil {
				t.Fatalf("FieldFor(%q) error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("FieldFor(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFieldForUnsupported(t *testing.T) {
	cfg := DefaultFormatConfig()

	_, err := cfg.FieldFor("/photos/video.mp4")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FieldFor(.mp4) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadFormatConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formats.yaml")
	content := `formats:
  - field: "-IPTC:Keywords"
    extensions: [".tif", "tiff"]
  - field: "-XMP:Description"
    extensions: [".png"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFormatConfig(path)
	if err != nil {
		t.Fatalf("LoadFormatConfig: %v", err)
	}

	// Extensions are normalized to dotted lowercase
	field, err := cfg.FieldFor("/x/scan.TIFF")
	if err != nil {
		t.Fatalf("FieldFor(.TIFF): %v", err)
	}
	if field != "-IPTC:Keywords" {
		t.Errorf("FieldFor(.TIFF) = %q, want -IPTC:Keywords", field)
	}

	// The file table replaces the defaults entirely
	if _, err := cfg.FieldFor("/x/photo.jpg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FieldFor(.jpg) after custom config = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadFormatConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadFormatConfig("")
	if err != nil {
		t.Fatalf("LoadFormatConfig(\"\"): %v", err)
	}
	if _, err := cfg.FieldFor("a.jpg"); err != nil {
		t.Errorf("default config should support .jpg: %v", err)
	}
}

func TestLoadFormatConfigErrors(t *testing.T) {
	if _, err := LoadFormatConfig("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("formats: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFormatConfig(empty); err == nil {
		t.Error("expected error for empty format list")
	}
}

package imageformat

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		name   string
		prefix []byte
		want   Format
	}{
		{
			name:   "JPEG magic",
			prefix: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10},
			want:   FormatStatic,
		},
		{
			name:   "PNG magic",
			prefix: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
			want:   FormatStatic,
		},
		{
			name:   "GIF89a magic",
			prefix: []byte("GIF89a"),
			want:   FormatAnimated,
		},
		{
			name:   "GIF87a magic",
			prefix: []byte("GIF87a"),
			want:   FormatAnimated,
		},
		{
			name:   "WebP RIFF container",
			prefix: []byte{'R', 'I', 'F', 'F', 0x10, 0x00, 0x00, 0x00, 'W', 'E', 'B', 'P'},
			want:   FormatStatic,
		},
		{
			name:   "BMP magic",
			prefix: []byte{'B', 'M', 0x00, 0x00},
			want:   FormatStatic,
		},
		{
			name:   "TIFF little endian",
			prefix: []byte{0x49, 0x49, 0x2A, 0x00},
			want:   FormatStatic,
		},
		{
			name:   "TIFF big endian",
			prefix: []byte{0x4D, 0x4D, 0x00, 0x2A},
			want:   FormatStatic,
		},
		{
			name:   "SVG with XML declaration",
			prefix: []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg">`),
			want:   FormatVector,
		},
		{
			name:   "SVG uppercase root tag",
			prefix: []byte(`<SVG width="10" height="10">`),
			want:   FormatVector,
		},
		{
			name:   "plain text",
			prefix: []byte("hello, world\n"),
			want:   FormatUnrecognized,
		},
		{
			name:   "empty prefix",
			prefix: nil,
			want:   FormatUnrecognized,
		},
		{
			name:   "binary garbage",
			prefix: []byte{0x00, 0x01, 0x02, 0x03, 0xDE, 0xAD, 0xBE, 0xEF},
			want:   FormatUnrecognized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identify(tt.prefix); got != tt.want {
				t.Errorf("Identify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentifyFile(t *testing.T) {
	tmpDir := t.TempDir()

	pngPath := filepath.Join(tmpDir, "test.png")
	f, err := os.Create(pngPath)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	f.Close()

	format, err := IdentifyFile(pngPath)
	if err != nil {
		t.Fatalf("IdentifyFile() error: %v", err)
	}
	if format != FormatStatic {
		t.Errorf("IdentifyFile() = %v, want %v", format, FormatStatic)
	}

	// Extension must not matter; only content does.
	misnamed := filepath.Join(tmpDir, "actually-png.txt")
	data, _ := os.ReadFile(pngPath)
	if err := os.WriteFile(misnamed, data, 0644); err != nil {
		t.Fatalf("Failed to write misnamed file: %v", err)
	}
	format, err = IdentifyFile(misnamed)
	if err != nil {
		t.Fatalf("IdentifyFile() error: %v", err)
	}
	if format != FormatStatic {
		t.Errorf("IdentifyFile() on misnamed png = %v, want %v", format, FormatStatic)
	}

	if _, err := IdentifyFile(filepath.Join(tmpDir, "missing.png")); err == nil {
		t.Error("IdentifyFile() on missing file should return an error")
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatStatic, "static"},
		{FormatAnimated, "animated"},
		{FormatVector, "vector"},
		{FormatUnrecognized, "unrecognized"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

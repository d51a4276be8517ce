package imageformat

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func createRasterFile(t *testing.T, path string, width, height int, format string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	defer f.Close()

	switch format {
	case "png":
		err = png.Encode(f, img)
	case "jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(f, img, nil)
	default:
		t.Fatalf("Unsupported test format: %s", format)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func TestProbeRaster(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name   string
		file   string
		width  int
		height int
		encode string
		format Format
	}{
		{"small PNG", "a.png", 100, 50, "png", FormatStatic},
		{"large JPEG", "b.jpg", 4000, 3000, "jpeg", FormatStatic},
		{"GIF", "c.gif", 32, 24, "gif", FormatAnimated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			createRasterFile(t, path, tt.width, tt.height, tt.encode)

			dims, err := Probe(path, tt.format)
			if err != nil {
				t.Fatalf("Probe() error: %v", err)
			}
			if dims.Width != tt.width || dims.Height != tt.height {
				t.Errorf("Probe() = %dx%d, want %dx%d", dims.Width, dims.Height, tt.width, tt.height)
			}
		})
	}
}

func TestProbeVector(t *testing.T) {
	tmpDir := t.TempDir()

	svgPath := filepath.Join(tmpDir, "canvas.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100" viewBox="0 0 200 100">` +
		`<rect width="200" height="100" fill="#ff0000"/></svg>`
	if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
		t.Fatalf("Failed to write svg: %v", err)
	}

	dims, err := Probe(svgPath, FormatVector)
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if dims.Width != 200 || dims.Height != 100 {
		t.Errorf("Probe() = %dx%d, want 200x100", dims.Width, dims.Height)
	}
}

func TestProbeErrors(t *testing.T) {
	tmpDir := t.TempDir()

	// Corrupted header: PNG magic followed by garbage.
	corrupt := filepath.Join(tmpDir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte{0x89, 0x50, 0x4E, 0x47, 0x00, 0x01, 0x02}, 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	// Truncated file: first few bytes of a real PNG.
	full := filepath.Join(tmpDir, "full.png")
	createRasterFile(t, full, 64, 64, "png")
	data, _ := os.ReadFile(full)
	truncated := filepath.Join(tmpDir, "truncated.png")
	if err := os.WriteFile(truncated, data[:12], 0644); err != nil {
		t.Fatalf("Failed to write truncated file: %v", err)
	}

	// Unparseable vector document.
	badSVG := filepath.Join(tmpDir, "bad.svg")
	if err := os.WriteFile(badSVG, []byte("<svg><unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write bad svg: %v", err)
	}

	// Zero-sized vector canvas.
	zeroSVG := filepath.Join(tmpDir, "zero.svg")
	if err := os.WriteFile(zeroSVG, []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="0" height="0"></svg>`), 0644); err != nil {
		t.Fatalf("Failed to write zero svg: %v", err)
	}

	tests := []struct {
		name   string
		path   string
		format Format
	}{
		{"corrupted raster header", corrupt, FormatStatic},
		{"truncated raster file", truncated, FormatStatic},
		{"missing file", filepath.Join(tmpDir, "nope.png"), FormatStatic},
		{"unparseable vector", badSVG, FormatVector},
		{"zero-sized vector canvas", zeroSVG, FormatVector},
		{"unrecognized format", full, FormatUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Must return an error, never panic.
			if _, err := Probe(tt.path, tt.format); err == nil {
				t.Error("Probe() should return an error")
			}
		})
	}
}

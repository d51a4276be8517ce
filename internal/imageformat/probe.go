package imageformat

import (
	"fmt"
	"image"
	"os"

	// Header decoders for dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/srwiley/oksvg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions holds an image's intrinsic width and height in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// Probe extracts the dimensions of the file at path without materializing
// pixel data. Raster formats are probed with a container-header-only read;
// vector documents are parsed just far enough to resolve the intrinsic
// canvas size, with no rasterization.
func Probe(path string, format Format) (Dimensions, error) {
	switch format {
	case FormatStatic, FormatAnimated:
		return probeRaster(path)
	case FormatVector:
		return probeVector(path)
	default:
		return Dimensions{}, fmt.Errorf("cannot probe unrecognized format: %s", path)
	}
}

func probeRaster(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()

	config, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to read image header: %w", err)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return Dimensions{}, fmt.Errorf("image header declares empty canvas: %dx%d", config.Width, config.Height)
	}

	return Dimensions{Width: config.Width, Height: config.Height}, nil
}

func probeVector(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to parse vector document: %w", err)
	}

	w := int(icon.ViewBox.W + 0.5)
	h := int(icon.ViewBox.H + 0.5)
	if w <= 0 || h <= 0 {
		return Dimensions{}, fmt.Errorf("vector document has zero-sized canvas")
	}

	return Dimensions{Width: w, Height: h}, nil
}

package decoder

import (
	"fmt"
	"image"
	"os"

	"image-viewer/internal/imagedata"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// decodeVector rasterizes a vector document once at its intrinsic size,
// producing a single static frame.
func (d *Decoder) decodeVector(path string) (*imagedata.LoadedImage, error) {
	icon, width, height, err := parseVector(path)
	if err != nil {
		return nil, err
	}
	if err := d.checkLimits(width, height); err != nil {
		return nil, err
	}

	pix := rasterizeVector(icon, width, height)
	frames := []imagedata.FrameData{{Pix: pix, Delay: imagedata.DelayInfinite}}
	return imagedata.NewLoadedImage(width, height, frames), nil
}

// decodeVectorThumbnail rasterizes directly at the fitted size rather than
// rasterizing at full size and downscaling.
func (d *Decoder) decodeVectorThumbnail(path string, target int) (*imagedata.Thumbnail, error) {
	icon, width, height, err := parseVector(path)
	if err != nil {
		return nil, err
	}

	tw, th := fitWithin(width, height, target)
	pix := rasterizeVector(icon, tw, th)
	return &imagedata.Thumbnail{Width: tw, Height: th, Pix: pix}, nil
}

func parseVector(path string) (*oksvg.SvgIcon, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to parse vector document %s: %w", path, err)
	}

	width := int(icon.ViewBox.W + 0.5)
	height := int(icon.ViewBox.H + 0.5)
	if width <= 0 || height <= 0 {
		return nil, 0, 0, fmt.Errorf("vector document %s has zero-sized canvas", path)
	}

	return icon, width, height, nil
}

func rasterizeVector(icon *oksvg.SvgIcon, width, height int) []byte {
	icon.SetTarget(0, 0, float64(width), float64(height))
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return rgba.Pix
}

// fitWithin scales (w, h) to fit inside a target x target box, preserving
// aspect ratio. Dimensions never collapse below 1.
func fitWithin(w, h, target int) (int, int) {
	var tw, th int
	if w >= h {
		tw = target
		th = h * target / w
	} else {
		th = target
		tw = w * target / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

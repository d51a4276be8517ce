package decoder

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"time"

	"image-viewer/internal/imagedata"
	"image-viewer/internal/imageformat"
	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxDimension is the largest width or height accepted for decode.
	DefaultMaxDimension = 16384

	// DefaultMaxPixels is the largest total pixel count accepted for decode.
	// 100MP is ~400MB of RGBA; anything beyond that is treated as corrupt
	// or adversarial.
	DefaultMaxPixels = 100_000_000

	// defaultFrameDelay replaces zero or degenerate animation delays so an
	// animation is neither frozen nor infinitely fast.
	defaultFrameDelay = 100 * time.Millisecond

	// gifDelayUnit converts GIF delay values (hundredths of a second).
	gifDelayUnit = 10 * time.Millisecond
)

// ErrResourceLimit reports declared dimensions or allocation size beyond the
// safety ceiling. It is surfaced as a decode error, never a crash.
var ErrResourceLimit = errors.New("image exceeds decode safety limits")

// Decoder materializes pixel data from files. It is constructed once at
// startup and shared by all loader workers.
type Decoder struct {
	// MaxDimension and MaxPixels bound what the decoder will materialize;
	// zero values fall back to the defaults.
	MaxDimension int
	MaxPixels    int
}

// New returns a Decoder with the default safety limits.
func New() *Decoder {
	return &Decoder{MaxDimension: DefaultMaxDimension, MaxPixels: DefaultMaxPixels}
}

// DecodeFull decodes the file at path into a fully materialized image:
// every frame eagerly decoded to dense RGBA with its display delay.
func (d *Decoder) DecodeFull(path string, format imageformat.Format) (*imagedata.LoadedImage, error) {
	start := time.Now()
	defer func() {
		metrics.DecodeDuration.WithLabelValues("full").Observe(time.Since(start).Seconds())
	}()

	// Header-only dimension check before any pixel allocation.
	if dims, err := imageformat.Probe(path, format); err == nil {
		if err := d.checkLimits(dims.Width, dims.Height); err != nil {
			return nil, err
		}
	}

	switch format {
	case imageformat.FormatAnimated:
		return d.decodeAnimated(path)
	case imageformat.FormatVector:
		return d.decodeVector(path)
	case imageformat.FormatStatic:
		return d.decodeStatic(path)
	default:
		return nil, fmt.Errorf("cannot decode unrecognized format: %s", path)
	}
}

// DecodeThumbnail produces an aspect-ratio-preserving thumbnail fitting
// within a target x target box. Raster formats use a combined
// decode-and-downscale fast path via libvips when available.
func (d *Decoder) DecodeThumbnail(path string, format imageformat.Format, target int) (*imagedata.Thumbnail, error) {
	start := time.Now()
	defer func() {
		metrics.DecodeDuration.WithLabelValues("thumbnail").Observe(time.Since(start).Seconds())
	}()

	if target <= 0 {
		return nil, fmt.Errorf("invalid thumbnail target size %d", target)
	}

	if format == imageformat.FormatVector {
		return d.decodeVectorThumbnail(path, target)
	}

	if dims, err := imageformat.Probe(path, format); err == nil {
		if err := d.checkLimits(dims.Width, dims.Height); err != nil {
			return nil, err
		}
	}

	if IsVipsAvailable() {
		if img, err := loadThumbnailVips(path, target); err == nil {
			return thumbnailFromImage(img, target), nil
		} else {
			logging.Debug("vips thumbnail failed for %s: %v, falling back", path, err)
		}
	}

	// Fallback: full first-frame decode, then fit. For animated formats
	// image.Decode yields the first frame only.
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return thumbnailFromImage(img, target), nil
}

func thumbnailFromImage(img image.Image, target int) *imagedata.Thumbnail {
	fitted := imaging.Fit(img, target, target, imaging.Lanczos)
	nrgba := imaging.Clone(fitted)
	b := nrgba.Bounds()
	return &imagedata.Thumbnail{Width: b.Dx(), Height: b.Dy(), Pix: nrgba.Pix}
}

func (d *Decoder) decodeStatic(path string) (*imagedata.LoadedImage, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	if err := d.checkLimits(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	frames := []imagedata.FrameData{{Pix: nrgba.Pix, Delay: imagedata.DelayInfinite}}
	return imagedata.NewLoadedImage(b.Dx(), b.Dy(), frames), nil
}

func (d *Decoder) decodeAnimated(path string) (*imagedata.LoadedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode animation %s: %w", path, err)
	}

	if len(g.Image) == 0 {
		logging.Debug("Animation %s declares zero frames, falling back to static decode", path)
		return d.decodeStatic(path)
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}
	if err := d.checkLimits(width, height); err != nil {
		return nil, err
	}
	// Coalescing materializes every frame at canvas size, so the pixel
	// ceiling applies to the animation as a whole, not to one frame.
	if _, maxPixels := d.limits(); len(g.Image)*width*height > maxPixels {
		return nil, fmt.Errorf("%w: %d frames of %dx%d", ErrResourceLimit, len(g.Image), width, height)
	}

	// Frames are coalesced onto a shared canvas honoring per-frame disposal,
	// so every emitted frame is a complete picture.
	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	frames := make([]imagedata.FrameData, 0, len(g.Image))
	var restore []byte

	for i, src := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		if disposal == gif.DisposalPrevious {
			restore = append(restore[:0], canvas.Pix...)
		}

		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)

		pix := make([]byte, len(canvas.Pix))
		copy(pix, canvas.Pix)

		delay := defaultFrameDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * gifDelayUnit
		}
		frames = append(frames, imagedata.FrameData{Pix: pix, Delay: delay})

		switch disposal {
		case gif.DisposalBackground:
			clearRect(canvas, src.Bounds())
		case gif.DisposalPrevious:
			copy(canvas.Pix, restore)
		}
	}

	return imagedata.NewLoadedImage(width, height, frames), nil
}

func clearRect(img *image.NRGBA, r image.Rectangle) {
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[y*img.Stride+r.Min.X*4 : y*img.Stride+r.Max.X*4]
		for i := range row {
			row[i] = 0
		}
	}
}

func (d *Decoder) limits() (maxDim, maxPixels int) {
	maxDim = d.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	maxPixels = d.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return maxDim, maxPixels
}

func (d *Decoder) checkLimits(width, height int) error {
	maxDim, maxPixels := d.limits()
	if width > maxDim || height > maxDim || width*height > maxPixels {
		return fmt.Errorf("%w: %dx%d", ErrResourceLimit, width, height)
	}
	return nil
}

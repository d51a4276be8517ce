package imagedata

import (
	"math"
	"sync/atomic"
	"time"

	"image-viewer/internal/imageformat"
)

// DelayInfinite marks a frame that should be displayed forever (static
// images, single-frame fallbacks).
const DelayInfinite = time.Duration(math.MaxInt64)

// Metadata is the lightweight per-file record produced by discovery.
// Immutable once created, except that content mutations (rotate) update
// Width/Height in lockstep with the cached pixel data.
type Metadata struct {
	Path   string
	Width  int
	Height int
	Format imageformat.Format
}

// FrameData is a single displayable frame: a dense RGBA pixel buffer in
// row-major order plus its display delay.
type FrameData struct {
	Pix   []byte
	Delay time.Duration
}

// LoadedImage is a fully materialized image: one or more frames sharing the
// same dimensions. It is shared read-mostly between the cache and in-flight
// renderers; the refcount supports the copy-on-write mutation protocol.
type LoadedImage struct {
	Width  int
	Height int
	Frames []FrameData

	refs atomic.Int32
}

// NewLoadedImage creates an image with a single owner reference.
func NewLoadedImage(width, height int, frames []FrameData) *LoadedImage {
	img := &LoadedImage{Width: width, Height: height, Frames: frames}
	img.refs.Store(1)
	return img
}

// Retain adds an owner reference and returns the image for chaining.
// Renderers must Retain before reading frames and Release when done.
func (img *LoadedImage) Retain() *LoadedImage {
	img.refs.Add(1)
	return img
}

// Release drops an owner reference.
func (img *LoadedImage) Release() {
	img.refs.Add(-1)
}

// Shared reports whether more than one owner currently holds the image.
// A shared image must never be mutated in place.
func (img *LoadedImage) Shared() bool {
	return img.refs.Load() > 1
}

// Clone returns a deep copy with a fresh single owner reference.
func (img *LoadedImage) Clone() *LoadedImage {
	frames := make([]FrameData, len(img.Frames))
	for i, f := range img.Frames {
		pix := make([]byte, len(f.Pix))
		copy(pix, f.Pix)
		frames[i] = FrameData{Pix: pix, Delay: f.Delay}
	}
	return NewLoadedImage(img.Width, img.Height, frames)
}

// Weight approximates the image's memory footprint in bytes.
func (img *LoadedImage) Weight() int64 {
	var total int64
	for _, f := range img.Frames {
		total += int64(len(f.Pix))
	}
	return total
}

// Thumbnail is a reduced-resolution RGBA rendition of an image. Derived and
// disposable; regenerated lazily on demand.
type Thumbnail struct {
	Width  int
	Height int
	Pix    []byte
}

// Weight approximates the thumbnail's memory footprint in bytes.
func (t *Thumbnail) Weight() int64 {
	return int64(len(t.Pix))
}

package imagedata

import (
	"image"

	"github.com/disintegration/imaging"
)

// The geometric transforms below operate on every frame independently.
// They are pure pixel-buffer operations with no dependency on the loader or
// cache; callers are responsible for the copy-on-write ownership check
// before mutating a shared image.

// RotateCW rotates the image 90 degrees clockwise, swapping width and height.
func (img *LoadedImage) RotateCW() {
	img.apply(imaging.Rotate270, true)
}

// RotateCCW rotates the image 90 degrees counter-clockwise, swapping width
// and height.
func (img *LoadedImage) RotateCCW() {
	img.apply(imaging.Rotate90, true)
}

// FlipH mirrors the image horizontally (left to right).
func (img *LoadedImage) FlipH() {
	img.apply(imaging.FlipH, false)
}

// FlipV mirrors the image vertically (top to bottom).
func (img *LoadedImage) FlipV() {
	img.apply(imaging.FlipV, false)
}

func (img *LoadedImage) apply(op func(image.Image) *image.NRGBA, swapDims bool) {
	for i := range img.Frames {
		src := &image.NRGBA{
			Pix:    img.Frames[i].Pix,
			Stride: img.Width * 4,
			Rect:   image.Rect(0, 0, img.Width, img.Height),
		}
		img.Frames[i].Pix = op(src).Pix
	}
	if swapDims {
		img.Width, img.Height = img.Height, img.Width
	}
}

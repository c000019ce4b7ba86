// Package imaging wraps raw rasterizer output in frame-tagged image types:
// binary segmentation masks, depth images and color images.
package imaging

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// Image is implemented by every frame-tagged image wrapper.
type Image interface {
	// Frame returns the name of the camera frame the image was captured in.
	Frame() string
	Width() int
	Height() int
}

// BinaryImage is a per-pixel object-occupancy mask. Pixels are 0 or 255.
type BinaryImage struct {
	width, height int
	pix           []uint8
	frame         string
}

// NewBinaryImage wraps a single-channel row-major raster, thresholding
// every nonzero sample to 255.
func NewBinaryImage(pix []uint8, width, height int, frame string) *BinaryImage {
	out := make([]uint8, len(pix))
	for i, v := range pix {
		if v != 0 {
			out[i] = 255
		}
	}
	return &BinaryImage{width: width, height: height, pix: out, frame: frame}
}

func (im *BinaryImage) Frame() string { return im.frame }
func (im *BinaryImage) Width() int    { return im.width }
func (im *BinaryImage) Height() int   { return im.height }

// At reports whether the object covers pixel (x, y).
func (im *BinaryImage) At(x, y int) bool { return im.pix[y*im.width+x] != 0 }

// Pix returns the underlying mask, row major.
func (im *BinaryImage) Pix() []uint8 { return im.pix }

// Gray converts the mask to a stdlib grayscale image for encoding.
func (im *BinaryImage) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, im.width, im.height))
	copy(g.Pix, im.pix)
	return g
}

// ColorImage is a frame-tagged RGBA image.
type ColorImage struct {
	img   *image.NRGBA
	frame string
}

// NewColorImage tags a stdlib image with its camera frame.
func NewColorImage(img *image.NRGBA, frame string) *ColorImage {
	return &ColorImage{img: img, frame: frame}
}

func (im *ColorImage) Frame() string { return im.frame }
func (im *ColorImage) Width() int    { return im.img.Bounds().Dx() }
func (im *ColorImage) Height() int   { return im.img.Bounds().Dy() }

// Image returns the underlying stdlib image.
func (im *ColorImage) Image() *image.NRGBA { return im.img }

// Resize returns the image scaled to width×height with bilinear filtering.
func (im *ColorImage) Resize(width, height uint) *ColorImage {
	scaled := resize.Resize(width, height, im.img, resize.Bilinear)
	out := image.NewNRGBA(scaled.Bounds())
	draw.Draw(out, out.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	return &ColorImage{img: out, frame: im.frame}
}

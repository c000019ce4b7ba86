// Package render defines the batch mesh-rasterization contract consumed by
// the virtual camera, together with a software implementation of it.
package render

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// MeshRasterizer renders a batch of views of an indexed triangle mesh.
//
// Implementations receive one 3×4 pixel-space projection matrix per view and
// must return one binary raster and one depth map per matrix, in input
// order. The whole batch is issued in a single call so implementations can
// amortize mesh upload across views; callers must not assume a rasterizer
// is re-entrant unless it documents otherwise.
type MeshRasterizer interface {
	RenderMesh(projections []*mat.Dense, height, width int, vertices []r3.Vec, triangles [][3]uint32, debug bool) ([]*RGBImage, []*DepthMap, error)
}

// RGBImage is an 8-bit RGB raster stored row major, three bytes per pixel.
type RGBImage struct {
	Width, Height int
	Pix           []uint8
}

// NewRGBImage returns a black width×height raster.
func NewRGBImage(width, height int) *RGBImage {
	return &RGBImage{Width: width, Height: height, Pix: make([]uint8, 3*width*height)}
}

// At returns the pixel at (x, y).
func (im *RGBImage) At(x, y int) (r, g, b uint8) {
	i := 3 * (y*im.Width + x)
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

// Channel returns a copy of color channel c (0, 1 or 2), row major.
func (im *RGBImage) Channel(c int) []uint8 {
	out := make([]uint8, im.Width*im.Height)
	for i := range out {
		out[i] = im.Pix[3*i+c]
	}
	return out
}

// DepthMap stores one float32 camera-frame depth per pixel, row major.
// Pixels with no surface sample are 0.
type DepthMap struct {
	Width, Height int
	Pix           []float32
}

// NewDepthMap returns an empty width×height depth map.
func NewDepthMap(width, height int) *DepthMap {
	return &DepthMap{Width: width, Height: height, Pix: make([]float32, width*height)}
}

// At returns the depth at (x, y).
func (dm *DepthMap) At(x, y int) float32 { return dm.Pix[y*dm.Width+x] }

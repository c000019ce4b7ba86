package imaging

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"gonum.org/v1/plot/palette/moreland"
)

// DepthImage stores one camera-frame depth sample per pixel. A zero sample
// marks background (no surface hit).
type DepthImage struct {
	width, height int
	pix           []float32
	frame         string
}

// NewDepthImage copies a row-major depth raster into a tagged image.
func NewDepthImage(pix []float32, width, height int, frame string) *DepthImage {
	out := make([]float32, len(pix))
	copy(out, pix)
	return &DepthImage{width: width, height: height, pix: out, frame: frame}
}

func (im *DepthImage) Frame() string { return im.frame }
func (im *DepthImage) Width() int    { return im.width }
func (im *DepthImage) Height() int   { return im.height }

// At returns the depth at (x, y).
func (im *DepthImage) At(x, y int) float32 { return im.pix[y*im.width+x] }

// Pix returns the underlying depth samples, row major.
func (im *DepthImage) Pix() []float32 { return im.pix }

// MinMax returns the smallest and largest foreground depth samples. ok is
// false when the image holds no finite foreground samples.
func (im *DepthImage) MinMax() (min, max float32, ok bool) {
	min = math32.MaxFloat32
	for _, v := range im.pix {
		if v == 0 || math32.IsNaN(v) || math32.IsInf(v, 0) {
			continue
		}
		ok = true
		min = math32.Min(min, v)
		max = math32.Max(max, v)
	}
	if !ok {
		return 0, 0, false
	}
	return min, max, true
}

// ToColor false-colors the depth image for visualization: near samples map
// to the blue end of a smooth blue-red palette, far samples to the red end
// and background stays black.
func (im *DepthImage) ToColor() *ColorImage {
	out := image.NewNRGBA(image.Rect(0, 0, im.width, im.height))
	min, max, ok := im.MinMax()
	if !ok {
		for y := 0; y < im.height; y++ {
			for x := 0; x < im.width; x++ {
				out.Set(x, y, color.Black)
			}
		}
		return &ColorImage{img: out, frame: im.frame}
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(float64(min))
	if max == min {
		// Flat foreground: widen the range so the palette lookup is
		// well defined.
		max = min + 1
	}
	cm.SetMax(float64(max))
	for y := 0; y < im.height; y++ {
		for x := 0; x < im.width; x++ {
			v := im.pix[y*im.width+x]
			if v == 0 {
				out.Set(x, y, color.Black)
				continue
			}
			c, err := cm.At(float64(v))
			if err != nil {
				out.Set(x, y, color.Black)
				continue
			}
			out.Set(x, y, c)
		}
	}
	return &ColorImage{img: out, frame: im.frame}
}

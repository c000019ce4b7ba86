package render

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Software is a CPU MeshRasterizer using barycentric rasterization with
// perspective-correct depth: 1/z interpolates linearly in screen space, so
// the stored depth is the exact camera-frame depth of the surface sample.
// The zero value is ready to use. Software is safe for concurrent use since
// it holds no mutable state across calls.
type Software struct {
	// MinDepth culls triangles with a vertex at or closer than this
	// camera-frame depth. Zero selects the 1e-6 default.
	MinDepth float64
}

// RenderMesh implements MeshRasterizer.
func (sw Software) RenderMesh(projections []*mat.Dense, height, width int, vertices []r3.Vec, triangles [][3]uint32, debug bool) ([]*RGBImage, []*DepthMap, error) {
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("render: raster size %dx%d, want positive dimensions", width, height)
	}
	for _, p := range projections {
		if r, c := p.Dims(); r != 3 || c != 4 {
			return nil, nil, fmt.Errorf("render: projection matrix is %dx%d, want 3x4", r, c)
		}
	}
	for _, tri := range triangles {
		for _, v := range tri {
			if int(v) >= len(vertices) {
				return nil, nil, fmt.Errorf("render: triangle index %d out of range for %d vertices", v, len(vertices))
			}
		}
	}
	minDepth := sw.MinDepth
	if minDepth <= 0 {
		minDepth = 1e-6
	}

	binary := make([]*RGBImage, len(projections))
	depth := make([]*DepthMap, len(projections))
	proj := make([]projVertex, len(vertices))
	for i, p := range projections {
		start := time.Now()
		binary[i], depth[i] = renderView(p, height, width, vertices, triangles, proj, minDepth)
		if debug {
			log.Debug("rasterized view", "view", i, "triangles", len(triangles), "elapsed", time.Since(start))
		}
	}
	return binary, depth, nil
}

// projVertex is a mesh vertex projected into one view.
type projVertex struct {
	sx, sy float64 // screen coordinates in pixels
	invz   float64 // reciprocal camera-frame depth
	ok     bool    // in front of the camera
}

func renderView(p *mat.Dense, height, width int, vertices []r3.Vec, triangles [][3]uint32, proj []projVertex, minDepth float64) (*RGBImage, *DepthMap) {
	p00, p01, p02, p03 := p.At(0, 0), p.At(0, 1), p.At(0, 2), p.At(0, 3)
	p10, p11, p12, p13 := p.At(1, 0), p.At(1, 1), p.At(1, 2), p.At(1, 3)
	p20, p21, p22, p23 := p.At(2, 0), p.At(2, 1), p.At(2, 2), p.At(2, 3)

	for i, v := range vertices {
		z := p20*v.X + p21*v.Y + p22*v.Z + p23
		if z <= minDepth {
			proj[i] = projVertex{}
			continue
		}
		u := p00*v.X + p01*v.Y + p02*v.Z + p03
		w := p10*v.X + p11*v.Y + p12*v.Z + p13
		proj[i] = projVertex{sx: u / z, sy: w / z, invz: 1 / z, ok: true}
	}

	im := NewRGBImage(width, height)
	dm := NewDepthMap(width, height)
	for _, tri := range triangles {
		a, b, c := proj[tri[0]], proj[tri[1]], proj[tri[2]]
		if !a.ok || !b.ok || !c.ok {
			// Triangles crossing the camera plane are culled whole rather
			// than clipped; the viewsphere keeps the mesh well in front of
			// the camera so the difference is not observable there.
			continue
		}
		rasterizeTriangle(im, dm, a, b, c)
	}
	return im, dm
}

func rasterizeTriangle(im *RGBImage, dm *DepthMap, a, b, c projVertex) {
	area := edgeFn(a.sx, a.sy, b.sx, b.sy, c.sx, c.sy)
	if area == 0 {
		return
	}
	inv := 1 / area

	minX := clampInt(int(math.Floor(min3(a.sx, b.sx, c.sx))), 0, im.Width-1)
	maxX := clampInt(int(math.Ceil(max3(a.sx, b.sx, c.sx))), 0, im.Width-1)
	minY := clampInt(int(math.Floor(min3(a.sy, b.sy, c.sy))), 0, im.Height-1)
	maxY := clampInt(int(math.Ceil(max3(a.sy, b.sy, c.sy))), 0, im.Height-1)

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			// Barycentric weights normalized by the signed area, so the
			// inside test holds for either triangle winding.
			wa := edgeFn(b.sx, b.sy, c.sx, c.sy, px, py) * inv
			wb := edgeFn(c.sx, c.sy, a.sx, a.sy, px, py) * inv
			wc := edgeFn(a.sx, a.sy, b.sx, b.sy, px, py) * inv
			if wa < 0 || wb < 0 || wc < 0 {
				continue
			}
			z := float32(1 / (wa*a.invz + wb*b.invz + wc*c.invz))
			idx := y*dm.Width + x
			if d := dm.Pix[idx]; d != 0 && z >= d {
				continue
			}
			dm.Pix[idx] = z
			pi := 3 * idx
			im.Pix[pi], im.Pix[pi+1], im.Pix[pi+2] = 255, 255, 255
		}
	}
}

// edgeFn is the signed parallelogram area of (a, b, p): positive when p is
// to the left of the directed edge a→b.
func edgeFn(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

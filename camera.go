// Package meshpy generates calibrated virtual-camera views of triangle
// meshes. A ViewsphereDiscretizer enumerates camera placements on a sphere
// around an object, a VirtualCamera turns those placements into 3×4
// projection matrices and delegates rendering to a batch rasterizer, and
// the resulting segmentation and depth images are packaged together with
// their camera-to-object transforms, optionally corrected for a mesh's
// stable resting pose.
package meshpy

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cbteeple/meshpy/imaging"
	"github.com/cbteeple/meshpy/render"
)

// RenderMode selects how WrappedImages packages rasterizer output.
type RenderMode uint8

const (
	// RenderSegmask packages the binary object-occupancy mask.
	RenderSegmask RenderMode = iota
	// RenderDepth packages the raw depth image.
	RenderDepth
	// RenderScaledDepth packages a false-color visualization of depth.
	RenderScaledDepth
	// RenderColor is a recognized mode that the current rasterizer
	// contract cannot produce; requesting it yields
	// ErrUnsupportedRenderMode.
	RenderColor
)

func (m RenderMode) String() string {
	switch m {
	case RenderSegmask:
		return "segmask"
	case RenderDepth:
		return "depth"
	case RenderScaledDepth:
		return "scaled-depth"
	case RenderColor:
		return "color"
	}
	return fmt.Sprintf("RenderMode(%d)", uint8(m))
}

// ObjectRender pairs one rendered image with the camera-to-object transform
// of the view that produced it.
type ObjectRender struct {
	Image imaging.Image
	// TCameraObj maps camera-frame points into the object frame: where the
	// object sits relative to the camera.
	TCameraObj RigidTransform
}

// VirtualCamera renders virtual views of meshes through a rasterizer
// collaborator. It holds only read-only intrinsics, so distinct instances
// are independent and each call is stateless; whether calls may overlap
// depends on the rasterizer.
type VirtualCamera struct {
	intr Intrinsics
	rast render.MeshRasterizer
	log  *log.Logger
}

// NewVirtualCamera builds a virtual camera around intrinsics and a
// rasterizer. A nil rasterizer selects the software implementation. It
// returns ErrInvalidIntrinsics when the intrinsics violate the capability
// contract.
func NewVirtualCamera(intr Intrinsics, rast render.MeshRasterizer) (*VirtualCamera, error) {
	if err := validateIntrinsics(intr); err != nil {
		return nil, err
	}
	if rast == nil {
		rast = render.Software{}
	}
	return &VirtualCamera{intr: intr, rast: rast, log: log.Default()}, nil
}

func validateIntrinsics(intr Intrinsics) error {
	if intr == nil {
		return fmt.Errorf("%w: nil", ErrInvalidIntrinsics)
	}
	if intr.Width() <= 0 || intr.Height() <= 0 {
		return fmt.Errorf("%w: image dimensions %dx%d", ErrInvalidIntrinsics, intr.Width(), intr.Height())
	}
	k := intr.ProjMatrix()
	if k == nil {
		return fmt.Errorf("%w: nil projection matrix", ErrInvalidIntrinsics)
	}
	if r, c := k.Dims(); r != 3 || (c != 3 && c != 4) {
		return fmt.Errorf("%w: projection matrix is %dx%d, want 3x3 or 3x4", ErrInvalidIntrinsics, r, c)
	}
	return nil
}

// SetLogger replaces the logger used for render timing diagnostics.
func (vc *VirtualCamera) SetLogger(l *log.Logger) { vc.log = l }

// Intrinsics returns the camera intrinsics.
func (vc *VirtualCamera) Intrinsics() Intrinsics { return vc.intr }

// Images renders the mesh once per pose and returns the parallel binary and
// depth image sequences in pose order. Each pose must map object-frame
// points into the camera frame, the direction
// ViewsphereDiscretizer.ObjectToCameraPoses produces. The whole batch is
// handed to the rasterizer in a single call; rasterization failures are
// propagated unmodified.
func (vc *VirtualCamera) Images(m Mesh, objectToCameraPoses []RigidTransform, debug bool) ([]*render.RGBImage, []*render.DepthMap, error) {
	verts := m.Vertices()
	tris := m.Triangles()
	tris32 := make([][3]uint32, len(tris))
	for i, t := range tris {
		tris32[i] = [3]uint32{uint32(t[0]), uint32(t[1]), uint32(t[2])}
	}
	projections := make([]*mat.Dense, len(objectToCameraPoses))
	for i, pose := range objectToCameraPoses {
		projections[i] = vc.projection(pose)
	}

	start := time.Now()
	binary, depth, err := vc.rast.RenderMesh(projections, vc.intr.Height(), vc.intr.Width(), verts, tris32, debug)
	if err != nil {
		return nil, nil, fmt.Errorf("render batch of %d views: %w", len(projections), err)
	}
	vc.log.Debug("rendered mesh batch", "views", len(projections), "elapsed", time.Since(start))
	return binary, depth, nil
}

// ImagesViewsphere renders the mesh from every pose of a viewsphere.
func (vc *VirtualCamera) ImagesViewsphere(m Mesh, vs *ViewsphereDiscretizer) ([]*render.RGBImage, []*render.DepthMap, error) {
	return vc.Images(m, vs.ObjectToCameraPoses(), false)
}

// WrappedImages renders the mesh at each pose and wraps the output
// according to the render mode, pairing every image with the inverse of the
// pose used so callers receive conventional camera-to-object transforms.
//
// When a stable pose is supplied the input poses are reinterpreted as
// stable-pose-frame→camera transforms and right-multiplied by the pose's
// object→stable-pose rotation before rendering; the returned transforms
// invert the original inputs, not the recomposed ones.
//
// Unsupported render modes return ErrUnsupportedRenderMode.
func (vc *VirtualCamera) WrappedImages(m Mesh, objectToCameraPoses []RigidTransform, mode RenderMode, stablePose *StablePose, debug bool) ([]ObjectRender, error) {
	if mode != RenderSegmask && mode != RenderDepth && mode != RenderScaledDepth {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedRenderMode, mode)
	}

	poses := objectToCameraPoses
	invertible := objectToCameraPoses
	if stablePose != nil {
		tObjStp := NewRigidTransform(stablePose.r, r3.Vec{}, FrameObject, FrameStablePose)
		recomposed := make([]RigidTransform, len(poses))
		retagged := make([]RigidTransform, len(poses))
		for i, pose := range poses {
			tStpCamera := pose.WithFrames(FrameStablePose, pose.To())
			retagged[i] = tStpCamera
			recomposed[i] = tStpCamera.Compose(tObjStp)
		}
		poses = recomposed
		invertible = retagged
	}

	binary, depth, err := vc.Images(m, poses, debug)
	if err != nil {
		return nil, err
	}

	frame := vc.intr.Frame()
	w, h := vc.intr.Width(), vc.intr.Height()
	renders := make([]ObjectRender, len(poses))
	for i := range poses {
		var img imaging.Image
		switch mode {
		case RenderSegmask:
			img = imaging.NewBinaryImage(binary[i].Channel(0), w, h, frame)
		case RenderDepth:
			img = imaging.NewDepthImage(depth[i].Pix, w, h, frame)
		case RenderScaledDepth:
			img = imaging.NewDepthImage(depth[i].Pix, w, h, frame).ToColor()
		}
		renders[i] = ObjectRender{Image: img, TCameraObj: invertible[i].Inverse()}
	}
	return renders, nil
}

// WrappedImagesViewsphere wraps renders of the mesh from every pose of a
// viewsphere.
func (vc *VirtualCamera) WrappedImagesViewsphere(m Mesh, vs *ViewsphereDiscretizer, mode RenderMode, stablePose *StablePose) ([]ObjectRender, error) {
	return vc.WrappedImages(m, vs.ObjectToCameraPoses(), mode, stablePose, false)
}

// projection builds the 3×4 matrix P = K·[R|t] mapping object-frame points
// to homogeneous pixel coordinates. A 3×4 intrinsics matrix multiplies the
// full 4×4 homogeneous pose instead.
func (vc *VirtualCamera) projection(pose RigidTransform) *mat.Dense {
	r := pose.rot
	t := pose.trans
	k := vc.intr.ProjMatrix()
	var p mat.Dense
	if _, kc := k.Dims(); kc == 4 {
		h := mat.NewDense(4, 4, []float64{
			r.At(0, 0), r.At(0, 1), r.At(0, 2), t.X,
			r.At(1, 0), r.At(1, 1), r.At(1, 2), t.Y,
			r.At(2, 0), r.At(2, 1), r.At(2, 2), t.Z,
			0, 0, 0, 1,
		})
		p.Mul(k, h)
		return &p
	}
	rt := mat.NewDense(3, 4, []float64{
		r.At(0, 0), r.At(0, 1), r.At(0, 2), t.X,
		r.At(1, 0), r.At(1, 1), r.At(1, 2), t.Y,
		r.At(2, 0), r.At(2, 1), r.At(2, 2), t.Z,
	})
	p.Mul(k, rt)
	return &p
}

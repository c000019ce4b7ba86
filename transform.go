package meshpy

import (
	"fmt"
	"math"

	"github.com/cbteeple/meshpy/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame names used by the viewsphere rendering pipeline.
const (
	FrameObject     = "obj"
	FrameCamera     = "camera"
	FrameStablePose = "stp"
	FrameTable      = "table"
)

// properRotationTol is the determinant tolerance accepted by
// NewRigidTransform before declaring a rotation improper.
const properRotationTol = 1e-4

// RigidTransform is a rotation and translation between two named coordinate
// frames. Applying the transform maps points expressed in the From frame
// into the To frame; the frame tags make the direction of every pose
// explicit so that object→camera and camera→object transforms cannot be
// mixed up silently.
type RigidTransform struct {
	rot   *r3.Mat
	trans r3.Vec
	from  string
	to    string
}

// NewRigidTransform builds a transform from a rotation matrix and a
// translation vector. The rotation is copied. NewRigidTransform panics if
// the rotation is not proper (determinant +1 within tolerance): a negative
// determinant means a reflection snuck in, which has no physical pose
// interpretation.
func NewRigidTransform(rotation *r3.Mat, translation r3.Vec, from, to string) RigidTransform {
	rot := cloneMat(rotation)
	if d := rot.Det(); math.Abs(d-1) > properRotationTol {
		panic(fmt.Sprintf("meshpy: rigid transform %s->%s: rotation determinant %g, want +1", from, to, d))
	}
	return RigidTransform{rot: rot, trans: translation, from: from, to: to}
}

// Rotation returns a copy of the 3×3 rotation matrix.
func (t RigidTransform) Rotation() *r3.Mat { return cloneMat(t.rot) }

// Translation returns the translation vector.
func (t RigidTransform) Translation() r3.Vec { return t.trans }

// From returns the name of the frame the transform maps points from.
func (t RigidTransform) From() string { return t.from }

// To returns the name of the frame the transform maps points into.
func (t RigidTransform) To() string { return t.to }

// WithFrames returns a copy of the transform relabeled with new frame names.
// The rotation and translation are unchanged.
func (t RigidTransform) WithFrames(from, to string) RigidTransform {
	t.from = from
	t.to = to
	return t
}

// Apply maps a point expressed in the From frame into the To frame.
func (t RigidTransform) Apply(p r3.Vec) r3.Vec {
	return t.homogeneous().Transform(p)
}

// Compose combines two transforms such that u is applied first:
//
//	t.Compose(u).Apply(p) == t.Apply(u.Apply(p))
//
// u's To frame must match t's From frame; Compose panics otherwise since a
// mismatch is always a direction-convention bug at the call site.
func (t RigidTransform) Compose(u RigidTransform) RigidTransform {
	if t.from != u.to {
		panic(fmt.Sprintf("meshpy: cannot compose %s->%s with %s->%s: frame mismatch", u.from, u.to, t.from, t.to))
	}
	a := t.homogeneous().Mul(u.homogeneous()).SliceCopy()
	return RigidTransform{
		rot: r3.NewMat([]float64{
			a[0], a[1], a[2],
			a[4], a[5], a[6],
			a[8], a[9], a[10],
		}),
		trans: r3.Vec{X: a[3], Y: a[7], Z: a[11]},
		from:  u.from,
		to:    t.to,
	}
}

// Inverse returns the transform mapping the To frame back into the From
// frame: the transposed rotation and the negated, rotated translation.
func (t RigidTransform) Inverse() RigidTransform {
	return RigidTransform{
		rot: r3.NewMat([]float64{
			t.rot.At(0, 0), t.rot.At(1, 0), t.rot.At(2, 0),
			t.rot.At(0, 1), t.rot.At(1, 1), t.rot.At(2, 1),
			t.rot.At(0, 2), t.rot.At(1, 2), t.rot.At(2, 2),
		}),
		trans: r3.Scale(-1, t.rot.MulVecTrans(t.trans)),
		from:  t.to,
		to:    t.from,
	}
}

// homogeneous returns the 4×4 homogeneous form of the transform.
func (t RigidTransform) homogeneous() d3.Transform {
	return d3.NewTransform([]float64{
		t.rot.At(0, 0), t.rot.At(0, 1), t.rot.At(0, 2), t.trans.X,
		t.rot.At(1, 0), t.rot.At(1, 1), t.rot.At(1, 2), t.trans.Y,
		t.rot.At(2, 0), t.rot.At(2, 1), t.rot.At(2, 2), t.trans.Z,
		0, 0, 0, 1,
	})
}

func cloneMat(m *r3.Mat) *r3.Mat {
	return r3.NewMat([]float64{
		m.At(0, 0), m.At(0, 1), m.At(0, 2),
		m.At(1, 0), m.At(1, 1), m.At(1, 2),
		m.At(2, 0), m.At(2, 1), m.At(2, 2),
	})
}

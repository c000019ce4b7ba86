package meshpy

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// StablePose is one resting orientation of a mesh on a planar support
// surface: the probability of the object coming to rest in it, the rotation
// from standardized object coordinates into the pose, and the mesh point in
// contact with the table. Immutable after construction.
type StablePose struct {
	p  float64
	r  *r3.Mat
	x0 r3.Vec
	id string
}

// NewStablePose builds a stable pose record. The rotation is copied; if its
// determinant is within 0.01 of -1 the second row is negated to restore a
// proper rotation. The row flip matches how the upstream pose estimator
// emits reflected rotations and is not a general improper-rotation repair.
func NewStablePose(p float64, rotation *r3.Mat, x0 r3.Vec, id string) StablePose {
	r := cloneMat(rotation)
	if math.Abs(r.Det()+1) < 0.01 {
		for j := 0; j < 3; j++ {
			r.Set(1, j, -r.At(1, j))
		}
	}
	return StablePose{p: p, r: r, x0: x0, id: id}
}

// Probability returns the likelihood of the object resting in this pose.
func (sp StablePose) Probability() float64 { return sp.p }

// Rotation returns a copy of the corrected 3×3 rotation matrix.
func (sp StablePose) Rotation() *r3.Mat { return cloneMat(sp.r) }

// ContactPoint returns the mesh point resting on the table.
func (sp StablePose) ContactPoint() r3.Vec { return sp.x0 }

// ID returns the pose identifier.
func (sp StablePose) ID() string { return sp.id }

// TObjTable returns the rigid transform with this pose's rotation and zero
// translation, mapping the object frame into the table frame. It is cheap
// and recomputed on each call.
func (sp StablePose) TObjTable() RigidTransform {
	return NewRigidTransform(sp.r, r3.Vec{}, FrameObject, FrameTable)
}

package meshpy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ViewsphereParams parametrizes a discretized viewing sphere around an
// object. Radius and elevation sample both interval endpoints; azimuth and
// roll are periodic so their intervals are half-open (azimuth 0 and 2π are
// the same camera position). Zero-valued azimuth and roll fields default to
// a single sample of the full [0, 2π) circle.
type ViewsphereParams struct {
	MinRadius, MaxRadius float64 // viewing sphere radius bounds
	NumRadii             int
	MinElev, MaxElev     float64 // elevation, measured from the object +z axis
	NumElev              int
	MinAz, MaxAz         float64 // azimuth, measured from the object +x axis
	NumAz                int
	MinRoll, MaxRoll     float64 // in-plane camera roll
	NumRoll              int
}

// ViewsphereDiscretizer enumerates virtual camera placements on a viewing
// sphere. It is immutable after construction and ObjectToCameraPoses is a
// pure function of its configuration.
type ViewsphereDiscretizer struct {
	p ViewsphereParams
}

// NewViewsphereDiscretizer validates the parameters, applying the periodic
// defaults first. It returns ErrInvalidDiscretization when the radius,
// azimuth or elevation dimension has fewer than one sample.
func NewViewsphereDiscretizer(p ViewsphereParams) (*ViewsphereDiscretizer, error) {
	if p.MinAz == 0 && p.MaxAz == 0 {
		p.MaxAz = 2 * math.Pi
	}
	if p.NumAz == 0 {
		p.NumAz = 1
	}
	if p.MinRoll == 0 && p.MaxRoll == 0 {
		p.MaxRoll = 2 * math.Pi
	}
	if p.NumRoll == 0 {
		p.NumRoll = 1
	}
	if p.NumRadii < 1 || p.NumAz < 1 || p.NumElev < 1 {
		return nil, fmt.Errorf("%w: radii=%d azimuths=%d elevations=%d",
			ErrInvalidDiscretization, p.NumRadii, p.NumAz, p.NumElev)
	}
	return &ViewsphereDiscretizer{p: p}, nil
}

// Params returns a copy of the discretizer configuration after defaulting.
func (vs *ViewsphereDiscretizer) Params() ViewsphereParams { return vs.p }

// ObjectToCameraPoses converts the discretization into an ordered sequence
// of rigid transforms mapping object-frame points into the camera frame.
// The order is deterministic: radius outermost, then elevation, then
// azimuth, then roll.
//
// When min==max on the radius or elevation axis the realized sample count
// collapses to one regardless of the configured count, per the step rules
// below; callers should not assume the output length equals the product of
// the configured counts in those edge cases.
func (vs *ViewsphereDiscretizer) ObjectToCameraPoses() []RigidTransform {
	p := vs.p

	// Step sizes. A degenerate min==max interval steps by 1 and the
	// single-sample case steps past max so each loop runs exactly once.
	var radiusInc float64
	switch {
	case p.MaxRadius == p.MinRadius:
		radiusInc = 1
	case p.NumRadii == 1:
		radiusInc = p.MaxRadius - p.MinRadius + 1
	default:
		radiusInc = (p.MaxRadius - p.MinRadius) / float64(p.NumRadii-1)
	}
	var elevInc float64
	switch {
	case p.MaxElev == p.MinElev:
		elevInc = 1
	case p.NumElev == 1:
		elevInc = p.MaxElev - p.MinElev + 1
	default:
		elevInc = (p.MaxElev - p.MinElev) / float64(p.NumElev-1)
	}
	azInc := (p.MaxAz - p.MinAz) / float64(p.NumAz)
	rollInc := (p.MaxRoll - p.MinRoll) / float64(p.NumRoll)

	var poses []RigidTransform
	for radius := p.MinRadius; radius <= p.MaxRadius; radius += radiusInc {
		for elev := p.MinElev; elev <= p.MaxElev; elev += elevInc {
			// azimuth and roll endpoints are excluded: the interval is
			// periodic and the endpoint duplicates the start.
			for az := p.MinAz; az < p.MaxAz; az += azInc {
				for roll := p.MinRoll; roll < p.MaxRoll; roll += rollInc {
					poses = append(poses, cameraPose(radius, az, elev, roll).Inverse())
				}
			}
		}
	}
	return poses
}

// cameraPose builds the camera→object transform for a single grid point:
// the camera sits at the spherical coordinate and looks at the object
// origin.
func cameraPose(radius, az, elev, roll float64) RigidTransform {
	center := Sph2Cart(radius, az, elev)
	camZ := r3.Unit(r3.Scale(-1, center))

	// Canonical in-plane x axis perpendicular to the viewing direction.
	camX := r3.Vec{X: camZ.Y, Y: -camZ.X}
	if r3.Norm(camX) == 0 {
		// Looking straight along the world z axis; any in-plane axis works.
		camX = r3.Vec{X: 1}
	}
	camX = r3.Unit(camX)
	camY := r3.Unit(r3.Cross(camZ, camX))
	if camY.Z > 0 {
		// Keep camera up roughly opposing world z so the frame does not
		// flip 180° in roll across the sphere.
		camX = r3.Scale(-1, camX)
		camY = r3.Unit(r3.Cross(camZ, camX))
	}

	// Columns are the camera axes expressed in the object frame.
	rotParallel := r3.NewMat([]float64{
		camX.X, camY.X, camZ.X,
		camX.Y, camY.Y, camZ.Y,
		camX.Z, camY.Z, camZ.Z,
	})
	sinRoll, cosRoll := math.Sincos(roll)
	rollRot := r3.NewMat([]float64{
		cosRoll, -sinRoll, 0,
		sinRoll, cosRoll, 0,
		0, 0, 1,
	})
	rot := r3.NewMat(nil)
	rot.Mul(rotParallel, rollRot)
	return NewRigidTransform(rot, center, FrameCamera, FrameObject)
}

// Sph2Cart converts spherical coordinates to Cartesian coordinates using
// the physics convention: elevation is measured from the +z axis and
// azimuth from the +x axis.
func Sph2Cart(r, az, elev float64) r3.Vec {
	sinAz, cosAz := math.Sincos(az)
	sinElev, cosElev := math.Sincos(elev)
	return r3.Vec{
		X: r * cosAz * sinElev,
		Y: r * sinAz * sinElev,
		Z: r * cosElev,
	}
}

// Cart2Sph is the inverse of Sph2Cart. The azimuth is returned in [0, 2π).
// On the poles (x == 0 and y == 0) the azimuth is undefined and returned
// as NaN.
func Cart2Sph(v r3.Vec) (r, az, elev float64) {
	r = r3.Norm(v)
	x, y := v.X, v.Y
	switch {
	case x > 0 && y > 0:
		az = math.Atan(y / x)
	case x > 0 && y < 0:
		az = 2*math.Pi - math.Atan(-y/x)
	case x < 0 && y > 0:
		az = math.Pi - math.Atan(-y/x)
	case x < 0 && y < 0:
		az = math.Pi + math.Atan(y/x)
	case x == 0 && y > 0:
		az = math.Pi / 2
	case x == 0 && y < 0:
		az = 3 * math.Pi / 2
	case y == 0 && x > 0:
		az = 0
	case y == 0 && x < 0:
		az = math.Pi
	default:
		az = math.NaN()
	}
	elev = math.Acos(v.Z / r)
	return r, az, elev
}

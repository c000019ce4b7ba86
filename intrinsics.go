package meshpy

import "gonum.org/v1/gonum/mat"

// Intrinsics is the capability contract for camera intrinsics consumed by
// VirtualCamera: positive image dimensions, a frame label used to tag
// output images, and a 3×3 or 3×4 projection matrix.
type Intrinsics interface {
	Height() int
	Width() int
	// Frame returns the name of the camera frame images are captured in.
	Frame() string
	// ProjMatrix returns the intrinsics projection matrix, 3×3 or 3×4.
	ProjMatrix() *mat.Dense
}

// CameraIntrinsics is a concrete pinhole camera model implementing
// Intrinsics. Focal lengths and principal point are in pixels.
type CameraIntrinsics struct {
	frame  string
	fx, fy float64
	cx, cy float64
	skew   float64
	height int
	width  int
}

// NewCameraIntrinsics builds pinhole intrinsics for a height×width image.
func NewCameraIntrinsics(frame string, fx, fy, cx, cy, skew float64, height, width int) *CameraIntrinsics {
	return &CameraIntrinsics{
		frame: frame,
		fx:    fx, fy: fy,
		cx: cx, cy: cy,
		skew:   skew,
		height: height,
		width:  width,
	}
}

func (c *CameraIntrinsics) Height() int   { return c.height }
func (c *CameraIntrinsics) Width() int    { return c.width }
func (c *CameraIntrinsics) Frame() string { return c.frame }

// ProjMatrix returns the 3×3 pinhole projection matrix K.
func (c *CameraIntrinsics) ProjMatrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		c.fx, c.skew, c.cx,
		0, c.fy, c.cy,
		0, 0, 1,
	})
}

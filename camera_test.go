package meshpy

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cbteeple/meshpy/imaging"
)

// squareMesh is a cx-centered square of side 2*half in the z=0 plane.
func squareMesh(cx, half float64) *TriangleMesh {
	verts := []r3.Vec{
		{X: cx - half, Y: -half},
		{X: cx + half, Y: -half},
		{X: cx + half, Y: half},
		{X: cx - half, Y: half},
	}
	return NewTriangleMesh(verts, [][3]int{{0, 1, 2}, {0, 2, 3}})
}

func testIntrinsics() *CameraIntrinsics {
	return NewCameraIntrinsics("camera", 64, 64, 32, 32, 0, 64, 64)
}

// frontalPose is the single viewsphere pose looking straight down the
// object z axis from one unit away.
func frontalPose(t *testing.T) []RigidTransform {
	t.Helper()
	vs := mustViewsphere(t, ViewsphereParams{
		MinRadius: 1, MaxRadius: 1, NumRadii: 1,
		MinElev: 0, MaxElev: 0, NumElev: 1,
		NumAz: 1,
	})
	poses := vs.ObjectToCameraPoses()
	if len(poses) != 1 {
		t.Fatalf("got %d poses, want 1", len(poses))
	}
	return poses
}

type stubIntrinsics struct {
	h, w int
	k    *mat.Dense
}

func (s stubIntrinsics) Height() int            { return s.h }
func (s stubIntrinsics) Width() int             { return s.w }
func (s stubIntrinsics) Frame() string          { return "camera" }
func (s stubIntrinsics) ProjMatrix() *mat.Dense { return s.k }

func TestNewVirtualCameraInvalidIntrinsics(t *testing.T) {
	cases := []struct {
		name string
		intr Intrinsics
	}{
		{"nil", nil},
		{"zero width", NewCameraIntrinsics("camera", 64, 64, 32, 32, 0, 64, 0)},
		{"nil matrix", stubIntrinsics{h: 64, w: 64}},
		{"bad matrix dims", stubIntrinsics{h: 64, w: 64, k: mat.NewDense(2, 2, nil)}},
	}
	for _, tc := range cases {
		_, err := NewVirtualCamera(tc.intr, nil)
		if !errors.Is(err, ErrInvalidIntrinsics) {
			t.Errorf("%s: got error %v, want ErrInvalidIntrinsics", tc.name, err)
		}
	}
}

func TestVirtualCameraImages(t *testing.T) {
	vc, err := NewVirtualCamera(testIntrinsics(), nil)
	if err != nil {
		t.Fatal(err)
	}
	poses := frontalPose(t)
	binary, depth, err := vc.Images(squareMesh(0, 0.2), poses, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(binary) != 1 || len(depth) != 1 {
		t.Fatalf("got %d binary and %d depth images, want 1 and 1", len(binary), len(depth))
	}
	dm := depth[0]
	if dm.Width != 64 || dm.Height != 64 {
		t.Fatalf("depth map is %dx%d, want 64x64", dm.Width, dm.Height)
	}

	// the camera sits one unit from the square's plane, so every hit pixel
	// carries depth 1.
	if d := dm.At(32, 32); math.Abs(float64(d)-1) > 1e-4 {
		t.Errorf("center depth %g, want 1", d)
	}
	if r, _, _ := binary[0].At(32, 32); r != 255 {
		t.Errorf("center mask value %d, want 255", r)
	}
	if d := dm.At(0, 0); d != 0 {
		t.Errorf("corner depth %g, want background 0", d)
	}
	if r, _, _ := binary[0].At(0, 0); r != 0 {
		t.Errorf("corner mask value %d, want 0", r)
	}
}

func TestVirtualCameraImages3x4Intrinsics(t *testing.T) {
	// a 3×4 [K|0] projection must behave exactly like the 3×3 K.
	intr := stubIntrinsics{h: 64, w: 64, k: mat.NewDense(3, 4, []float64{
		64, 0, 32, 0,
		0, 64, 32, 0,
		0, 0, 1, 0,
	})}
	vc, err := NewVirtualCamera(intr, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, depth, err := vc.Images(squareMesh(0, 0.2), frontalPose(t), false)
	if err != nil {
		t.Fatal(err)
	}
	if d := depth[0].At(32, 32); math.Abs(float64(d)-1) > 1e-4 {
		t.Errorf("center depth %g, want 1", d)
	}
}

func TestWrappedImagesSegmask(t *testing.T) {
	vc, err := NewVirtualCamera(testIntrinsics(), nil)
	if err != nil {
		t.Fatal(err)
	}
	vs := mustViewsphere(t, ViewsphereParams{
		MinRadius: 1, MaxRadius: 1, NumRadii: 1,
		MinElev: 0.2, MaxElev: 1.0, NumElev: 2,
		NumAz: 2,
	})
	poses := vs.ObjectToCameraPoses()
	renders, err := vc.WrappedImages(squareMesh(0, 0.2), poses, RenderSegmask, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(renders) != len(poses) {
		t.Fatalf("got %d renders, want %d", len(renders), len(poses))
	}
	for i, or := range renders {
		mask, ok := or.Image.(*imaging.BinaryImage)
		if !ok {
			t.Fatalf("render %d image has type %T, want *imaging.BinaryImage", i, or.Image)
		}
		if mask.Frame() != "camera" {
			t.Errorf("render %d image frame %q, want camera", i, mask.Frame())
		}
		want := poses[i].Inverse()
		if or.TCameraObj.From() != FrameCamera || or.TCameraObj.To() != FrameObject {
			t.Errorf("render %d transform frames %s->%s, want %s->%s",
				i, or.TCameraObj.From(), or.TCameraObj.To(), FrameCamera, FrameObject)
		}
		if !matEqualWithin(or.TCameraObj.Rotation(), want.Rotation(), 1e-12) {
			t.Errorf("render %d transform rotation is not the pose inverse", i)
		}
		if or.TCameraObj.Translation() != want.Translation() {
			t.Errorf("render %d transform translation %v, want %v",
				i, or.TCameraObj.Translation(), want.Translation())
		}
	}
}

func TestWrappedImagesDepthModes(t *testing.T) {
	vc, err := NewVirtualCamera(testIntrinsics(), nil)
	if err != nil {
		t.Fatal(err)
	}
	m := squareMesh(0, 0.2)
	poses := frontalPose(t)

	renders, err := vc.WrappedImages(m, poses, RenderDepth, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	di, ok := renders[0].Image.(*imaging.DepthImage)
	if !ok {
		t.Fatalf("depth render has type %T, want *imaging.DepthImage", renders[0].Image)
	}
	if d := di.At(32, 32); math.Abs(float64(d)-1) > 1e-4 {
		t.Errorf("center depth %g, want 1", d)
	}

	renders, err = vc.WrappedImages(m, poses, RenderScaledDepth, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := renders[0].Image.(*imaging.ColorImage); !ok {
		t.Fatalf("scaled depth render has type %T, want *imaging.ColorImage", renders[0].Image)
	}
}

func TestWrappedImagesUnsupportedMode(t *testing.T) {
	vc, err := NewVirtualCamera(testIntrinsics(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, mode := range []RenderMode{RenderColor, RenderMode(9)} {
		renders, err := vc.WrappedImages(squareMesh(0, 0.2), frontalPose(t), mode, nil, false)
		if !errors.Is(err, ErrUnsupportedRenderMode) {
			t.Errorf("mode %v: got error %v, want ErrUnsupportedRenderMode", mode, err)
		}
		if renders != nil {
			t.Errorf("mode %v: got %d renders alongside the error", mode, len(renders))
		}
	}
}

// maskCentroid returns the mean column and row of the set pixels.
func maskCentroid(mask *imaging.BinaryImage) (col, row float64) {
	var n int
	for y := 0; y < mask.Height(); y++ {
		for x := 0; x < mask.Width(); x++ {
			if mask.At(x, y) {
				col += float64(x)
				row += float64(y)
				n++
			}
		}
	}
	return col / float64(n), row / float64(n)
}

func TestWrappedImagesStablePose(t *testing.T) {
	vc, err := NewVirtualCamera(testIntrinsics(), nil)
	if err != nil {
		t.Fatal(err)
	}
	// square centered at +x so the mask is visibly off center.
	m := squareMesh(0.1, 0.05)
	poses := frontalPose(t)

	renders, err := vc.WrappedImages(m, poses, RenderSegmask, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	col, row := maskCentroid(renders[0].Image.(*imaging.BinaryImage))
	if col < 34 {
		t.Errorf("mask centroid column %g, want right of center", col)
	}
	if math.Abs(row-31.5) > 1 {
		t.Errorf("mask centroid row %g, want near center", row)
	}

	// a quarter turn about z moves the square from +x to +y in the stable
	// pose frame, which projects above the image center.
	sp := NewStablePose(1, rotZ(math.Pi/2), r3.Vec{}, "pose_z90")
	renders, err = vc.WrappedImages(m, poses, RenderSegmask, &sp, false)
	if err != nil {
		t.Fatal(err)
	}
	col, row = maskCentroid(renders[0].Image.(*imaging.BinaryImage))
	if math.Abs(col-31.5) > 1 {
		t.Errorf("stable pose mask centroid column %g, want near center", col)
	}
	if row > 30 {
		t.Errorf("stable pose mask centroid row %g, want above center", row)
	}

	// the returned transform inverts the stable-pose-frame input, not the
	// recomposed render pose.
	tr := renders[0].TCameraObj
	if tr.From() != FrameCamera || tr.To() != FrameStablePose {
		t.Errorf("transform frames %s->%s, want %s->%s", tr.From(), tr.To(), FrameCamera, FrameStablePose)
	}
	want := poses[0].Inverse()
	if !matEqualWithin(tr.Rotation(), want.Rotation(), 1e-12) {
		t.Error("transform rotation differs from the input pose inverse")
	}
}

func TestWrappedImagesViewsphere(t *testing.T) {
	vc, err := NewVirtualCamera(testIntrinsics(), nil)
	if err != nil {
		t.Fatal(err)
	}
	vs := mustViewsphere(t, ViewsphereParams{
		MinRadius: 1, MaxRadius: 1, NumRadii: 1,
		MinElev: 0.3, MaxElev: 1.1, NumElev: 2,
		NumAz: 3,
	})
	renders, err := vc.WrappedImagesViewsphere(squareMesh(0, 0.2), vs, RenderSegmask, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := len(vs.ObjectToCameraPoses()); len(renders) != want {
		t.Errorf("got %d renders, want %d", len(renders), want)
	}
}

func TestRenderModeString(t *testing.T) {
	cases := map[RenderMode]string{
		RenderSegmask:     "segmask",
		RenderDepth:       "depth",
		RenderScaledDepth: "scaled-depth",
		RenderColor:       "color",
		RenderMode(9):     "RenderMode(9)",
	}
	for mode, want := range cases {
		if got := mode.String(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

// Command meshcam renders calibrated virtual-camera views of an STL mesh
// from a discretized viewing sphere and writes one PNG per view.
package main

import (
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cbteeple/meshpy"
	"github.com/cbteeple/meshpy/imaging"
	"github.com/cbteeple/meshpy/internal/d3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	out     string
	mode    string
	width   int
	height  int
	focal   float64
	preview bool
	verbose bool

	minRadius, maxRadius float64
	numRadii             int
	minElev, maxElev     float64
	numElev              int
	numAz                int
	numRoll              int
}

func run() error {
	var opts options

	root := &cobra.Command{
		Use:   "meshcam mesh.stl",
		Short: "meshcam renders virtual-camera views of a triangle mesh",
		Long: `meshcam places a pinhole camera on a sphere of viewpoints around an STL
mesh and renders a segmentation mask, a depth image or a false-color depth
image from every viewpoint. Each rendered view is written as a PNG named
after the render mode and view index.

A max radius of zero derives the viewing distance from the mesh extent.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05.00",
				Level:           level,
			}))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(args[0], opts)
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.Flags().StringVarP(&opts.out, "out", "o", ".", "output directory")
	root.Flags().StringVarP(&opts.mode, "mode", "m", "depth", "render mode: segmask, depth or scaled-depth")
	root.Flags().IntVar(&opts.width, "width", 640, "image width in pixels")
	root.Flags().IntVar(&opts.height, "height", 480, "image height in pixels")
	root.Flags().Float64Var(&opts.focal, "focal", 525, "focal length in pixels")
	root.Flags().BoolVar(&opts.preview, "preview", false, "also write a shaded preview of the mesh")
	root.Flags().Float64Var(&opts.minRadius, "min-radius", 0, "minimum viewing sphere radius (0 derives it from the mesh)")
	root.Flags().Float64Var(&opts.maxRadius, "max-radius", 0, "maximum viewing sphere radius (0 derives it from the mesh)")
	root.Flags().IntVar(&opts.numRadii, "radii", 1, "radius samples")
	root.Flags().Float64Var(&opts.minElev, "min-elev", math.Pi/6, "minimum elevation in radians")
	root.Flags().Float64Var(&opts.maxElev, "max-elev", math.Pi/2, "maximum elevation in radians")
	root.Flags().IntVar(&opts.numElev, "elevs", 3, "elevation samples")
	root.Flags().IntVar(&opts.numAz, "azimuths", 8, "azimuth samples over the full circle")
	root.Flags().IntVar(&opts.numRoll, "rolls", 1, "camera roll samples over the full circle")

	return root.Execute()
}

func render(stlName string, opts options) error {
	mode, err := parseMode(opts.mode)
	if err != nil {
		return err
	}
	m, extent, err := loadMesh(stlName)
	if err != nil {
		return fmt.Errorf("load %s: %w", stlName, err)
	}
	log.Debug("loaded mesh", "vertices", len(m.Vertices()), "triangles", len(m.Triangles()), "extent", extent)

	if opts.maxRadius <= 0 {
		// back far enough out that the whole mesh fits the frustum.
		opts.maxRadius = 2.5 * extent
	}
	if opts.minRadius <= 0 {
		opts.minRadius = opts.maxRadius
	}
	vs, err := meshpy.NewViewsphereDiscretizer(meshpy.ViewsphereParams{
		MinRadius: opts.minRadius, MaxRadius: opts.maxRadius, NumRadii: opts.numRadii,
		MinElev: opts.minElev, MaxElev: opts.maxElev, NumElev: opts.numElev,
		NumAz:   opts.numAz,
		NumRoll: opts.numRoll,
	})
	if err != nil {
		return err
	}

	intr := meshpy.NewCameraIntrinsics(meshpy.FrameCamera,
		opts.focal, opts.focal,
		float64(opts.width)/2, float64(opts.height)/2, 0,
		opts.height, opts.width)
	vc, err := meshpy.NewVirtualCamera(intr, nil)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.out, 0777); err != nil {
		return err
	}
	renders, err := vc.WrappedImages(m, vs.ObjectToCameraPoses(), mode, nil, opts.verbose)
	if err != nil {
		return err
	}
	for i, or := range renders {
		name := filepath.Join(opts.out, fmt.Sprintf("%s_%03d.png", mode, i))
		if err := savePNG(name, or.Image); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		t := or.TCameraObj.Translation()
		log.Debug("wrote view", "file", name, "camera", fmt.Sprintf("(%.3g, %.3g, %.3g)", t.X, t.Y, t.Z))
	}
	log.Info("rendered viewsphere", "views", len(renders), "mode", mode, "dir", opts.out)

	if opts.preview {
		name := filepath.Join(opts.out, "preview.png")
		if err := shadedPreview(stlName, name, opts.width, opts.height); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		log.Info("wrote shaded preview", "file", name)
	}
	return nil
}

func parseMode(s string) (meshpy.RenderMode, error) {
	for _, mode := range []meshpy.RenderMode{meshpy.RenderSegmask, meshpy.RenderDepth, meshpy.RenderScaledDepth} {
		if s == mode.String() {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q, want segmask, depth or scaled-depth", s)
}

// loadMesh reads an STL file, recenters it on its bounding-box center and
// returns it with the largest half-extent of the recentered geometry.
func loadMesh(stlName string) (*meshpy.TriangleMesh, float64, error) {
	fm, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		return nil, 0, err
	}
	if len(fm.Triangles) == 0 {
		return nil, 0, fmt.Errorf("mesh has no triangles")
	}

	verts := make([]r3.Vec, 0, 3*len(fm.Triangles))
	tris := make([][3]int, 0, len(fm.Triangles))
	for _, tri := range fm.Triangles {
		n := len(verts)
		for _, v := range [3]fauxgl.Vertex{tri.V1, tri.V2, tri.V3} {
			verts = append(verts, r3.Vec{X: v.Position.X, Y: v.Position.Y, Z: v.Position.Z})
		}
		tris = append(tris, [3]int{n, n + 1, n + 2})
	}

	min, max := verts[0], verts[0]
	for _, v := range verts[1:] {
		min = d3.MinElem(min, v)
		max = d3.MaxElem(max, v)
	}
	center := r3.Scale(0.5, r3.Add(min, max))
	half := r3.Scale(0.5, r3.Sub(max, min))
	for i := range verts {
		verts[i] = r3.Sub(verts[i], center)
	}
	extent := math.Max(half.X, math.Max(half.Y, half.Z))
	return meshpy.NewTriangleMesh(verts, tris), extent, nil
}

func savePNG(name string, img imaging.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	switch im := img.(type) {
	case *imaging.BinaryImage:
		return png.Encode(f, im.Gray())
	case *imaging.DepthImage:
		return png.Encode(f, im.ToColor().Image())
	case *imaging.ColorImage:
		return png.Encode(f, im.Image())
	}
	return fmt.Errorf("unencodable image type %T", img)
}

// shadedPreview renders the STL with a phong shader at double resolution and
// downsamples for antialiasing.
func shadedPreview(stlName, outputname string, width, height int) error {
	mesh, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		return err
	}
	const (
		scale = 2  // supersampling
		fovy  = 30 // vertical field of view in degrees
	)
	var (
		eye    = fauxgl.V(2.4, 2.4, 2.4)
		center = fauxgl.V(0, 0, 0)
		up     = fauxgl.V(0, 0, 1)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)

	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, 1, 10)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	image := context.Image()
	image = resize.Resize(uint(width), uint(height), image, resize.Bilinear)
	return fauxgl.SavePNG(outputname, image)
}

package meshpy

import "gonum.org/v1/gonum/spatial/r3"

// Mesh is the triangle mesh contract consumed by VirtualCamera. Mesh
// loading and parsing live outside this package; anything exposing
// object-frame vertices and triangle indices can be rendered.
type Mesh interface {
	// Vertices returns the mesh vertices in the object frame.
	Vertices() []r3.Vec
	// Triangles returns vertex index triples, one per face.
	Triangles() [][3]int
}

// TriangleMesh is a minimal indexed triangle mesh.
type TriangleMesh struct {
	verts []r3.Vec
	tris  [][3]int
}

// NewTriangleMesh wraps vertex and triangle slices as a Mesh. The slices
// are not copied; callers must not mutate them afterward.
func NewTriangleMesh(vertices []r3.Vec, triangles [][3]int) *TriangleMesh {
	return &TriangleMesh{verts: vertices, tris: triangles}
}

func (m *TriangleMesh) Vertices() []r3.Vec  { return m.verts }
func (m *TriangleMesh) Triangles() [][3]int { return m.tris }

package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Shape is the collision geometry of a body: *Sphere or *TriangleMesh.
type Shape interface {
	// localInertia returns the scalar principal moment of inertia for the given mass.
	// Static-only shapes return 0.
	localInertia(mass float32) float32
}

// Sphere is a ball collider centered on the body position.
type Sphere struct {
	Radius float32
}

// localInertia is the solid-sphere moment 2/5·m·r².
func (s *Sphere) localInertia(mass float32) float32 {
	return 0.4 * mass * s.Radius * s.Radius
}

// Triangle is one collider face. Vertices are in the space the mesh was built in; the board
// body copies them into world space once when it is placed.
type Triangle struct {
	A, B, C mgl32.Vec3
	Normal  mgl32.Vec3
}

// TriangleMesh is a static collider made from an arbitrary triangle list (maze walls, ramps, floor).
// Geometry is fixed after construction.
type TriangleMesh struct {
	tris []Triangle
	min  mgl32.Vec3
	max  mgl32.Vec3
	tree *quadNode
}

// areaEpsilon: triangles whose doubled area is below this are dropped as degenerate.
const areaEpsilon = 1e-8

// NewTriangleMesh builds a collider from a flat position buffer and an index buffer.
// Vertex i starts at positions[i*stride]; only x, y, z are read, so a stride of 4 accepts the
// homogeneous (x,y,z,w) layout the asset pipeline produces. Every 3 consecutive indices form one triangle.
func NewTriangleMesh(positions []float32, stride int, indices []uint32) (*TriangleMesh, error) {
	if stride < 3 {
		return nil, fmt.Errorf("physics: vertex stride %d is smaller than 3", stride)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("physics: index count %d is not a multiple of 3", len(indices))
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("physics: board mesh has no triangles")
	}
	vertexCount := len(positions) / stride
	vertex := func(idx uint32) (mgl32.Vec3, error) {
		if int(idx) >= vertexCount {
			return mgl32.Vec3{}, fmt.Errorf("physics: index %d out of range (%d vertices)", idx, vertexCount)
		}
		o := int(idx) * stride
		return mgl32.Vec3{positions[o], positions[o+1], positions[o+2]}, nil
	}

	m := &TriangleMesh{tris: make([]Triangle, 0, len(indices)/3)}
	for i := 0; i < len(indices); i += 3 {
		a, err := vertex(indices[i])
		if err != nil {
			return nil, err
		}
		b, err := vertex(indices[i+1])
		if err != nil {
			return nil, err
		}
		c, err := vertex(indices[i+2])
		if err != nil {
			return nil, err
		}
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() < areaEpsilon {
			continue
		}
		m.tris = append(m.tris, Triangle{A: a, B: b, C: c, Normal: n.Normalize()})
	}
	if len(m.tris) == 0 {
		return nil, fmt.Errorf("physics: board mesh has only degenerate triangles")
	}
	m.updateBounds()
	m.tree = buildQuadTree(m)
	return m, nil
}

// Triangles returns the collider faces. The slice is shared; do not modify.
func (m *TriangleMesh) Triangles() []Triangle {
	return m.tris
}

// Bounds returns the axis-aligned bounds of all triangles.
func (m *TriangleMesh) Bounds() (lo, hi mgl32.Vec3) {
	return m.min, m.max
}

func (m *TriangleMesh) localInertia(float32) float32 {
	return 0
}

// translated returns a copy of the mesh moved by offset. Used once when the board body is placed.
func (m *TriangleMesh) translated(offset mgl32.Vec3) *TriangleMesh {
	out := &TriangleMesh{tris: make([]Triangle, len(m.tris))}
	for i, t := range m.tris {
		out.tris[i] = Triangle{A: t.A.Add(offset), B: t.B.Add(offset), C: t.C.Add(offset), Normal: t.Normal}
	}
	out.updateBounds()
	out.tree = buildQuadTree(out)
	return out
}

func (m *TriangleMesh) updateBounds() {
	m.min = m.tris[0].A
	m.max = m.tris[0].A
	for _, t := range m.tris {
		for _, v := range [3]mgl32.Vec3{t.A, t.B, t.C} {
			for k := 0; k < 3; k++ {
				m.min[k] = min(m.min[k], v[k])
				m.max[k] = max(m.max[k], v[k])
			}
		}
	}
}

// triangleRect is the XZ footprint of a triangle, used by the quadtree.
func triangleRect(t Triangle) rect {
	return rect{
		X0: min(t.A.X(), t.B.X(), t.C.X()),
		Z0: min(t.A.Z(), t.B.Z(), t.C.Z()),
		X1: max(t.A.X(), t.B.X(), t.C.X()),
		Z1: max(t.A.Z(), t.B.Z(), t.C.Z()),
	}
}

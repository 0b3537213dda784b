package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAddBoxFacesPointOutward(t *testing.T) {
	b := NewBuilder()
	b.AddBox([3]float32{1, 2, 3}, [3]float32{2, 4, 6}, false)
	m := b.Mesh()
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if m.VertexCount() != 24 || m.TriangleCount() != 12 {
		t.Fatalf("vertices=%d triangles=%d, want 24/12", m.VertexCount(), m.TriangleCount())
	}
	lo, hi := m.Bounds()
	if lo != [3]float32{0, 0, 0} || hi != [3]float32{2, 4, 6} {
		t.Fatalf("bounds = %v..%v", lo, hi)
	}
	for i := 0; i < len(m.Indices); i += 3 {
		n := triangleNormal(m, i)
		a := int(m.Indices[i])
		stored := [3]float32{m.Normals[a*4], m.Normals[a*4+1], m.Normals[a*4+2]}
		if dot(n, stored) <= 0 {
			t.Fatalf("triangle %d winds against its normal %v", i/3, stored)
		}
		// Outward: the face center lies on the normal's side of the box center.
		c := triangleCentroid(m, i)
		if dot(sub(c, [3]float32{1, 2, 3}), stored) <= 0 {
			t.Fatalf("triangle %d normal %v points inward", i/3, stored)
		}
	}
}

func TestAddBoxSkipBottom(t *testing.T) {
	b := NewBuilder()
	b.AddBox([3]float32{}, [3]float32{1, 1, 1}, true)
	if n := b.Mesh().TriangleCount(); n != 10 {
		t.Fatalf("triangles = %d, want 10", n)
	}
}

func TestAppendRebasesIndices(t *testing.T) {
	a := NewBuilder()
	a.AddQuad([3]float32{0, 0, 1}, [3]float32{1, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})
	m := a.Mesh()
	other := NewBuilder()
	other.AddBox([3]float32{}, [3]float32{1, 1, 1}, false)
	m.Append(other.Mesh())
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if m.Indices[6] != 4 {
		t.Fatalf("first appended index = %d, want 4", m.Indices[6])
	}
}

func TestUnindex(t *testing.T) {
	b := NewBuilder()
	b.AddQuad([3]float32{0, 0, 1}, [3]float32{1, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})
	u := b.Mesh().Unindex()
	if len(u.Positions) != 18 || len(u.Normals) != 18 || len(u.UVs) != 12 {
		t.Fatalf("sizes = %d/%d/%d, want 18/18/12", len(u.Positions), len(u.Normals), len(u.UVs))
	}
	// Second triangle is corners 0, 2, 3.
	want := []float32{0, 0, 1, 1, 0, 0, 0, 0, 0}
	for i, v := range want {
		if u.Positions[9+i] != v {
			t.Fatalf("second triangle positions = %v, want %v", u.Positions[9:], want)
		}
	}
	for i := 0; i < len(u.Normals); i += 3 {
		if u.Normals[i] != 0 || u.Normals[i+1] != 1 || u.Normals[i+2] != 0 {
			t.Fatalf("normal %d = %v", i/3, u.Normals[i:i+3])
		}
	}
	if u.UVs[2] != 1 || u.UVs[3] != 1 {
		t.Fatalf("uv of corner 1 = %v", u.UVs[2:4])
	}
}

func TestTranslateAndScale(t *testing.T) {
	b := NewBuilder()
	b.AddBox([3]float32{}, [3]float32{2, 2, 2}, false)
	m := b.Mesh()
	m.Scale(2)
	m.Translate(0, 2, 0)
	lo, hi := m.Bounds()
	if lo != [3]float32{-2, 0, -2} || hi != [3]float32{2, 4, 2} {
		t.Fatalf("bounds = %v..%v", lo, hi)
	}
	if m.Positions[3] != 1 {
		t.Fatalf("w changed to %v", m.Positions[3])
	}
}

func TestValidateErrors(t *testing.T) {
	good := func() *Mesh {
		b := NewBuilder()
		b.AddBox([3]float32{}, [3]float32{1, 1, 1}, false)
		return b.Mesh()
	}
	tests := []struct {
		name   string
		mutate func(m *Mesh)
	}{
		{"ragged positions", func(m *Mesh) { m.Positions = m.Positions[:len(m.Positions)-1] }},
		{"short normals", func(m *Mesh) { m.Normals = m.Normals[:4] }},
		{"short uvs", func(m *Mesh) { m.UVs = nil }},
		{"partial triangle", func(m *Mesh) { m.Indices = m.Indices[:4] }},
		{"index out of range", func(m *Mesh) { m.Indices[5] = 99 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := good()
			tt.mutate(m)
			if err := m.Validate(); err == nil {
				t.Fatal("Validate succeeded, want error")
			}
		})
	}
}

const cubeOBJ = `# unit cube, quads
o cube
v -0.5 -0.5  0.5
v  0.5 -0.5  0.5
v  0.5  0.5  0.5
v -0.5  0.5  0.5
v -0.5 -0.5 -0.5
v  0.5 -0.5 -0.5
v  0.5  0.5 -0.5
v -0.5  0.5 -0.5
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
vn 0 0 -1
vn 0 1 0
vn 0 -1 0
vn 1 0 0
vn -1 0 0
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
f 6/1/2 5/2/2 8/3/2 7/4/2
f 4/1/3 3/2/3 7/3/3 8/4/3
f 5/1/4 6/2/4 2/3/4 1/4/4
f 2/1/5 6/2/5 7/3/5 3/4/5
f 5/1/6 1/2/6 4/3/6 8/4/6
`

func TestParseOBJCube(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(cubeOBJ), 2)
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if m.TriangleCount() != 12 {
		t.Fatalf("triangles = %d, want 12", m.TriangleCount())
	}
	if m.VertexCount() != 24 {
		t.Fatalf("vertices = %d, want 24 distinct corners", m.VertexCount())
	}
	lo, hi := m.Bounds()
	if lo != [3]float32{-1, -1, -1} || hi != [3]float32{1, 1, 1} {
		t.Fatalf("bounds = %v..%v, want scaled to ±1", lo, hi)
	}
	// First corner uses vt 0 0, flipped to v = 1.
	if m.UVs[0] != 0 || m.UVs[1] != 1 {
		t.Fatalf("uv[0] = (%v, %v), want (0, 1)", m.UVs[0], m.UVs[1])
	}
	if m.Normals[2] != 1 || m.Normals[3] != 0 {
		t.Fatalf("normal[0] = %v, want (0,0,1,0)", m.Normals[:4])
	}
	if m.Positions[3] != 1 {
		t.Fatalf("w = %v, want 1", m.Positions[3])
	}
}

func TestParseOBJNegativeIndicesAndComputedNormals(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 0 -1
v 0 0 -1
f -4 -3 -2 -1
`
	m, err := ParseOBJ(strings.NewReader(src), 0)
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if m.TriangleCount() != 2 || m.VertexCount() != 4 {
		t.Fatalf("triangles=%d vertices=%d", m.TriangleCount(), m.VertexCount())
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	for i, idx := range want {
		if m.Indices[i] != idx {
			t.Fatalf("indices = %v, want %v", m.Indices, want)
		}
	}
	for v := 0; v < 4; v++ {
		if m.Normals[v*4+1] < 0.999 {
			t.Fatalf("computed normal %d = %v, want +Y", v, m.Normals[v*4:v*4+4])
		}
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no faces", "v 0 0 0\nv 1 0 0\n"},
		{"bad number", "v 0 x 0\n"},
		{"short vertex", "v 0 0\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"missing position", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 /3\n"},
		{"bad uv index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.src), 1); err == nil {
				t.Fatal("ParseOBJ succeeded, want error")
			}
		})
	}
}

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.obj")
	if err := os.WriteFile(path, []byte(cubeOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadOBJ(path, 1)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if m.TriangleCount() != 12 {
		t.Fatalf("triangles = %d", m.TriangleCount())
	}
	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"), 1); err == nil {
		t.Fatal("LoadOBJ of a missing file succeeded")
	}
}

func triangleNormal(m *Mesh, i int) [3]float32 {
	a := vec(m, m.Indices[i])
	b := vec(m, m.Indices[i+1])
	c := vec(m, m.Indices[i+2])
	u, v := sub(b, a), sub(c, a)
	return [3]float32{u[1]*v[2] - u[2]*v[1], u[2]*v[0] - u[0]*v[2], u[0]*v[1] - u[1]*v[0]}
}

func triangleCentroid(m *Mesh, i int) [3]float32 {
	a := vec(m, m.Indices[i])
	b := vec(m, m.Indices[i+1])
	c := vec(m, m.Indices[i+2])
	return [3]float32{(a[0] + b[0] + c[0]) / 3, (a[1] + b[1] + c[1]) / 3, (a[2] + b[2] + c[2]) / 3}
}

func vec(m *Mesh, idx uint32) [3]float32 {
	o := int(idx) * PositionStride
	return [3]float32{m.Positions[o], m.Positions[o+1], m.Positions[o+2]}
}

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

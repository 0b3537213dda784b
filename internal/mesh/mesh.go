// Package mesh holds CPU-side triangle buffers shared by the physics collider and the renderer.
package mesh

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Stride values of the flat buffers.
const (
	PositionStride = 4 // x, y, z, 1
	NormalStride   = 4 // x, y, z, 0
	UVStride       = 2 // u, v
)

// Mesh is an indexed triangle list. Every 3 consecutive indices form one triangle,
// counter-clockwise when seen from the side the normals point to.
type Mesh struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / PositionStride
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks that the buffers agree with each other and every index is in range.
func (m *Mesh) Validate() error {
	if len(m.Positions)%PositionStride != 0 {
		return fmt.Errorf("mesh: %d position floats is not a multiple of %d", len(m.Positions), PositionStride)
	}
	n := m.VertexCount()
	if len(m.Normals) != n*NormalStride {
		return fmt.Errorf("mesh: %d normal floats for %d vertices", len(m.Normals), n)
	}
	if len(m.UVs) != n*UVStride {
		return fmt.Errorf("mesh: %d uv floats for %d vertices", len(m.UVs), n)
	}
	if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh: index count %d is not a positive multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("mesh: index %d at position %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounds of all vertices. An empty mesh returns zeros.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	if m.VertexCount() == 0 {
		return lo, hi
	}
	for k := 0; k < 3; k++ {
		lo[k], hi[k] = m.Positions[k], m.Positions[k]
	}
	for i := 0; i < len(m.Positions); i += PositionStride {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], m.Positions[i+k])
			hi[k] = max(hi[k], m.Positions[i+k])
		}
	}
	return lo, hi
}

// Translate moves every vertex by (dx, dy, dz).
func (m *Mesh) Translate(dx, dy, dz float32) {
	for i := 0; i < len(m.Positions); i += PositionStride {
		m.Positions[i] += dx
		m.Positions[i+1] += dy
		m.Positions[i+2] += dz
	}
}

// Scale multiplies every position by s.
func (m *Mesh) Scale(s float32) {
	for i := 0; i < len(m.Positions); i += PositionStride {
		m.Positions[i] *= s
		m.Positions[i+1] *= s
		m.Positions[i+2] *= s
	}
}

// Append adds o's triangles to m, rebasing its indices.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	m.Positions = append(m.Positions, o.Positions...)
	m.Normals = append(m.Normals, o.Normals...)
	m.UVs = append(m.UVs, o.UVs...)
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, idx+base)
	}
}

// computeNormals replaces Normals with area-weighted smooth vertex normals.
func (m *Mesh) computeNormals() {
	n := m.VertexCount()
	acc := make([]float32, n*3)
	p := m.Positions
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2])
		ax, ay, az := p[a*4], p[a*4+1], p[a*4+2]
		ux, uy, uz := p[b*4]-ax, p[b*4+1]-ay, p[b*4+2]-az
		vx, vy, vz := p[c*4]-ax, p[c*4+1]-ay, p[c*4+2]-az
		nx, ny, nz := uy*vz-uz*vy, uz*vx-ux*vz, ux*vy-uy*vx
		for _, v := range [3]int{a, b, c} {
			acc[v*3] += nx
			acc[v*3+1] += ny
			acc[v*3+2] += nz
		}
	}
	m.Normals = make([]float32, n*NormalStride)
	for v := 0; v < n; v++ {
		x, y, z := acc[v*3], acc[v*3+1], acc[v*3+2]
		l := math32.Sqrt(x*x + y*y + z*z)
		if l > 0 {
			x, y, z = x/l, y/l, z/l
		} else {
			y = 1
		}
		m.Normals[v*4], m.Normals[v*4+1], m.Normals[v*4+2] = x, y, z
	}
}

// Builder accumulates primitive shapes into one Mesh.
type Builder struct {
	m Mesh
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// vertex appends one vertex and returns its index.
func (b *Builder) vertex(pos, normal [3]float32, u, v float32) uint32 {
	idx := uint32(b.m.VertexCount())
	b.m.Positions = append(b.m.Positions, pos[0], pos[1], pos[2], 1)
	b.m.Normals = append(b.m.Normals, normal[0], normal[1], normal[2], 0)
	b.m.UVs = append(b.m.UVs, u, v)
	return idx
}

// AddQuad appends a quad from four corners in counter-clockwise order (seen from the front)
// with a shared normal.
func (b *Builder) AddQuad(c0, c1, c2, c3, normal [3]float32) {
	i0 := b.vertex(c0, normal, 0, 1)
	i1 := b.vertex(c1, normal, 1, 1)
	i2 := b.vertex(c2, normal, 1, 0)
	i3 := b.vertex(c3, normal, 0, 0)
	b.m.Indices = append(b.m.Indices, i0, i1, i2, i0, i2, i3)
}

// AddBox appends an axis-aligned box with outward faces. The bottom face is skipped
// when skipBottom is set, since it rests on the floor and is never seen.
func (b *Builder) AddBox(center, size [3]float32, skipBottom bool) {
	hx, hy, hz := size[0]/2, size[1]/2, size[2]/2
	x0, x1 := center[0]-hx, center[0]+hx
	y0, y1 := center[1]-hy, center[1]+hy
	z0, z1 := center[2]-hz, center[2]+hz

	b.AddQuad([3]float32{x0, y1, z1}, [3]float32{x1, y1, z1}, [3]float32{x1, y1, z0}, [3]float32{x0, y1, z0}, [3]float32{0, 1, 0})
	if !skipBottom {
		b.AddQuad([3]float32{x0, y0, z0}, [3]float32{x1, y0, z0}, [3]float32{x1, y0, z1}, [3]float32{x0, y0, z1}, [3]float32{0, -1, 0})
	}
	b.AddQuad([3]float32{x0, y0, z1}, [3]float32{x1, y0, z1}, [3]float32{x1, y1, z1}, [3]float32{x0, y1, z1}, [3]float32{0, 0, 1})
	b.AddQuad([3]float32{x1, y0, z0}, [3]float32{x0, y0, z0}, [3]float32{x0, y1, z0}, [3]float32{x1, y1, z0}, [3]float32{0, 0, -1})
	b.AddQuad([3]float32{x1, y0, z1}, [3]float32{x1, y0, z0}, [3]float32{x1, y1, z0}, [3]float32{x1, y1, z1}, [3]float32{1, 0, 0})
	b.AddQuad([3]float32{x0, y0, z0}, [3]float32{x0, y0, z1}, [3]float32{x0, y1, z1}, [3]float32{x0, y1, z0}, [3]float32{-1, 0, 0})
}

// Mesh returns the accumulated mesh. The builder should not be used afterwards.
func (b *Builder) Mesh() *Mesh {
	m := b.m
	return &m
}

// Unindexed is a triangle soup with tightly packed xyz positions and normals, three vertices per
// triangle in index order.
type Unindexed struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
}

// Unindex expands the indexed buffers into a triangle soup.
func (m *Mesh) Unindex() Unindexed {
	n := len(m.Indices)
	out := Unindexed{
		Positions: make([]float32, 0, n*3),
		Normals:   make([]float32, 0, n*3),
		UVs:       make([]float32, 0, n*2),
	}
	for _, idx := range m.Indices {
		p, q, t := int(idx)*PositionStride, int(idx)*NormalStride, int(idx)*UVStride
		out.Positions = append(out.Positions, m.Positions[p:p+3]...)
		out.Normals = append(out.Normals, m.Normals[q:q+3]...)
		out.UVs = append(out.UVs, m.UVs[t:t+2]...)
	}
	return out
}

package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// contactMargin keeps resting contacts alive while the ball hovers a hair above the surface.
	contactMargin = 0.04
	// faceDominance: an edge or vertex contact closer than this (cosine) to a face contact is dropped,
	// so internal edges between coplanar triangles do not make the ball bump.
	faceDominance = 0.9
	// mergeCosine: contacts whose normals agree this closely are merged, keeping the deepest.
	mergeCosine = 0.995
)

// feature identifies which part of a triangle the closest point lies on.
type feature int

const (
	featureFace feature = iota
	featureEdge
	featureVertex
)

// contact is one sphere-vs-triangle touch point, plus the solver's accumulated impulses.
type contact struct {
	Normal mgl32.Vec3 // from the surface toward the sphere center
	Point  mgl32.Vec3 // on the surface
	Depth  float32    // positive when penetrating

	feature feature

	r          mgl32.Vec3 // contact point relative to the ball center
	tangent1   mgl32.Vec3
	tangent2   mgl32.Vec3
	bias       float32
	target     float32 // restitution velocity along the normal
	normalImp  float32
	tangentImp [2]float32
	rollImp    mgl32.Vec3
}

// closestPointOnTriangle returns the point of triangle abc closest to p and the feature it lies on.
// Voronoi-region walk from Ericson, Real-Time Collision Detection §5.1.5.
func closestPointOnTriangle(p, a, b, c mgl32.Vec3) (mgl32.Vec3, feature) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, featureVertex
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, featureVertex
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)), featureEdge
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, featureVertex
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)), featureEdge
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), featureEdge
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), featureFace
}

// sphereMeshContacts collects contacts between a sphere at center and the mesh.
// scratch is reused between calls to avoid per-step allocations.
func sphereMeshContacts(center mgl32.Vec3, radius float32, m *TriangleMesh, scratch []int, out []contact) ([]int, []contact) {
	reach := radius + contactMargin
	area := rect{X0: center.X() - reach, Z0: center.Z() - reach, X1: center.X() + reach, Z1: center.Z() + reach}
	scratch = scratch[:0]
	m.tree.query(area, &scratch)

	out = out[:0]
	for _, idx := range scratch {
		t := m.tris[idx]
		p, feat := closestPointOnTriangle(center, t.A, t.B, t.C)
		d := center.Sub(p)
		dist2 := d.Dot(d)
		if dist2 > reach*reach {
			continue
		}
		var n mgl32.Vec3
		dist := float32(0)
		if dist2 > 1e-12 {
			dist = sqrt32(dist2)
			n = d.Mul(1 / dist)
		} else {
			// Center exactly on the surface: fall back to the face normal.
			n = t.Normal
		}
		out = appendMerged(out, contact{Normal: n, Point: p, Depth: radius - dist, feature: feat})
	}
	return scratch, dropShadowedEdges(out)
}

// appendMerged adds c unless a contact with nearly the same normal exists; the deeper one wins.
func appendMerged(cs []contact, c contact) []contact {
	for i := range cs {
		if cs[i].Normal.Dot(c.Normal) > mergeCosine {
			if c.Depth > cs[i].Depth || (c.feature == featureFace && cs[i].feature != featureFace) {
				cs[i] = c
			}
			return cs
		}
	}
	return append(cs, c)
}

// dropShadowedEdges removes edge/vertex contacts that point almost the same way as a face contact.
func dropShadowedEdges(cs []contact) []contact {
	var drop [16]bool
	if len(cs) > len(drop) {
		return cs
	}
	for i, c := range cs {
		if c.feature == featureFace {
			continue
		}
		for j, f := range cs {
			if j != i && f.feature == featureFace && f.Normal.Dot(c.Normal) > faceDominance {
				drop[i] = true
				break
			}
		}
	}
	kept := cs[:0]
	for i, c := range cs {
		if !drop[i] {
			kept = append(kept, c)
		}
	}
	return kept
}

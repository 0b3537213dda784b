package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// baumgarte is the fraction of penetration corrected per step.
	baumgarte = 0.2
	// linearSlop is the penetration allowed before position correction kicks in.
	linearSlop = 0.005
	// restitutionThreshold: closing speeds below this do not bounce.
	restitutionThreshold = 0.5
)

// material holds the combined coefficients for one body pair.
type material struct {
	friction    float32
	rolling     float32
	restitution float32
}

// combine mixes two bodies' coefficients the way Bullet does: products for friction and restitution,
// cross terms for rolling friction.
func combine(a, b *Body) material {
	return material{
		friction:    a.Friction * b.Friction,
		rolling:     a.RollingFriction*b.Friction + b.RollingFriction*a.Friction,
		restitution: a.Restitution * b.Restitution,
	}
}

// contactVelocity is the ball's velocity at the contact point.
func contactVelocity(b *Body, r mgl32.Vec3) mgl32.Vec3 {
	return b.LinearVelocity.Add(b.AngularVelocity.Cross(r))
}

// prepareContacts fills in lever arms, tangents and velocity targets before iterating.
func prepareContacts(b *Body, cs []contact, mat material, dt float32) {
	for i := range cs {
		c := &cs[i]
		c.r = c.Point.Sub(b.Position)
		c.tangent1, c.tangent2 = tangentBasis(c.Normal)
		switch {
		case c.Depth > linearSlop:
			c.bias = baumgarte / dt * (c.Depth - linearSlop)
		case c.Depth < 0:
			// Speculative contact: allow closing the remaining gap this step, nothing more.
			c.bias = c.Depth / dt
		default:
			c.bias = 0
		}
		c.target = 0
		if vn := contactVelocity(b, c.r).Dot(c.Normal); vn < -restitutionThreshold {
			c.target = -mat.restitution * vn
		}
		c.normalImp = 0
		c.tangentImp = [2]float32{}
		c.rollImp = mgl32.Vec3{}
	}
}

// solveContacts runs sequential-impulse iterations of the ball against static contacts.
// Each pass solves the non-penetration row, then two Coulomb friction rows clamped by the
// accumulated normal impulse, then rolling friction on the angular velocity.
func solveContacts(b *Body, cs []contact, mat material, iterations int) {
	invM := b.invMass
	invI := b.invInertia
	for it := 0; it < iterations; it++ {
		for i := range cs {
			c := &cs[i]

			// Normal.
			rn := c.r.Cross(c.Normal)
			kN := invM + invI*rn.Dot(rn)
			vn := contactVelocity(b, c.r).Dot(c.Normal)
			desired := max(c.bias, c.target)
			dLambda := (desired - vn) / kN
			old := c.normalImp
			c.normalImp = max(old+dLambda, 0)
			applyImpulse(b, c.r, c.Normal.Mul(c.normalImp-old))

			// Friction.
			limit := mat.friction * c.normalImp
			for k, t := range [2]mgl32.Vec3{c.tangent1, c.tangent2} {
				rt := c.r.Cross(t)
				kT := invM + invI*rt.Dot(rt)
				vt := contactVelocity(b, c.r).Dot(t)
				old := c.tangentImp[k]
				c.tangentImp[k] = clamp(old-vt/kT, -limit, limit)
				applyImpulse(b, c.r, t.Mul(c.tangentImp[k]-old))
			}

			// Rolling friction.
			if invI > 0 && mat.rolling > 0 {
				rollLimit := mat.rolling * c.normalImp
				oldRoll := c.rollImp
				next := oldRoll.Sub(b.AngularVelocity.Mul(1 / invI))
				if l := next.Len(); l > rollLimit {
					if l > 0 {
						next = next.Mul(rollLimit / l)
					}
				}
				c.rollImp = next
				b.AngularVelocity = b.AngularVelocity.Add(next.Sub(oldRoll).Mul(invI))
			}
		}
	}
}

// applyImpulse applies a linear impulse p at lever arm r.
func applyImpulse(b *Body, r, p mgl32.Vec3) {
	b.LinearVelocity = b.LinearVelocity.Add(p.Mul(b.invMass))
	b.AngularVelocity = b.AngularVelocity.Add(r.Cross(p).Mul(b.invInertia))
}

// tangentBasis returns two unit vectors orthogonal to n and to each other.
func tangentBasis(n mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	var t mgl32.Vec3
	if abs32(n.X()) > 0.57735 {
		t = mgl32.Vec3{n.Y(), -n.X(), 0}
	} else {
		t = mgl32.Vec3{0, n.Z(), -n.Y()}
	}
	t = t.Normalize()
	return t, n.Cross(t)
}

package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ActivationState mirrors the solver's sleep bookkeeping for a body.
type ActivationState int

const (
	// Active bodies are integrated and may fall asleep after resting for DeactivationTime.
	Active ActivationState = iota
	// Sleeping bodies are skipped by the solver until Activate is called.
	Sleeping
	// AlwaysActive bodies never fall asleep (the ball by default: gravity changes do not wake sleepers).
	AlwaysActive
)

// Body is a rigid body with a collision shape, mass properties, material coefficients and a pose.
// A body with mass 0 is static: infinite mass and inertia, never moved by the solver.
type Body struct {
	Shape           Shape
	Mass            float32
	Friction        float32
	RollingFriction float32
	Restitution     float32

	Position        mgl32.Vec3
	Orientation     mgl32.Quat
	LinearVelocity  mgl32.Vec3
	AngularVelocity mgl32.Vec3

	invMass    float32
	invInertia float32
	force      mgl32.Vec3

	state          ActivationState
	deactivateTime float32
}

// NewBody returns a body at position with identity orientation. Velocity is zero.
// Inertia is derived from the shape; mass <= 0 makes the body static.
func NewBody(shape Shape, mass float32, position mgl32.Vec3) *Body {
	b := &Body{
		Shape:       shape,
		Position:    position,
		Orientation: mgl32.QuatIdent(),
	}
	if mass > 0 {
		b.Mass = mass
		b.invMass = 1 / mass
		if inertia := shape.localInertia(mass); inertia > 0 {
			b.invInertia = 1 / inertia
		}
	}
	return b
}

// Static reports whether the body has infinite mass.
func (b *Body) Static() bool {
	return b.invMass == 0
}

// InverseMass returns 1/mass, or 0 for static bodies.
func (b *Body) InverseMass() float32 {
	return b.invMass
}

// InverseInertia returns the scalar inverse moment of inertia, or 0 for static bodies.
func (b *Body) InverseInertia() float32 {
	return b.invInertia
}

// ApplyForce adds a force through the center of mass for the next step.
func (b *Body) ApplyForce(f mgl32.Vec3) {
	b.force = b.force.Add(f)
}

// ClearForces drops the accumulated force.
func (b *Body) ClearForces() {
	b.force = mgl32.Vec3{}
}

// SetTransform teleports the body. Velocities are left untouched.
func (b *Body) SetTransform(position mgl32.Vec3, orientation mgl32.Quat) {
	b.Position = position
	b.Orientation = orientation.Normalize()
}

// State returns the activation state.
func (b *Body) State() ActivationState {
	return b.state
}

// SetActivationState forces a state. Setting Active or AlwaysActive restarts the rest timer.
func (b *Body) SetActivationState(s ActivationState) {
	b.state = s
	if s != Sleeping {
		b.deactivateTime = 0
	}
}

// Activate wakes a sleeping body. AlwaysActive bodies keep their state.
func (b *Body) Activate() {
	if b.state == Sleeping {
		b.state = Active
	}
	b.deactivateTime = 0
}

// IsActive reports whether the solver integrates this body.
func (b *Body) IsActive() bool {
	return !b.Static() && b.state != Sleeping
}

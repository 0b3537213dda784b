package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultFixedStep is the internal solver step (60 Hz).
	DefaultFixedStep = float32(1.0 / 60.0)
	// DefaultMaxSubSteps caps how many fixed steps one Step call may run.
	DefaultMaxSubSteps = 10
	// DefaultIterations is the number of contact solver passes per fixed step.
	DefaultIterations = 10

	// Bullet's sleep thresholds: a body resting slower than these for DeactivationTime falls asleep.
	linearSleepThreshold  = 0.8
	angularSleepThreshold = 1.0
	DeactivationTime      = float32(2.0)
)

// staticMesh is a placed triangle-mesh collider in world space.
type staticMesh struct {
	body *Body
	mesh *TriangleMesh
}

// World owns the bodies and runs the fixed-step simulation: gravity and forces, sphere vs
// static-mesh contacts, impulse solve, integration, deactivation.
type World struct {
	Gravity     mgl32.Vec3
	FixedStep   float32
	MaxSubSteps int
	Iterations  int

	bodies  []*Body
	statics []staticMesh

	accumulator float32
	scratch     []int
	contacts    []contact
	lastContact int
}

// NewWorld returns a world with gravity (0, -9.81, 0), Y-up, stepping at 60 Hz.
func NewWorld() *World {
	return &World{
		Gravity:     mgl32.Vec3{0, -StandardGravity, 0},
		FixedStep:   DefaultFixedStep,
		MaxSubSteps: DefaultMaxSubSteps,
		Iterations:  DefaultIterations,
	}
}

// SetGravity sets the gravity vector applied to every active dynamic body.
func (w *World) SetGravity(g mgl32.Vec3) {
	w.Gravity = g
}

// AddBody appends a body. A static triangle-mesh body has its collider copied into world space
// here, once; later changes to the body's position do not move the collider.
func (w *World) AddBody(b *Body) {
	w.bodies = append(w.bodies, b)
	if m, ok := b.Shape.(*TriangleMesh); ok && b.Static() {
		w.statics = append(w.statics, staticMesh{body: b, mesh: m.translated(b.Position)})
	}
}

// Bodies returns all bodies in insertion order.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// ContactCount returns how many contacts the last fixed step solved.
func (w *World) ContactCount() int {
	return w.lastContact
}

// ResetClock drops any accumulated time that has not yet been simulated.
func (w *World) ResetClock() {
	w.accumulator = 0
}

// Step advances the simulation by dt seconds in FixedStep increments and returns the number of
// fixed steps run. At most MaxSubSteps run per call; extra time beyond that is discarded so a long
// stall cannot feed an unbounded step count into the solver.
func (w *World) Step(dt float32) int {
	w.accumulator += dt
	n := int(w.accumulator / w.FixedStep)
	if n <= 0 {
		return 0
	}
	w.accumulator -= float32(n) * w.FixedStep
	if n > w.MaxSubSteps {
		n = w.MaxSubSteps
	}
	for i := 0; i < n; i++ {
		w.stepFixed(w.FixedStep)
	}
	return n
}

func (w *World) stepFixed(dt float32) {
	// Forces and gravity into velocity.
	for _, b := range w.bodies {
		if !b.IsActive() {
			continue
		}
		accel := w.Gravity.Add(b.force.Mul(b.invMass))
		b.LinearVelocity = b.LinearVelocity.Add(accel.Mul(dt))
	}

	// Contacts: each sphere against each static mesh.
	w.lastContact = 0
	for _, b := range w.bodies {
		sphere, ok := b.Shape.(*Sphere)
		if !ok || !b.IsActive() {
			continue
		}
		for _, s := range w.statics {
			w.scratch, w.contacts = sphereMeshContacts(b.Position, sphere.Radius, s.mesh, w.scratch, w.contacts)
			if len(w.contacts) == 0 {
				continue
			}
			mat := combine(b, s.body)
			prepareContacts(b, w.contacts, mat, dt)
			solveContacts(b, w.contacts, mat, w.Iterations)
			w.lastContact += len(w.contacts)
		}
	}

	// Integrate pose.
	for _, b := range w.bodies {
		if !b.IsActive() {
			b.ClearForces()
			continue
		}
		b.Position = b.Position.Add(b.LinearVelocity.Mul(dt))
		if b.AngularVelocity.Len() > 0 {
			spin := mgl32.Quat{W: 0, V: b.AngularVelocity.Mul(0.5 * dt)}
			b.Orientation = b.Orientation.Add(spin.Mul(b.Orientation)).Normalize()
		}
		b.ClearForces()
		w.updateDeactivation(b, dt)
	}
}

func (w *World) updateDeactivation(b *Body, dt float32) {
	if b.state != Active {
		return
	}
	lin := b.LinearVelocity.Len()
	ang := b.AngularVelocity.Len()
	if lin < linearSleepThreshold && ang < angularSleepThreshold {
		b.deactivateTime += dt
	} else {
		b.deactivateTime = 0
	}
	if b.deactivateTime > DeactivationTime {
		b.state = Sleeping
		b.LinearVelocity = mgl32.Vec3{}
		b.AngularVelocity = mgl32.Vec3{}
	}
}

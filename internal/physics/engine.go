package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// StandardGravity is the nominal gravity magnitude (m/s²).
const StandardGravity = float32(9.81)

// Config tunes the tilt-gravity engine. Zero fields fall back to DefaultConfig values in NewEngine.
type Config struct {
	TiltRate       float32    // rad/s at full input
	MaxTilt        float32    // radians, applied to pitch and roll independently
	Gravity        float32    // magnitude
	FixedStep      float32    // solver step
	MaxSubSteps    int        // cap per Step call
	Iterations     int        // contact solver passes
	ResetThreshold float32    // ball y below this triggers a reset
	StartHeight    float32    // spawn y
	FloorPosition  [3]float32 // board collider world offset

	BallRadius          float32
	BallMass            float32
	BallFriction        float32
	BallRollingFriction float32
	BallRestitution     float32
	BoardFriction       float32
	BoardRestitution    float32
	// BallDeactivation lets the ball fall asleep at rest. Off by default: a sleeping ball would not
	// notice the board tilting.
	BallDeactivation bool
}

// DefaultConfig returns the tuned marble-maze constants.
func DefaultConfig() Config {
	return Config{
		TiltRate:            0.4,
		MaxTilt:             25 * math32.Pi / 180,
		Gravity:             StandardGravity,
		FixedStep:           DefaultFixedStep,
		MaxSubSteps:         DefaultMaxSubSteps,
		Iterations:          DefaultIterations,
		ResetThreshold:      -10,
		StartHeight:         5,
		FloorPosition:       [3]float32{0, -1, 0},
		BallRadius:          1,
		BallMass:            1,
		BallFriction:        0.3,
		BallRollingFriction: 0.02,
		BallRestitution:     0,
		BoardFriction:       0.5,
		BoardRestitution:    0,
	}
}

// withDefaults fills zero numeric fields from DefaultConfig. Restitution and the floor position are
// taken as given since zero is meaningful for them.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TiltRate == 0 {
		c.TiltRate = d.TiltRate
	}
	if c.MaxTilt == 0 {
		c.MaxTilt = d.MaxTilt
	}
	if c.Gravity == 0 {
		c.Gravity = d.Gravity
	}
	if c.FixedStep <= 0 {
		c.FixedStep = d.FixedStep
	}
	if c.MaxSubSteps <= 0 {
		c.MaxSubSteps = d.MaxSubSteps
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.ResetThreshold == 0 {
		c.ResetThreshold = d.ResetThreshold
	}
	if c.StartHeight == 0 {
		c.StartHeight = d.StartHeight
	}
	if c.BallRadius <= 0 {
		c.BallRadius = d.BallRadius
	}
	if c.BallMass <= 0 {
		c.BallMass = d.BallMass
	}
	if c.BallFriction == 0 {
		c.BallFriction = d.BallFriction
	}
	if c.BallRollingFriction == 0 {
		c.BallRollingFriction = d.BallRollingFriction
	}
	if c.BoardFriction == 0 {
		c.BoardFriction = d.BoardFriction
	}
	return c
}

// Tilt is the virtual board rotation in radians.
type Tilt struct {
	Pitch float32 // about X; positive pulls the ball toward -Z
	Roll  float32 // about Z; positive pulls the ball toward +X
}

// Intent is the normalized steering input in [-1,1]².
type Intent struct {
	Forward float32
	Right   float32
}

// Pose is a read-only snapshot of the ball transform.
type Pose struct {
	Position [3]float32
	Rotation [4]float32 // quaternion x, y, z, w
}

// FloorPose exposes the board placement and tilt without the gravity internals.
type FloorPose struct {
	Position [3]float32
	Pitch    float32
	Roll     float32
}

// Engine is the tilt-gravity physics engine: one static board, one ball, a gravity vector rotated
// by the integrated tilt. The board collider never moves; only gravity turns.
type Engine struct {
	cfg    Config
	world  *World
	board  *Body
	ball   *Body
	tilt   Tilt
	intent Intent
	resets int
}

// NewEngine builds the world: the board collider from mesh, placed at cfg.FloorPosition, and the ball at
// its spawn pose.
func NewEngine(cfg Config, board *TriangleMesh) *Engine {
	cfg = cfg.withDefaults()
	w := NewWorld()
	w.FixedStep = cfg.FixedStep
	w.MaxSubSteps = cfg.MaxSubSteps
	w.Iterations = cfg.Iterations
	w.SetGravity(mgl32.Vec3{0, -cfg.Gravity, 0})

	boardBody := NewBody(board, 0, mgl32.Vec3(cfg.FloorPosition))
	boardBody.Friction = cfg.BoardFriction
	boardBody.Restitution = cfg.BoardRestitution
	w.AddBody(boardBody)

	ball := NewBody(&Sphere{Radius: cfg.BallRadius}, cfg.BallMass, mgl32.Vec3{0, cfg.StartHeight, 0})
	ball.Friction = cfg.BallFriction
	ball.RollingFriction = cfg.BallRollingFriction
	ball.Restitution = cfg.BallRestitution
	if !cfg.BallDeactivation {
		ball.SetActivationState(AlwaysActive)
	}
	w.AddBody(ball)

	return &Engine{cfg: cfg, world: w, board: boardBody, ball: ball}
}

// Config returns the effective configuration (defaults applied).
func (e *Engine) Config() Config {
	return e.cfg
}

// Contacts returns how many ball contacts the last fixed step solved.
func (e *Engine) Contacts() int {
	return e.world.ContactCount()
}

// SetTiltInput stores the latest steering intent. It takes effect on the next Step.
func (e *Engine) SetTiltInput(forward, right float32) {
	e.intent = Intent{Forward: forward, Right: right}
}

// SetTiltRate changes the tilt speed at full input.
func (e *Engine) SetTiltRate(rate float32) {
	if rate > 0 {
		e.cfg.TiltRate = rate
	}
}

// Step advances the simulation by dt: integrate tilt from intent, rotate gravity, run the solver,
// then reset the ball if it fell off the board. Callers pass the nominal fixed step, not wall-clock
// time. Non-finite or non-positive dt is ignored.
func (e *Engine) Step(dt float32) {
	if math32.IsNaN(dt) || math32.IsInf(dt, 0) || dt <= 0 {
		return
	}
	e.tilt.Pitch = clamp(e.tilt.Pitch+e.intent.Forward*e.cfg.TiltRate*dt, -e.cfg.MaxTilt, e.cfg.MaxTilt)
	e.tilt.Roll = clamp(e.tilt.Roll+e.intent.Right*e.cfg.TiltRate*dt, -e.cfg.MaxTilt, e.cfg.MaxTilt)

	e.world.SetGravity(GravityFromTilt(e.tilt, e.cfg.Gravity))
	e.world.Step(dt)

	if e.ball.Position.Y() < e.cfg.ResetThreshold {
		e.ResetBall()
	}
}

// GravityFromTilt rotates the nominal downward gravity by pitch and roll:
//
//	gx =  g·cos(pitch)·sin(roll)
//	gy = -g·cos(pitch)·cos(roll)
//	gz = -g·sin(pitch)
//
// The magnitude stays g for any tilt.
func GravityFromTilt(t Tilt, g float32) mgl32.Vec3 {
	cp := math32.Cos(t.Pitch)
	sp := math32.Sin(t.Pitch)
	cr := math32.Cos(t.Roll)
	sr := math32.Sin(t.Roll)
	return mgl32.Vec3{g * cp * sr, -g * cp * cr, -g * sp}
}

// ResetBall zeroes the tilt, restores nominal gravity and puts the ball back at its spawn pose at
// rest. The ball is force-activated in case the solver had put it to sleep.
func (e *Engine) ResetBall() {
	e.tilt = Tilt{}
	e.world.SetGravity(mgl32.Vec3{0, -e.cfg.Gravity, 0})
	e.ball.SetTransform(mgl32.Vec3{0, e.cfg.StartHeight, 0}, mgl32.QuatIdent())
	e.ball.LinearVelocity = mgl32.Vec3{}
	e.ball.AngularVelocity = mgl32.Vec3{}
	e.ball.ClearForces()
	if e.ball.State() == Sleeping {
		e.ball.SetActivationState(Active)
	}
	e.ball.Activate()
	e.world.ResetClock()
	e.resets++
}

// Resets returns how many times the ball has been reset.
func (e *Engine) Resets() int {
	return e.resets
}

// BallPosition returns the ball's current translation.
func (e *Engine) BallPosition() [3]float32 {
	return e.ball.Position
}

// BallTransform returns the ball's position and orientation quaternion (x, y, z, w).
func (e *Engine) BallTransform() Pose {
	q := e.ball.Orientation
	return Pose{
		Position: e.ball.Position,
		Rotation: [4]float32{q.V.X(), q.V.Y(), q.V.Z(), q.W},
	}
}

// BallVelocity returns the ball's linear velocity.
func (e *Engine) BallVelocity() [3]float32 {
	return e.ball.LinearVelocity
}

// BallActive reports whether the solver is integrating the ball.
func (e *Engine) BallActive() bool {
	return e.ball.IsActive()
}

// Floor returns the fixed board position and the current tilt.
func (e *Engine) Floor() FloorPose {
	return FloorPose{Position: e.cfg.FloorPosition, Pitch: e.tilt.Pitch, Roll: e.tilt.Roll}
}

// Tilt returns the current board tilt.
func (e *Engine) Tilt() Tilt {
	return e.tilt
}

// Intent returns the stored steering intent.
func (e *Engine) Intent() Intent {
	return e.intent
}

// Gravity returns the gravity vector used by the last step.
func (e *Engine) Gravity() [3]float32 {
	return e.world.Gravity
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs32(v float32) float32 {
	return math32.Abs(v)
}

func sqrt32(v float32) float32 {
	return math32.Sqrt(v)
}

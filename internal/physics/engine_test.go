package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const step = float32(1.0 / 60.0)

// quadBuffers returns flat (x,y,z,w) positions and indices for an upward-facing square at y=0.
func quadBuffers(half float32) ([]float32, []uint32) {
	positions := []float32{
		-half, 0, -half, 1,
		-half, 0, half, 1,
		half, 0, half, 1,
		half, 0, -half, 1,
	}
	return positions, []uint32{0, 1, 2, 0, 2, 3}
}

func flatBoard(t *testing.T, half float32) *TriangleMesh {
	t.Helper()
	positions, indices := quadBuffers(half)
	m, err := NewTriangleMesh(positions, 4, indices)
	if err != nil {
		t.Fatalf("NewTriangleMesh: %v", err)
	}
	return m
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	return NewEngine(cfg, flatBoard(t, 20))
}

func near(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return a.Sub(b).Len() <= tol
}

func runSteps(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Step(step)
	}
}

func TestGravityMagnitudeInvariantUnderTilt(t *testing.T) {
	maxTilt := DefaultConfig().MaxTilt
	for i := -10; i <= 10; i++ {
		for j := -10; j <= 10; j++ {
			tilt := Tilt{Pitch: maxTilt * float32(i) / 10, Roll: maxTilt * float32(j) / 10}
			g := GravityFromTilt(tilt, StandardGravity)
			if !near(g.Len(), StandardGravity, 1e-4) {
				t.Fatalf("|g| at %+v = %v, want %v", tilt, g.Len(), StandardGravity)
			}
		}
	}
}

func TestGravityFromTiltFormulas(t *testing.T) {
	tests := []struct {
		name string
		tilt Tilt
		want mgl32.Vec3
	}{
		{"level", Tilt{}, mgl32.Vec3{0, -9.81, 0}},
		{"pitch only", Tilt{Pitch: 0.3}, mgl32.Vec3{0, -9.81 * float32(math.Cos(0.3)), -9.81 * float32(math.Sin(0.3))}},
		{"roll only", Tilt{Roll: -0.2}, mgl32.Vec3{9.81 * float32(math.Sin(-0.2)), -9.81 * float32(math.Cos(-0.2)), 0}},
		{"both", Tilt{Pitch: 0.1, Roll: 0.4}, mgl32.Vec3{
			9.81 * float32(math.Cos(0.1)*math.Sin(0.4)),
			-9.81 * float32(math.Cos(0.1)*math.Cos(0.4)),
			-9.81 * float32(math.Sin(0.1)),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GravityFromTilt(tt.tilt, StandardGravity)
			for k := 0; k < 3; k++ {
				if !near(got[k], tt.want[k], 1e-5) {
					t.Errorf("GravityFromTilt(%+v) = %v, want %v", tt.tilt, got, tt.want)
					break
				}
			}
		})
	}
}

func TestNoInputKeepsNominalGravity(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	runSteps(e, 300)
	g := e.Gravity()
	if g[0] != 0 || g[1] != -StandardGravity || g[2] != 0 {
		t.Fatalf("gravity = %v, want (0, -9.81, 0)", g)
	}
	if tilt := e.Tilt(); tilt.Pitch != 0 || tilt.Roll != 0 {
		t.Fatalf("tilt = %+v, want zero", tilt)
	}
}

func TestTiltClampIsMonotonic(t *testing.T) {
	inputs := []struct {
		name           string
		forward, right float32
	}{
		{"forward", 1, 0},
		{"back left", -1, -1},
		{"diagonal", float32(1 / math.Sqrt2), float32(1 / math.Sqrt2)},
	}
	for _, in := range inputs {
		t.Run(in.name, func(t *testing.T) {
			e := newTestEngine(t, DefaultConfig())
			maxTilt := e.Config().MaxTilt
			e.SetTiltInput(in.forward, in.right)
			var prevP, prevR float32
			for i := 0; i < 200; i++ {
				e.Step(step)
				tilt := e.Tilt()
				if abs32(tilt.Pitch) > maxTilt || abs32(tilt.Roll) > maxTilt {
					t.Fatalf("step %d: tilt %+v exceeds %v", i, tilt, maxTilt)
				}
				if abs32(tilt.Pitch) < abs32(prevP) || abs32(tilt.Roll) < abs32(prevR) {
					t.Fatalf("step %d: tilt %+v moved away from the limit (was %v, %v)", i, tilt, prevP, prevR)
				}
				prevP, prevR = tilt.Pitch, tilt.Roll
			}
			tilt := e.Tilt()
			if in.forward != 0 && abs32(tilt.Pitch) != maxTilt {
				t.Errorf("pitch = %v, want clamped at %v", tilt.Pitch, maxTilt)
			}
			if in.right != 0 && abs32(tilt.Roll) != maxTilt {
				t.Errorf("roll = %v, want clamped at %v", tilt.Roll, maxTilt)
			}
		})
	}
}

func TestHoldForwardPlateausAtMaxTilt(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.SetTiltInput(1, 0)

	runSteps(e, 60)
	if p := e.Tilt().Pitch; !near(p, 0.4, 1e-4) {
		t.Fatalf("pitch after 1s = %v, want 0.4", p)
	}

	runSteps(e, 6) // 1.1 s: past 0.4363/0.4 ≈ 1.09 s
	want := float32(25 * math.Pi / 180)
	if p := e.Tilt().Pitch; !near(p, want, 1e-6) {
		t.Fatalf("pitch after 1.1s = %v, want %v", p, want)
	}
	runSteps(e, 60)
	if p := e.Tilt().Pitch; !near(p, want, 1e-6) {
		t.Fatalf("pitch after 2.1s = %v, want it to stay at %v", p, want)
	}
}

func TestSetTiltInputTakesEffectOnNextStep(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.SetTiltInput(1, -1)
	if tilt := e.Tilt(); tilt != (Tilt{}) {
		t.Fatalf("tilt changed before Step: %+v", tilt)
	}
	if in := e.Intent(); in.Forward != 1 || in.Right != -1 {
		t.Fatalf("intent = %+v", in)
	}
	e.Step(step)
	tilt := e.Tilt()
	if tilt.Pitch <= 0 || tilt.Roll >= 0 {
		t.Fatalf("tilt after Step = %+v, want pitch > 0 and roll < 0", tilt)
	}
}

func TestStepIgnoresDegenerateDt(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.SetTiltInput(1, 1)
	before := e.BallPosition()
	for _, dt := range []float32{0, -step, float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
		e.Step(dt)
	}
	if tilt := e.Tilt(); tilt != (Tilt{}) {
		t.Fatalf("tilt = %+v after degenerate steps", tilt)
	}
	if got := e.BallPosition(); got != before {
		t.Fatalf("ball moved from %v to %v", before, got)
	}
}

func TestBallSpawnPose(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	pose := e.BallTransform()
	if pose.Position != [3]float32{0, 5, 0} {
		t.Errorf("spawn position = %v, want (0, 5, 0)", pose.Position)
	}
	if pose.Rotation != [4]float32{0, 0, 0, 1} {
		t.Errorf("spawn rotation = %v, want identity", pose.Rotation)
	}
	floor := e.Floor()
	if floor.Position != [3]float32{0, -1, 0} || floor.Pitch != 0 || floor.Roll != 0 {
		t.Errorf("floor = %+v", floor)
	}
}

func TestBallSettlesOnBoard(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	runSteps(e, 240)
	pos := e.BallPosition()
	// Board surface is at y = -1 (floor offset), ball radius 1.
	if !near(pos[1], 0, 0.05) {
		t.Fatalf("resting ball y = %v, want ~0", pos[1])
	}
	if !near(pos[0], 0, 1e-3) || !near(pos[2], 0, 1e-3) {
		t.Fatalf("ball drifted sideways to %v", pos)
	}
	if v := mgl32.Vec3(e.BallVelocity()).Len(); v > 0.05 {
		t.Fatalf("resting ball speed = %v", v)
	}
}

func TestContactsTrackBoardTouch(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.Step(step)
	if n := e.Contacts(); n != 0 {
		t.Fatalf("falling ball reports %d contacts", n)
	}
	runSteps(e, 240)
	if n := e.Contacts(); n < 1 {
		t.Fatalf("resting ball reports %d contacts, want at least 1", n)
	}
}

func TestTiltRollsBallDownhill(t *testing.T) {
	tests := []struct {
		name           string
		forward, right float32
		axis           int
		sign           float32
	}{
		{"forward rolls toward -Z", 1, 0, 2, -1},
		{"back rolls toward +Z", -1, 0, 2, 1},
		{"right rolls toward +X", 0, 1, 0, 1},
		{"left rolls toward -X", 0, -1, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, DefaultConfig())
			runSteps(e, 120)
			e.SetTiltInput(tt.forward, tt.right)
			runSteps(e, 120)
			pos := e.BallPosition()
			if pos[tt.axis]*tt.sign < 0.1 {
				t.Fatalf("ball at %v, want axis %d moved with sign %v", pos, tt.axis, tt.sign)
			}
			if pos[1] < -0.1 {
				t.Fatalf("ball sank into board: %v", pos)
			}
			if q := e.BallTransform().Rotation; q == [4]float32{0, 0, 0, 1} {
				t.Fatalf("ball slid without rotating")
			}
		})
	}
}

func TestWallStopsBall(t *testing.T) {
	// Floor plus a wall at x = 3 facing -X, 3 units tall.
	positions, indices := quadBuffers(20)
	wall := []float32{
		3, 0, -20, 1,
		3, 3, -20, 1,
		3, 3, 20, 1,
		3, 0, 20, 1,
	}
	positions = append(positions, wall...)
	indices = append(indices, 4, 5, 6, 4, 6, 7)
	m, err := NewTriangleMesh(positions, 4, indices)
	if err != nil {
		t.Fatalf("NewTriangleMesh: %v", err)
	}
	e := NewEngine(DefaultConfig(), m)
	runSteps(e, 120)
	e.SetTiltInput(0, 1)
	for i := 0; i < 600; i++ {
		e.Step(step)
		if x := e.BallPosition()[0]; x > 2+0.05 {
			t.Fatalf("step %d: ball center x = %v passed through the wall", i, x)
		}
	}
	if x := e.BallPosition()[0]; x < 1.8 {
		t.Fatalf("ball x = %v, want it pressed against the wall", x)
	}
}

func TestBallResetsWhenItFallsOff(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.tilt = Tilt{Pitch: 0.2, Roll: -0.1}
	e.ball.SetTransform(mgl32.Vec3{100, -9.95, 0}, mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0}))
	e.ball.LinearVelocity = mgl32.Vec3{1, -10, 0}
	e.ball.AngularVelocity = mgl32.Vec3{0, 3, 0}

	e.Step(step)

	if pos := e.BallPosition(); pos != [3]float32{0, 5, 0} {
		t.Fatalf("position after reset = %v, want (0, 5, 0)", pos)
	}
	if v := e.BallVelocity(); v != [3]float32{} {
		t.Fatalf("velocity after reset = %v, want zero", v)
	}
	if w := e.ball.AngularVelocity; w != (mgl32.Vec3{}) {
		t.Fatalf("angular velocity after reset = %v, want zero", w)
	}
	if tilt := e.Tilt(); tilt != (Tilt{}) {
		t.Fatalf("tilt after reset = %+v, want zero", tilt)
	}
	if g := e.Gravity(); g != [3]float32{0, -StandardGravity, 0} {
		t.Fatalf("gravity after reset = %v, want nominal", g)
	}
	if q := e.BallTransform().Rotation; q != [4]float32{0, 0, 0, 1} {
		t.Fatalf("rotation after reset = %v, want identity", q)
	}
	if e.Resets() != 1 {
		t.Fatalf("Resets() = %d, want 1", e.Resets())
	}
}

func TestResetReactivatesSleepingBall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BallDeactivation = true
	e := newTestEngine(t, cfg)
	runSteps(e, 600)
	if e.BallActive() {
		t.Fatalf("ball still active after resting for 10s")
	}

	// A sleeping ball ignores tilt.
	e.SetTiltInput(1, 0)
	before := e.BallPosition()
	runSteps(e, 60)
	if e.BallPosition() != before {
		t.Fatalf("sleeping ball moved")
	}

	e.SetTiltInput(0, 0)
	e.ResetBall()
	if !e.BallActive() {
		t.Fatalf("ResetBall did not reactivate the ball")
	}
	e.Step(step)
	if y := e.BallPosition()[1]; y >= 5 {
		t.Fatalf("ball y = %v after reset+step, want it falling", y)
	}
}

func TestBallStaysAwakeByDefault(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	runSteps(e, 600)
	if !e.BallActive() {
		t.Fatalf("ball fell asleep without BallDeactivation")
	}
}

// Package camera produces the eye, target and up vectors the renderer looks through.
package camera

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultYaw         = float32(0)
	DefaultPitch       = float32(0.3)
	DefaultRadius      = float32(25)
	DefaultRotateSpeed = float32(0.005)

	// pitchLimit keeps the orbit eye off the poles, where world-up would be parallel to the view.
	pitchLimit = math32.Pi/2 - 0.01
)

// View is a look-at triple in world space.
type View struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
}

// Controller yields the view for the current board tilt.
type Controller interface {
	View(pitch, roll float32) View
}

// Mode selects a Controller.
type Mode int

const (
	ModeOrbit Mode = iota
	ModeTilt
)

func (m Mode) String() string {
	if m == ModeTilt {
		return "tilt"
	}
	return "orbit"
}

// ParseMode accepts "orbit" or "tilt" (case-insensitive). An empty string means orbit.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "orbit":
		return ModeOrbit, nil
	case "tilt":
		return ModeTilt, nil
	}
	return ModeOrbit, fmt.Errorf("camera: unknown mode %q (want orbit or tilt)", s)
}

// New returns the controller for mode, starting at the given yaw, pitch and radius.
func New(mode Mode, yaw, pitch, radius float32) Controller {
	if mode == ModeTilt {
		return &TiltCompensating{Yaw: yaw, Pitch: pitch, Radius: radius}
	}
	o := NewOrbit()
	o.Yaw, o.Pitch, o.Radius = yaw, pitch, radius
	return o
}

// baseEye rotates (0, 0, radius) by pitch about X (positive lifts the eye) and then yaw about Y.
func baseEye(yaw, pitch, radius float32) mgl32.Vec3 {
	rot := mgl32.Rotate3DY(yaw).Mul3(mgl32.Rotate3DX(-pitch))
	return rot.Mul3x1(mgl32.Vec3{0, 0, radius})
}

// Orbit is a mouse-drag orbit camera around the origin. Board tilt does not move it.
type Orbit struct {
	Yaw         float32
	Pitch       float32
	Radius      float32
	RotateSpeed float32

	dragging     bool
	lastX, lastY float32
}

// NewOrbit returns an orbit camera with the default yaw 0, pitch 0.3, radius 25.
func NewOrbit() *Orbit {
	return &Orbit{Yaw: DefaultYaw, Pitch: DefaultPitch, Radius: DefaultRadius, RotateSpeed: DefaultRotateSpeed}
}

// Press starts a drag at pointer position (x, y).
func (o *Orbit) Press(x, y float32) {
	o.dragging = true
	o.lastX, o.lastY = x, y
}

// Move rotates the camera by the pointer delta while a drag is in progress.
func (o *Orbit) Move(x, y float32) {
	if !o.dragging {
		return
	}
	o.Yaw += (x - o.lastX) * o.RotateSpeed
	o.Pitch += (y - o.lastY) * o.RotateSpeed
	o.Pitch = max(-pitchLimit, min(pitchLimit, o.Pitch))
	o.lastX, o.lastY = x, y
}

// Release ends the drag.
func (o *Orbit) Release() {
	o.dragging = false
}

// Dragging reports whether a drag is in progress.
func (o *Orbit) Dragging() bool {
	return o.dragging
}

// View ignores tilt: the eye orbits the origin with world-up.
func (o *Orbit) View(_, _ float32) View {
	return View{Eye: baseEye(o.Yaw, o.Pitch, o.Radius), Up: mgl32.Vec3{0, 1, 0}}
}

// TiltCompensating rotates a fixed eye and its up vector with the board tilt so the board
// appears to tilt under a flat-drawn scene.
type TiltCompensating struct {
	Yaw    float32
	Pitch  float32
	Radius float32
}

// View applies T = Rx(pitch)·Rz(roll) to the base eye and to world-up.
func (c *TiltCompensating) View(pitch, roll float32) View {
	t := mgl32.Rotate3DX(pitch).Mul3(mgl32.Rotate3DZ(roll))
	return View{
		Eye: t.Mul3x1(baseEye(c.Yaw, c.Pitch, c.Radius)),
		Up:  t.Mul3x1(mgl32.Vec3{0, 1, 0}),
	}
}

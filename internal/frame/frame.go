// Package frame turns one simulation step into everything the renderer needs for a frame:
// projection, view, and one uniform block per drawn object.
package frame

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"marble-maze/internal/camera"
	"marble-maze/internal/physics"
)

const (
	DefaultFov          = float32(45)
	DefaultNear         = float32(0.1)
	DefaultFar          = float32(100)
	DefaultShadowOffset = float32(0.02)
)

// DefaultLight is the point light position in world space.
var DefaultLight = mgl32.Vec3{0, 25, 8}

// Simulation is the slice of the physics engine a frame needs.
type Simulation interface {
	Step(dt float32)
	BallTransform() physics.Pose
	Floor() physics.FloorPose
}

// Renderer draws a prepared frame.
type Renderer interface {
	Render(f *Frame) error
}

// Frame is the per-frame output handed to the renderer.
type Frame struct {
	Index      uint64
	Projection mgl32.Mat4
	View       mgl32.Mat4
	Eye        mgl32.Vec3
	Board      Block
	Ball       Block
	// Shadow is valid only when ShadowOn is set.
	Shadow   Block
	ShadowOn bool
	BallPose physics.Pose
	Floor    physics.FloorPose
}

// Options configures the orchestrator.
type Options struct {
	FixedStep    float32
	Fov          float32 // degrees
	Near, Far    float32
	Light        mgl32.Vec3
	Shadow       bool
	ShadowOffset float32
	// BoardTop is the height of the board's walking surface in board-local coordinates.
	BoardTop float32
	Material Material
}

// DefaultOptions returns the stock frame settings.
func DefaultOptions() Options {
	return Options{
		FixedStep:    physics.DefaultFixedStep,
		Fov:          DefaultFov,
		Near:         DefaultNear,
		Far:          DefaultFar,
		Light:        DefaultLight,
		Shadow:       true,
		ShadowOffset: DefaultShadowOffset,
		Material:     DefaultMaterial(),
	}
}

// Orchestrator runs one physics step and one render per Tick.
type Orchestrator struct {
	sim      Simulation
	cam      camera.Controller
	renderer Renderer
	opts     Options
	aspect   float32
	frames   uint64
	frame    Frame
}

// NewOrchestrator wires the simulation, camera and renderer. Aspect starts at 1 until SetViewport.
func NewOrchestrator(sim Simulation, cam camera.Controller, r Renderer, opts Options) *Orchestrator {
	if opts.FixedStep <= 0 {
		opts.FixedStep = physics.DefaultFixedStep
	}
	if opts.Fov <= 0 {
		opts.Fov = DefaultFov
	}
	if opts.Near <= 0 {
		opts.Near = DefaultNear
	}
	if opts.Far <= opts.Near {
		opts.Far = DefaultFar
	}
	return &Orchestrator{sim: sim, cam: cam, renderer: r, opts: opts, aspect: 1}
}

// SetViewport updates the aspect ratio from the drawable size. A zero height is ignored.
func (o *Orchestrator) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	o.aspect = float32(width) / float32(height)
}

// Tick advances the simulation by one nominal step, then builds and renders the frame.
// Without a renderer it fails before stepping.
func (o *Orchestrator) Tick() error {
	if o.renderer == nil {
		return fmt.Errorf("frame: render %d: no renderer", o.frames+1)
	}
	o.sim.Step(o.opts.FixedStep)
	pose := o.sim.BallTransform()
	floor := o.sim.Floor()

	view := o.cam.View(floor.Pitch, floor.Roll)
	proj := Projection(o.opts.Fov, o.aspect, o.opts.Near, o.opts.Far)
	viewMat := LookAt(view)
	mat := o.opts.Material
	light := o.opts.Light

	boardModel := BoardModel(floor.Position)
	ballModel := BallModel(pose)

	o.frames++
	o.frame = Frame{
		Index:      o.frames,
		Projection: proj,
		View:       viewMat,
		Eye:        view.Eye,
		Board:      NewBlock(proj, viewMat, boardModel, view.Eye, light, mat),
		Ball:       NewBlock(proj, viewMat, ballModel, view.Eye, light, mat),
		ShadowOn:   o.opts.Shadow,
		BallPose:   pose,
		Floor:      floor,
	}
	if o.opts.Shadow {
		plane := GroundPlane(floor.Position[1] + o.opts.BoardTop + o.opts.ShadowOffset)
		shadowModel := ShadowMatrix(plane, light).Mul4(ballModel)
		o.frame.Shadow = NewBlock(proj, viewMat, shadowModel, view.Eye, light, mat)
	}

	if err := o.renderer.Render(&o.frame); err != nil {
		return fmt.Errorf("frame: render %d: %w", o.frames, err)
	}
	return nil
}

// SetRenderer replaces the renderer, for hosts that can only build it once a window exists.
func (o *Orchestrator) SetRenderer(r Renderer) {
	o.renderer = r
}

// Frames returns how many frames have been handed to the renderer.
func (o *Orchestrator) Frames() uint64 {
	return o.frames
}

// SetMaterial replaces the material used from the next Tick.
func (o *Orchestrator) SetMaterial(m Material) {
	o.opts.Material = m
}

// Material returns the current material.
func (o *Orchestrator) Material() Material {
	return o.opts.Material
}

// SetShadow toggles the planar shadow pass.
func (o *Orchestrator) SetShadow(on bool) {
	o.opts.Shadow = on
}

// Shadow reports whether the shadow pass is on.
func (o *Orchestrator) Shadow() bool {
	return o.opts.Shadow
}

// SetCamera swaps the camera controller.
func (o *Orchestrator) SetCamera(c camera.Controller) {
	o.cam = c
}

// Camera returns the active camera controller.
func (o *Orchestrator) Camera() camera.Controller {
	return o.cam
}

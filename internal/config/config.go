package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"marble-maze/internal/camera"
	"marble-maze/internal/frame"
	"marble-maze/internal/mapgen"
	"marble-maze/internal/physics"
)

// DefaultPath is the config file path, relative to the process working directory.
const DefaultPath = "config/maze.yaml"

// Config holds every tunable of the game. Persisted as YAML; zero values mean "use the default".
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Physics PhysicsConfig `yaml:"physics"`
	Camera  CameraConfig  `yaml:"camera"`
	Render  RenderConfig  `yaml:"render"`
	Board   BoardConfig   `yaml:"board"`
	Assets  AssetsConfig  `yaml:"assets"`
	Log     LogConfig     `yaml:"log"`
	Debug   DebugConfig   `yaml:"debug"`
}

// WindowConfig sizes the host window. Fullscreen ignores Width/Height.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	TargetFPS  int    `yaml:"target_fps"`
}

// PhysicsConfig mirrors physics.Config with the tilt limit in degrees.
type PhysicsConfig struct {
	StepHz              int        `yaml:"step_hz"`
	TiltRate            float32    `yaml:"tilt_rate"`
	MaxTiltDeg          float32    `yaml:"max_tilt_deg"`
	Gravity             float32    `yaml:"gravity"`
	MaxSubSteps         int        `yaml:"max_sub_steps"`
	Iterations          int        `yaml:"iterations"`
	ResetThreshold      float32    `yaml:"reset_threshold"`
	StartHeight         float32    `yaml:"start_height"`
	FloorPosition       [3]float32 `yaml:"floor_position,flow"`
	BallRadius          float32    `yaml:"ball_radius"`
	BallMass            float32    `yaml:"ball_mass"`
	BallFriction        float32    `yaml:"ball_friction"`
	BallRollingFriction float32    `yaml:"ball_rolling_friction"`
	BallRestitution     float32    `yaml:"ball_restitution"`
	BoardFriction       float32    `yaml:"board_friction"`
	BoardRestitution    float32    `yaml:"board_restitution"`
	BallDeactivation    bool       `yaml:"ball_deactivation"`
}

// CameraConfig selects the camera variant and its starting placement.
type CameraConfig struct {
	Mode        string  `yaml:"mode"`
	Yaw         float32 `yaml:"yaw"`
	Pitch       float32 `yaml:"pitch"`
	Radius      float32 `yaml:"radius"`
	RotateSpeed float32 `yaml:"rotate_speed"`
}

// MaterialConfig holds the Phong sliders.
type MaterialConfig struct {
	Kd        float32 `yaml:"kd"`
	Ks        float32 `yaml:"ks"`
	Shininess float32 `yaml:"shininess"`
	Le        float32 `yaml:"le"`
	La        float32 `yaml:"la"`
}

// RenderConfig holds projection, light, shadow and material settings.
type RenderConfig struct {
	Fov          float32        `yaml:"fov"`
	Near         float32        `yaml:"near"`
	Far          float32        `yaml:"far"`
	Light        [3]float32     `yaml:"light,flow"`
	Shadow       bool           `yaml:"shadow"`
	ShadowOffset float32        `yaml:"shadow_offset"`
	Clear        [3]float32     `yaml:"clear,flow"` // background, 0..1 per channel
	Material     MaterialConfig `yaml:"material"`
}

// MazeConfig mirrors mapgen.MazeOptions.
type MazeConfig struct {
	Cells          int     `yaml:"cells"`
	CellSize       float32 `yaml:"cell_size"`
	WallHeight     float32 `yaml:"wall_height"`
	FloorThickness float32 `yaml:"floor_thickness"`
	Seed           int64   `yaml:"seed"`
	Exit           bool    `yaml:"exit"`
}

// BoardConfig picks the board: an OBJ model (local path or URL) or, when Model is empty, a
// generated maze.
type BoardConfig struct {
	Model string  `yaml:"model"`
	Scale float32 `yaml:"scale"`
	// Surface is the model's floor height after scaling; the shadow is laid just above it.
	Surface float32    `yaml:"surface"`
	Maze    MazeConfig `yaml:"maze"`
}

// AssetsConfig controls texture loading and remote asset caching.
type AssetsConfig struct {
	BallTexture     string        `yaml:"ball_texture"`
	BallModel       string        `yaml:"ball_model"` // OBJ path or URL; empty generates a sphere
	Font            string        `yaml:"font"`       // TTF/OTF for console and HUD; empty uses raylib's
	CacheDir        string        `yaml:"cache_dir"`
	MaxTextureSize  int           `yaml:"max_texture_size"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

// LogConfig sets the log file.
type LogConfig struct {
	Path string `yaml:"path"`
}

// DebugConfig toggles the HUD overlays.
type DebugConfig struct {
	ShowFPS      bool `yaml:"show_fps"`
	ShowMemAlloc bool `yaml:"show_memalloc"`
	ShowHUD      bool `yaml:"show_hud"`
}

// Default returns the stock configuration: procedural maze, orbit camera, shadow on.
func Default() Config {
	p := physics.DefaultConfig()
	m := frame.DefaultMaterial()
	maze := mapgen.DefaultMazeOptions()
	return Config{
		Window: WindowConfig{Title: "Marble Maze", Width: 1280, Height: 720, TargetFPS: 60},
		Physics: PhysicsConfig{
			StepHz:              60,
			TiltRate:            p.TiltRate,
			MaxTiltDeg:          25,
			Gravity:             p.Gravity,
			MaxSubSteps:         p.MaxSubSteps,
			Iterations:          p.Iterations,
			ResetThreshold:      p.ResetThreshold,
			StartHeight:         p.StartHeight,
			FloorPosition:       p.FloorPosition,
			BallRadius:          p.BallRadius,
			BallMass:            p.BallMass,
			BallFriction:        p.BallFriction,
			BallRollingFriction: p.BallRollingFriction,
			BallRestitution:     p.BallRestitution,
			BoardFriction:       p.BoardFriction,
			BoardRestitution:    p.BoardRestitution,
		},
		Camera: CameraConfig{
			Mode:        camera.ModeOrbit.String(),
			Yaw:         camera.DefaultYaw,
			Pitch:       camera.DefaultPitch,
			Radius:      camera.DefaultRadius,
			RotateSpeed: camera.DefaultRotateSpeed,
		},
		Render: RenderConfig{
			Fov:          frame.DefaultFov,
			Near:         frame.DefaultNear,
			Far:          frame.DefaultFar,
			Light:        frame.DefaultLight,
			Shadow:       true,
			ShadowOffset: frame.DefaultShadowOffset,
			Clear:        [3]float32{0.2, 0.5, 0.8},
			Material:     MaterialConfig{Kd: m.Kd, Ks: m.Ks, Shininess: m.Shininess, Le: m.Le, La: m.La},
		},
		Board: BoardConfig{
			Scale: 1,
			Maze: MazeConfig{
				Cells:          maze.Cells,
				CellSize:       maze.CellSize,
				WallHeight:     maze.WallHeight,
				FloorThickness: maze.FloorThickness,
				Exit:           maze.Exit,
			},
		},
		Assets: AssetsConfig{CacheDir: "assets/cache", MaxTextureSize: 1024, DownloadTimeout: 30 * time.Second},
		Log:    LogConfig{Path: "logs/maze.txt"},
		Debug:  DebugConfig{ShowFPS: true, ShowHUD: true},
	}
}

// LocalPath returns the overlay path for base: config/maze.yaml → config/maze.local.yaml.
func LocalPath(base string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".local" + ext
}

// Load reads path over Default(), then merges the optional local overlay (see LocalPath) whose
// non-zero fields win. A missing file is not an error; a malformed one is.
// The result is validated.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("config: %s: %w", path, err)
		}
	}

	local := LocalPath(path)
	data, err = os.ReadFile(local)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("config: %w", err)
	default:
		var overlay Config
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return Default(), fmt.Errorf("config: %s: %w", local, err)
		}
		if err := copier.CopyWithOption(&cfg, &overlay, copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
			return Default(), fmt.Errorf("config: merge %s: %w", local, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if !c.Window.Fullscreen && (c.Window.Width <= 0 || c.Window.Height <= 0) {
		errs = append(errs, fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Physics.StepHz <= 0 {
		errs = append(errs, fmt.Errorf("physics.step_hz %d", c.Physics.StepHz))
	}
	if c.Physics.MaxTiltDeg <= 0 || c.Physics.MaxTiltDeg >= 90 {
		errs = append(errs, fmt.Errorf("physics.max_tilt_deg %v outside (0, 90)", c.Physics.MaxTiltDeg))
	}
	if c.Physics.TiltRate <= 0 {
		errs = append(errs, fmt.Errorf("physics.tilt_rate %v", c.Physics.TiltRate))
	}
	if c.Render.Fov <= 0 || c.Render.Fov >= 180 {
		errs = append(errs, fmt.Errorf("render.fov %v outside (0, 180)", c.Render.Fov))
	}
	if c.Render.Near <= 0 || c.Render.Far <= c.Render.Near {
		errs = append(errs, fmt.Errorf("render near/far %v/%v", c.Render.Near, c.Render.Far))
	}
	if _, err := camera.ParseMode(c.Camera.Mode); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// PhysicsEngine converts the physics section for physics.NewEngine.
func (c Config) PhysicsEngine() physics.Config {
	p := c.Physics
	return physics.Config{
		TiltRate:            p.TiltRate,
		MaxTilt:             mgl32.DegToRad(p.MaxTiltDeg),
		Gravity:             p.Gravity,
		FixedStep:           1 / float32(p.StepHz),
		MaxSubSteps:         p.MaxSubSteps,
		Iterations:          p.Iterations,
		ResetThreshold:      p.ResetThreshold,
		StartHeight:         p.StartHeight,
		FloorPosition:       p.FloorPosition,
		BallRadius:          p.BallRadius,
		BallMass:            p.BallMass,
		BallFriction:        p.BallFriction,
		BallRollingFriction: p.BallRollingFriction,
		BallRestitution:     p.BallRestitution,
		BoardFriction:       p.BoardFriction,
		BoardRestitution:    p.BoardRestitution,
		BallDeactivation:    p.BallDeactivation,
	}
}

// FrameOptions converts the render section for frame.NewOrchestrator. boardTop is the height of
// the board's walking surface in board-local coordinates.
func (c Config) FrameOptions(boardTop float32) frame.Options {
	r := c.Render
	mat := frame.DefaultMaterial()
	mat.Kd, mat.Ks, mat.Shininess, mat.Le, mat.La = r.Material.Kd, r.Material.Ks, r.Material.Shininess, r.Material.Le, r.Material.La
	return frame.Options{
		FixedStep:    1 / float32(c.Physics.StepHz),
		Fov:          r.Fov,
		Near:         r.Near,
		Far:          r.Far,
		Light:        mgl32.Vec3(r.Light),
		Shadow:       r.Shadow,
		ShadowOffset: r.ShadowOffset,
		BoardTop:     boardTop,
		Material:     mat,
	}
}

// ClearColor returns the background as 8-bit RGBA.
func (c Config) ClearColor() color.RGBA {
	ch := func(v float32) uint8 {
		return uint8(math32.Round(mgl32.Clamp(v, 0, 1) * 255))
	}
	return color.RGBA{R: ch(c.Render.Clear[0]), G: ch(c.Render.Clear[1]), B: ch(c.Render.Clear[2]), A: 255}
}

// MazeOptions converts the maze section for mapgen.GenerateMaze.
func (c Config) MazeOptions() mapgen.MazeOptions {
	m := c.Board.Maze
	return mapgen.MazeOptions{
		Cells:          m.Cells,
		CellSize:       m.CellSize,
		WallHeight:     m.WallHeight,
		FloorThickness: m.FloorThickness,
		Seed:           m.Seed,
		Exit:           m.Exit,
	}
}

// CameraController builds the configured camera.
func (c Config) CameraController() (camera.Controller, error) {
	mode, err := camera.ParseMode(c.Camera.Mode)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	ctrl := camera.New(mode, c.Camera.Yaw, c.Camera.Pitch, c.Camera.Radius)
	if o, ok := ctrl.(*camera.Orbit); ok && c.Camera.RotateSpeed > 0 {
		o.RotateSpeed = c.Camera.RotateSpeed
	}
	return ctrl, nil
}

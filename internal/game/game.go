// Package game assembles one play session from a config: the board and ball assets, the physics
// engine, the input mapper, the camera, the frame orchestrator and the console commands.
// It does not touch the window; the host attaches a renderer and drives Tick.
package game

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"marble-maze/internal/camera"
	"marble-maze/internal/commands"
	"marble-maze/internal/config"
	"marble-maze/internal/download"
	"marble-maze/internal/frame"
	"marble-maze/internal/input"
	"marble-maze/internal/logger"
	"marble-maze/internal/mapgen"
	"marble-maze/internal/mesh"
	"marble-maze/internal/physics"
	"marble-maze/internal/texture"
)

// Checker colors for the default ball texture.
var (
	checkerA = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	checkerB = color.RGBA{R: 200, G: 40, B: 40, A: 255}
)

// Game is one session.
type Game struct {
	Engine       *physics.Engine
	Mapper       *input.Mapper
	Orchestrator *frame.Orchestrator
	Board        *mesh.Mesh
	BallTexture  *image.RGBA
	BallMesh     *mesh.Mesh // nil when the host should generate a sphere
	FontPath     string     // local font file, "" for the host default
	Commands     *commands.Registry

	cfg     config.Config
	cfgPath string
	log     *logger.Logger
}

// New loads assets and builds the session. cfgPath is where the save command writes the local
// overlay. The orchestrator has no renderer until the host calls Orchestrator.SetRenderer.
func New(ctx context.Context, cfg config.Config, cfgPath string, log *logger.Logger) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	board, surface, err := LoadBoard(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	tex, err := LoadBallTexture(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	ball, err := LoadBallModel(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	var font string
	if cfg.Assets.Font != "" {
		if font, err = fetch(ctx, cfg, cfg.Assets.Font); err != nil {
			return nil, fmt.Errorf("game: font: %w", err)
		}
	}

	collider, err := physics.NewTriangleMesh(board.Positions, mesh.PositionStride, board.Indices)
	if err != nil {
		return nil, fmt.Errorf("game: board collider: %w", err)
	}
	engine := physics.NewEngine(cfg.PhysicsEngine(), collider)
	cam, err := cfg.CameraController()
	if err != nil {
		return nil, err
	}

	g := &Game{
		Engine:       engine,
		Mapper:       input.NewMapper(engine),
		Orchestrator: frame.NewOrchestrator(engine, cam, nil, cfg.FrameOptions(surface)),
		Board:        board,
		BallTexture:  tex,
		BallMesh:     ball,
		FontPath:     font,
		Commands:     commands.NewRegistry(),
		cfg:          cfg,
		cfgPath:      cfgPath,
		log:          log,
	}
	g.registerCommands()
	log.Logf("board: %d triangles, camera %s, shadow %v", board.TriangleCount(), cfg.Camera.Mode, cfg.Render.Shadow)
	return g, nil
}

// Config returns the session settings, including changes made from the console.
func (g *Game) Config() config.Config {
	return g.cfg
}

// Orbit returns the orbit camera when it is the active one, for pointer dragging.
func (g *Game) Orbit() (*camera.Orbit, bool) {
	o, ok := g.Orchestrator.Camera().(*camera.Orbit)
	return o, ok
}

// Tick runs one frame.
func (g *Game) Tick() error {
	return g.Orchestrator.Tick()
}

// LoadBoard returns the board mesh and its floor height: the configured OBJ model (path or URL)
// when set, otherwise a generated maze with its floor top at y = 0.
func LoadBoard(ctx context.Context, cfg config.Config, log *logger.Logger) (*mesh.Mesh, float32, error) {
	if cfg.Board.Model == "" {
		b := mapgen.GenerateMaze(cfg.MazeOptions())
		cells := (len(b.Tiles) - 1) / 2
		log.Logf("board: generated %dx%d maze, seed %d", cells, cells, b.Seed)
		return b.Mesh, 0, nil
	}
	path, err := fetch(ctx, cfg, cfg.Board.Model)
	if err != nil {
		return nil, 0, fmt.Errorf("game: board: %w", err)
	}
	m, err := mesh.LoadOBJ(path, cfg.Board.Scale)
	if err != nil {
		return nil, 0, fmt.Errorf("game: board: %w", err)
	}
	log.Logf("board: loaded %s", path)
	return m, cfg.Board.Surface, nil
}

// LoadBallTexture returns the configured ball texture, or a checkerboard when none is set.
func LoadBallTexture(ctx context.Context, cfg config.Config, log *logger.Logger) (*image.RGBA, error) {
	if cfg.Assets.BallTexture == "" {
		return texture.Checker(cfg.Assets.MaxTextureSize/4, 8, checkerA, checkerB), nil
	}
	path, err := fetch(ctx, cfg, cfg.Assets.BallTexture)
	if err != nil {
		return nil, fmt.Errorf("game: ball texture: %w", err)
	}
	img, err := texture.Load(path, cfg.Assets.MaxTextureSize)
	if err != nil {
		return nil, fmt.Errorf("game: ball texture: %w", err)
	}
	log.Logf("texture: loaded %s (%dx%d)", path, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// LoadBallModel returns the configured ball OBJ centered on the origin and scaled so its largest
// half extent equals the physics ball radius, or nil when no model is set.
func LoadBallModel(ctx context.Context, cfg config.Config, log *logger.Logger) (*mesh.Mesh, error) {
	if cfg.Assets.BallModel == "" {
		return nil, nil
	}
	path, err := fetch(ctx, cfg, cfg.Assets.BallModel)
	if err != nil {
		return nil, fmt.Errorf("game: ball model: %w", err)
	}
	m, err := mesh.LoadOBJ(path, 1)
	if err != nil {
		return nil, fmt.Errorf("game: ball model: %w", err)
	}
	lo, hi := m.Bounds()
	var half float32
	for i := range lo {
		half = max(half, (hi[i]-lo[i])/2)
	}
	if half <= 0 {
		return nil, fmt.Errorf("game: ball model: %s is flat", path)
	}
	m.Translate(-(lo[0]+hi[0])/2, -(lo[1]+hi[1])/2, -(lo[2]+hi[2])/2)
	m.Scale(cfg.PhysicsEngine().BallRadius / half)
	log.Logf("ball: loaded %s (%d triangles)", path, m.TriangleCount())
	return m, nil
}

func fetch(ctx context.Context, cfg config.Config, ref string) (string, error) {
	if cfg.Assets.DownloadTimeout > 0 && download.IsURL(ref) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Assets.DownloadTimeout)
		defer cancel()
	}
	return download.Fetch(ctx, ref, cfg.Assets.CacheDir)
}

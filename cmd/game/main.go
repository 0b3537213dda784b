package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marble-maze/internal/config"
	"marble-maze/internal/debug"
	"marble-maze/internal/game"
	"marble-maze/internal/graphics"
	"marble-maze/internal/logger"
	"marble-maze/internal/scene"
	"marble-maze/internal/terminal"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Path)
	defer log.Close()
	log.Logf("marble-maze starting, config %s", cfgPath)

	g, err := game.New(ctx, cfg, cfgPath, log)
	if err != nil {
		log.Log(err.Error())
		return err
	}

	term := terminal.New(log, g.Commands)
	term.OnToggle = func(open bool) {
		if open {
			g.Mapper.Reset()
		}
	}
	dbg := debug.New(g.Engine)
	dbg.ShowFPS = cfg.Debug.ShowFPS
	dbg.ShowMemAlloc = cfg.Debug.ShowMemAlloc
	dbg.ShowHUD = cfg.Debug.ShowHUD

	var scn *scene.Scene
	var closeFont func()
	err = graphics.Run(ctx, graphics.Window{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		TargetFPS:  cfg.Window.TargetFPS,
	}, graphics.Hooks{
		Init: func() error {
			var err error
			scn, err = scene.New(scene.Options{
				Board:       g.Board,
				Ball:        g.BallMesh,
				BallRadius:  g.Engine.Config().BallRadius,
				BallTexture: g.BallTexture,
				Clear:       cfg.ClearColor(),
			})
			if err != nil {
				return err
			}
			g.Orchestrator.SetRenderer(scn)
			if g.FontPath != "" {
				font, err := graphics.LoadFont(g.FontPath)
				if err != nil {
					return err
				}
				term.SetFont(font)
				dbg.SetFont(font)
				closeFont = func() { graphics.UnloadFont(font) }
			}
			return nil
		},
		Update: func() error {
			term.Update()
			// Steering keys belong to the console while it is open.
			if !term.IsOpen() {
				g.Mapper.Poll(graphics.KeyDown)
				if o, ok := g.Orbit(); ok {
					graphics.PollPointer(o)
				}
			}
			g.Orchestrator.SetViewport(graphics.ScreenSize())
			return nil
		},
		Draw: func() error {
			if err := g.Tick(); err != nil {
				return err
			}
			dbg.Draw()
			term.Draw()
			return nil
		},
		Close: func() {
			if closeFont != nil {
				closeFont()
			}
			if scn != nil {
				scn.Close()
			}
		},
	})
	if err != nil {
		log.Log(err.Error())
		return err
	}
	log.Logf("marble-maze stopped after %d frames, %d resets", g.Orchestrator.Frames(), g.Engine.Resets())
	return nil
}

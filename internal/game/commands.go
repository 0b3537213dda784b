package game

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"marble-maze/internal/camera"
	"marble-maze/internal/config"
)

// optFloat is a float flag that remembers whether it was given. Its default is the empty
// string, which clears it.
type optFloat struct {
	v   float32
	set bool
}

func (o *optFloat) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.FormatFloat(float64(o.v), 'g', -1, 32)
}

func (o *optFloat) Set(s string) error {
	if s == "" {
		*o = optFloat{}
		return nil
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	o.v, o.set = float32(f), true
	return nil
}

func (o *optFloat) get() (float32, bool) {
	return o.v, o.set
}

func (g *Game) registerCommands() {
	g.registerMaterial()
	g.registerShadow()
	g.registerCamera()
	g.registerTilt()

	g.Commands.Register("reset", "put the ball back at the start", nil, func() error {
		g.Engine.ResetBall()
		g.log.Logf("reset: ball back at start (%d resets)", g.Engine.Resets())
		return nil
	})
	g.Commands.Register("save", "write the session settings to the local config", nil, func() error {
		path := config.LocalPath(g.cfgPath)
		if err := config.Save(path, g.cfg); err != nil {
			return err
		}
		g.log.Logf("save: wrote %s", path)
		return nil
	})
	g.Commands.Register("help", "list commands", nil, func() error {
		for _, line := range g.Commands.Help() {
			g.log.Log(line)
		}
		return nil
	})
}

func (g *Game) registerMaterial() {
	fs := flag.NewFlagSet("material", flag.ContinueOnError)
	var kd, ks, shininess, le, la optFloat
	fs.Var(&kd, "kd", "diffuse scale")
	fs.Var(&ks, "ks", "specular scale")
	fs.Var(&shininess, "shininess", "specular exponent")
	fs.Var(&le, "le", "light emission")
	fs.Var(&la, "la", "ambient light")
	g.Commands.Register("material", "set Phong material terms", fs, func() error {
		m := g.Orchestrator.Material()
		set := func(o *optFloat, dst *float32, lo float32) error {
			v, ok := o.get()
			if !ok {
				return nil
			}
			if v < lo {
				return fmt.Errorf("value %v below %v", v, lo)
			}
			*dst = v
			return nil
		}
		err := errors.Join(
			set(&kd, &m.Kd, 0),
			set(&ks, &m.Ks, 0),
			set(&shininess, &m.Shininess, 1),
			set(&le, &m.Le, 0),
			set(&la, &m.La, 0),
		)
		if err != nil {
			return err
		}
		g.Orchestrator.SetMaterial(m)
		g.cfg.Render.Material = config.MaterialConfig{Kd: m.Kd, Ks: m.Ks, Shininess: m.Shininess, Le: m.Le, La: m.La}
		g.log.Logf("material: kd %g ks %g shininess %g Le %g La %g", m.Kd, m.Ks, m.Shininess, m.Le, m.La)
		return nil
	})
}

func (g *Game) registerShadow() {
	fs := flag.NewFlagSet("shadow", flag.ContinueOnError)
	on := fs.Bool("on", false, "draw the ball shadow")
	off := fs.Bool("off", false, "hide the ball shadow")
	g.Commands.Register("shadow", "toggle the planar shadow", fs, func() error {
		switch {
		case *on && *off:
			return errors.New("pass --on or --off, not both")
		case *on:
			g.Orchestrator.SetShadow(true)
		case *off:
			g.Orchestrator.SetShadow(false)
		default:
			g.Orchestrator.SetShadow(!g.Orchestrator.Shadow())
		}
		g.cfg.Render.Shadow = g.Orchestrator.Shadow()
		g.log.Logf("shadow: %v", g.cfg.Render.Shadow)
		return nil
	})
}

func (g *Game) registerCamera() {
	fs := flag.NewFlagSet("camera", flag.ContinueOnError)
	mode := fs.String("mode", "", "orbit or tilt")
	g.Commands.Register("camera", "switch camera", fs, func() error {
		if *mode == "" {
			g.log.Logf("camera: %s", g.cfg.Camera.Mode)
			return nil
		}
		m, err := camera.ParseMode(*mode)
		if err != nil {
			return err
		}
		next := g.cfg
		next.Camera.Mode = m.String()
		ctrl, err := next.CameraController()
		if err != nil {
			return err
		}
		g.Orchestrator.SetCamera(ctrl)
		g.cfg = next
		g.log.Logf("camera: %s", m)
		return nil
	})
}

func (g *Game) registerTilt() {
	fs := flag.NewFlagSet("tilt", flag.ContinueOnError)
	var rate optFloat
	fs.Var(&rate, "rate", "tilt speed in rad/s at full input")
	g.Commands.Register("tilt", "set tilt speed", fs, func() error {
		r, ok := rate.get()
		if !ok {
			g.log.Logf("tilt: rate %g rad/s", g.Engine.Config().TiltRate)
			return nil
		}
		if r <= 0 {
			return fmt.Errorf("rate %v must be positive", r)
		}
		g.Engine.SetTiltRate(r)
		g.cfg.Physics.TiltRate = r
		g.log.Logf("tilt: rate %g rad/s", r)
		return nil
	})
}

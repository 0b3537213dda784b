package debug

import (
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"marble-maze/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh text every N frames to reduce allocations.
	updateInterval = 30
)

// Source is what the HUD reports on; *physics.Engine satisfies it.
type Source interface {
	BallPosition() [3]float32
	Tilt() physics.Tilt
	Resets() int
	Contacts() int
}

// Debug holds the overlays: FPS and heap at the top-right, the ball HUD at the top-left.
// All are off until enabled.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowHUD      bool

	src        Source
	font       rl.Font
	frameCount uint32
	fpsText    string
	memText    string
	hudText    []string
	memStats   runtime.MemStats
}

// New returns a Debug system reporting on src with all overlays hidden. src may be nil, which
// disables the HUD.
func New(src Source) *Debug {
	return &Debug{src: src}
}

// SetFont sets the font used by the overlays. Zero texture ID means the raylib default.
func (d *Debug) SetFont(font rl.Font) {
	d.font = font
}

// HUDLines formats ball position, tilt in degrees, the reset count and the live contact count.
func HUDLines(pos [3]float32, tilt physics.Tilt, resets, contacts int) []string {
	return []string{
		fmt.Sprintf("Ball: %.2f %.2f %.2f", pos[0], pos[1], pos[2]),
		fmt.Sprintf("Tilt: pitch %.1f deg roll %.1f deg", mgl32.RadToDeg(tilt.Pitch), mgl32.RadToDeg(tilt.Roll)),
		fmt.Sprintf("Resets: %d", resets),
		fmt.Sprintf("Contacts: %d", contacts),
	}
}

// Draw renders the enabled overlays. Call last in the draw loop.
func (d *Debug) Draw() {
	d.frameCount++
	update := d.frameCount%updateInterval == 0 ||
		(d.ShowFPS && d.fpsText == "") ||
		(d.ShowMemAlloc && d.memText == "") ||
		(d.ShowHUD && d.hudText == nil)

	screenW := float32(rl.GetScreenWidth())
	y := float32(padding)
	if d.ShowFPS {
		if update {
			d.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		d.right(d.fpsText, screenW, y)
		y += lineHeight
	}
	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.memStats)
			d.memText = fmt.Sprintf("Mem: %.2f MiB", float64(d.memStats.Alloc)/(1024*1024))
		}
		d.right(d.memText, screenW, y)
	}

	if d.ShowHUD && d.src != nil {
		if update || d.frameCount%(updateInterval/10) == 0 {
			d.hudText = HUDLines(d.src.BallPosition(), d.src.Tilt(), d.src.Resets(), d.src.Contacts())
		}
		for i, line := range d.hudText {
			d.text(line, padding, float32(padding+i*lineHeight), rl.RayWhite)
		}
	}
}

func (d *Debug) right(s string, screenW, y float32) {
	if s == "" {
		return
	}
	var w float32
	if d.font.Texture.ID != 0 {
		w = rl.MeasureTextEx(d.font, s, fontSize, 1).X
	} else {
		w = float32(rl.MeasureText(s, fontSize))
	}
	d.text(s, screenW-w-padding, y, rl.Green)
}

func (d *Debug) text(s string, x, y float32, c rl.Color) {
	if d.font.Texture.ID != 0 {
		rl.DrawTextEx(d.font, s, rl.NewVector2(x, y), fontSize, 1, c)
		return
	}
	rl.DrawText(s, int32(x), int32(y), fontSize, c)
}

package graphics

import (
	"context"
	"fmt"

	"marble-maze/internal/camera"
	"marble-maze/internal/input"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Window configures the host window.
type Window struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	TargetFPS  int
}

// Hooks are the per-frame callbacks. Init runs once after the window (and GL context) exists and
// Close once before it is destroyed; either may be nil.
type Hooks struct {
	Init   func() error
	Update func() error
	Draw   func() error
	Close  func()
}

// LoadFont loads a TTF/OTF font for the overlays. Call after the window exists.
func LoadFont(path string) (rl.Font, error) {
	f := rl.LoadFont(path)
	if f.Texture.ID == 0 {
		return f, fmt.Errorf("graphics: load font %s", path)
	}
	return f, nil
}

// UnloadFont frees a font from LoadFont.
func UnloadFont(f rl.Font) {
	if f.Texture.ID != 0 {
		rl.UnloadFont(f)
	}
}

// Run opens the window and drives the loop until the window is closed, ctx is cancelled or a hook
// fails. Each frame calls Update, then Draw between BeginDrawing and EndDrawing. ESC does not
// quit; it belongs to the terminal.
func Run(ctx context.Context, w Window, h Hooks) (err error) {
	if w.Fullscreen {
		rl.SetConfigFlags(rl.FlagFullscreenMode | rl.FlagMsaa4xHint)
		rl.InitWindow(int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0)), w.Title)
	} else {
		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
		rl.InitWindow(int32(w.Width), int32(w.Height), w.Title)
	}
	defer rl.CloseWindow()
	if !rl.IsWindowReady() {
		return fmt.Errorf("graphics: window init failed")
	}

	rl.SetExitKey(rl.KeyNull)
	if w.TargetFPS > 0 {
		rl.SetTargetFPS(int32(w.TargetFPS))
	}

	if h.Init != nil {
		if err := h.Init(); err != nil {
			return fmt.Errorf("graphics: init: %w", err)
		}
	}
	if h.Close != nil {
		defer h.Close()
	}

	for !rl.WindowShouldClose() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if h.Update != nil {
			if err := h.Update(); err != nil {
				return fmt.Errorf("graphics: update: %w", err)
			}
		}
		rl.BeginDrawing()
		if h.Draw != nil {
			err = h.Draw()
		}
		rl.EndDrawing()
		if err != nil {
			return fmt.Errorf("graphics: draw: %w", err)
		}
	}
	return nil
}

// ScreenSize returns the drawable size in pixels.
func ScreenSize() (width, height int) {
	return int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
}

// keyBindings maps each steering key to its arrow key and WASD alternative.
var keyBindings = map[input.Key][2]int32{
	input.KeyUp:    {rl.KeyUp, rl.KeyW},
	input.KeyDown:  {rl.KeyDown, rl.KeyS},
	input.KeyLeft:  {rl.KeyLeft, rl.KeyA},
	input.KeyRight: {rl.KeyRight, rl.KeyD},
}

// KeyDown reports whether a steering key is held. Pass it to input.Mapper.Poll.
func KeyDown(k input.Key) bool {
	b, ok := keyBindings[k]
	if !ok {
		return false
	}
	return rl.IsKeyDown(b[0]) || rl.IsKeyDown(b[1])
}

// Dragger is the pointer side of an orbit camera.
type Dragger interface {
	Press(x, y float32)
	Move(x, y float32)
	Release()
	Dragging() bool
}

var _ Dragger = (*camera.Orbit)(nil)

// PollPointer feeds left-button drags to d.
func PollPointer(d Dragger) {
	pos := rl.GetMousePosition()
	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		d.Press(pos.X, pos.Y)
	case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		d.Release()
	case d.Dragging():
		d.Move(pos.X, pos.Y)
	}
}

// Package screen contains the frontends that present the CHIP-8 framebuffer:
// a pixelgl window with keyboard input and a headless one for scripted runs.
package screen

import (
	"fmt"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"
)

const (
	DefaultTitle = "Chyp8"
	DefaultScale = 10
)

// Run hands the main thread to pixelgl and calls fn. Windows can only be
// created and updated from within fn.
func Run(fn func()) {
	pixelgl.Run(fn)
}

// Config holds the window settings.
type Config struct {
	Title  string
	Scale  float64
	VSync  bool
	KeyMap map[uint8]pixelgl.Button
}

type Window struct {
	*pixelgl.Window
	KeyMap map[uint8]pixelgl.Button

	imd   *imdraw.IMDraw
	scale float64
}

// NewWindow opens a window sized to the framebuffer times the scale.
func NewWindow(cfg Config) (*Window, error) {
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultScale
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.KeyMap == nil {
		cfg.KeyMap = DefaultKeyMap()
	}

	win, err := pixelgl.NewWindow(pixelgl.WindowConfig{
		Title:  cfg.Title,
		Bounds: pixel.R(0, 0, cpu.ScreenWidth*cfg.Scale, cpu.ScreenHeight*cfg.Scale),
		VSync:  cfg.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}
	win.Clear(colornames.Black)

	return &Window{
		Window: win,
		KeyMap: cfg.KeyMap,
		imd:    imdraw.New(nil),
		scale:  cfg.Scale,
	}, nil
}

// PollKeys reports keypad changes since the last window update. Escape
// closes the window.
func (w *Window) PollKeys(set func(key uint8, pressed bool)) {
	if w.JustPressed(pixelgl.KeyEscape) {
		w.SetClosed(true)
	}
	for key, button := range w.KeyMap {
		if w.JustPressed(button) {
			set(key, true)
		}
		if w.JustReleased(button) {
			set(key, false)
		}
	}
}

// Draw renders the frame, lit pixels white on black. pixel's origin is the
// bottom left corner so rows are flipped.
func (w *Window) Draw(frame cpu.Frame) error {
	w.imd.Clear()
	w.imd.Color = colornames.White

	for y := 0; y < cpu.ScreenHeight; y++ {
		top := float64(cpu.ScreenHeight-y) * w.scale
		for x := 0; x < cpu.ScreenWidth; x++ {
			if !frame.Pixel(x, y) {
				continue
			}
			left := float64(x) * w.scale
			w.imd.Push(pixel.V(left, top-w.scale), pixel.V(left+w.scale, top))
			w.imd.Rectangle(0)
		}
	}

	w.Clear(colornames.Black)
	w.imd.Draw(w)
	return nil
}

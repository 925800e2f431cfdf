package screen

import (
	"bufio"
	"io"

	"github.com/beanboi7/chyp8/emu/cpu"
)

// Headless is a frontend without a window. It keeps the last drawn frame so
// it can be rendered as text once the run ends.
type Headless struct {
	frames  int
	last    cpu.Frame
	closed  bool
	pending []KeyEvent
}

// KeyEvent is a scripted keypad change delivered on the next poll.
type KeyEvent struct {
	Key     uint8
	Pressed bool
}

func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) Closed() bool { return h.closed }

// Close makes the runner stop at the next frame.
func (h *Headless) Close() { h.closed = true }

// Queue schedules key events for the next PollKeys call.
func (h *Headless) Queue(events ...KeyEvent) {
	h.pending = append(h.pending, events...)
}

func (h *Headless) PollKeys(set func(key uint8, pressed bool)) {
	for _, event := range h.pending {
		set(event.Key, event.Pressed)
	}
	h.pending = h.pending[:0]
}

func (h *Headless) Draw(frame cpu.Frame) error {
	h.frames++
	h.last = frame
	return nil
}

func (h *Headless) Update() {}

// Frames returns the number of frames drawn.
func (h *Headless) Frames() int { return h.frames }

// LastFrame returns the most recently drawn frame.
func (h *Headless) LastFrame() cpu.Frame { return h.last }

// Render writes the last frame as text, '#' for a lit pixel and '.' otherwise.
func (h *Headless) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < cpu.ScreenHeight; y++ {
		for x := 0; x < cpu.ScreenWidth; x++ {
			c := byte('.')
			if h.last.Pixel(x, y) {
				c = '#'
			}
			_ = bw.WriteByte(c)
		}
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}

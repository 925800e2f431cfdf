package cpu

const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Frame is a snapshot of the framebuffer, one byte per pixel in row-major
// order. A pixel is either 0 (off) or 1 (on).
type Frame [ScreenWidth * ScreenHeight]uint8

// Pixel reports whether the pixel at (x, y) is set. Coordinates wrap.
func (f *Frame) Pixel(x, y int) bool {
	x = ((x % ScreenWidth) + ScreenWidth) % ScreenWidth
	y = ((y % ScreenHeight) + ScreenHeight) % ScreenHeight
	return f[y*ScreenWidth+x] != 0
}

// display is the 64x32 monochrome framebuffer. Pixels are only ever toggled
// by sprite draws or cleared all at once.
type display struct {
	pixels Frame
	dirty  bool
}

func (d *display) clear() {
	d.pixels = Frame{}
	d.dirty = true
}

// drawSprite XORs an 8-pixel wide sprite into the framebuffer at (x, y),
// wrapping both axes. It returns 1 if any set pixel was turned off.
func (d *display) drawSprite(x, y uint8, sprite []byte) uint8 {
	var collision uint8
	for row, line := range sprite {
		py := (int(y) + row) % ScreenHeight
		for bit := 0; bit < 8; bit++ {
			if line&(0x80>>bit) == 0 {
				continue
			}
			px := (int(x) + bit) % ScreenWidth
			idx := py*ScreenWidth + px
			if d.pixels[idx] == 1 {
				collision = 1
			}
			d.pixels[idx] ^= 1
		}
	}
	d.dirty = true
	return collision
}

// Frame returns a copy of the current framebuffer.
func (emu *EMU) Frame() Frame {
	return emu.display.pixels
}

// Dirty reports whether the framebuffer changed since the last ClearDirty.
func (emu *EMU) Dirty() bool {
	return emu.display.dirty
}

// ClearDirty is called by the renderer after it consumed a frame.
func (emu *EMU) ClearDirty() {
	emu.display.dirty = false
}

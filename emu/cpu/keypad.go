package cpu

import (
	"fmt"
	"sync/atomic"
)

// KeyCount is the number of keys on the hexadecimal keypad.
const KeyCount = 16

// keypad is the only machine state written from outside the execution path.
// Key events arrive from the host input goroutine while the engine reads the
// state during cycles, so every field is accessed atomically.
//
// While the engine waits for a key (FX0A) it arms the latch; the first press
// delivered afterwards is parked in latched (key id + 1, 0 = empty) until the
// engine takes it on its next cycle.
type keypad struct {
	state   atomic.Uint32
	waiting atomic.Bool
	latched atomic.Int32
}

func (k *keypad) set(key uint8, pressed bool) {
	bit := uint32(1) << key
	for {
		old := k.state.Load()
		next := old &^ bit
		if pressed {
			next = old | bit
		}
		if k.state.CompareAndSwap(old, next) {
			break
		}
	}

	if pressed && k.waiting.Load() {
		// first qualifying press wins
		k.latched.CompareAndSwap(0, int32(key)+1)
	}
}

func (k *keypad) pressed(key uint8) bool {
	return k.state.Load()&(1<<(key&0x0F)) != 0
}

func (k *keypad) arm() {
	k.latched.Store(0)
	k.waiting.Store(true)
}

func (k *keypad) take() (uint8, bool) {
	v := k.latched.Swap(0)
	if v == 0 {
		return 0, false
	}
	k.waiting.Store(false)
	return uint8(v - 1), true
}

func (k *keypad) reset() {
	k.state.Store(0)
	k.waiting.Store(false)
	k.latched.Store(0)
}

// SetKey records a key press or release. It is safe to call concurrently
// with Cycle. A press while the machine waits for a key (FX0A) resolves the
// wait on the next cycle.
func (emu *EMU) SetKey(key uint8, pressed bool) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: %X", ErrInvalidKey, key)
	}
	emu.keypad.set(key, pressed)
	return nil
}

// IsPressed reports whether the key is currently held down.
func (emu *EMU) IsPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	return emu.keypad.pressed(key)
}

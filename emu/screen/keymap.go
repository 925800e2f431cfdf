package screen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/faiface/pixel/pixelgl"
)

// DefaultKeyMap maps the hex keypad onto the left side of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
func DefaultKeyMap() map[uint8]pixelgl.Button {
	return map[uint8]pixelgl.Button{
		0x1: pixelgl.Key1, 0x2: pixelgl.Key2, 0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
		0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW, 0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
		0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS, 0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
		0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX, 0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
	}
}

var namedButtons = map[string]pixelgl.Button{
	"space": pixelgl.KeySpace,
	"enter": pixelgl.KeyEnter,
	"tab":   pixelgl.KeyTab,
	"up":    pixelgl.KeyUp,
	"down":  pixelgl.KeyDown,
	"left":  pixelgl.KeyLeft,
	"right": pixelgl.KeyRight,
}

// ButtonByName returns the button for a single letter or digit, or one of
// the named keys space, enter, tab, up, down, left and right.
func ButtonByName(name string) (pixelgl.Button, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= '0' && c <= '9':
			return pixelgl.Key0 + pixelgl.Button(c-'0'), nil
		case c >= 'a' && c <= 'z':
			return pixelgl.KeyA + pixelgl.Button(c-'a'), nil
		}
	}
	if button, ok := namedButtons[name]; ok {
		return button, nil
	}
	return 0, fmt.Errorf("unsupported key name %q", name)
}

// ParseKeyMap applies overrides to the default key map. Override keys are
// CHIP-8 keys in hex, values are button names accepted by ButtonByName.
func ParseKeyMap(overrides map[string]string) (map[uint8]pixelgl.Button, error) {
	keyMap := DefaultKeyMap()
	for hex, name := range overrides {
		key, err := strconv.ParseUint(hex, 16, 8)
		if err != nil || key >= cpu.KeyCount {
			return nil, fmt.Errorf("invalid keypad key %q: %w", hex, cpu.ErrInvalidKey)
		}
		button, err := ButtonByName(name)
		if err != nil {
			return nil, fmt.Errorf("keypad key %X: %w", key, err)
		}
		keyMap[uint8(key)] = button
	}
	return keyMap, nil
}

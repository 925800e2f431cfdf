// Package rom reads CHIP-8 program images from disk.
package rom

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/beanboi7/chyp8/emu/cpu"
)

var (
	ErrEmpty    = errors.New("rom is empty")
	ErrTooLarge = errors.New("rom too large")
)

// Load reads the program at path and checks that it fits the memory above
// cpu.ProgramStart.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("rom %q: %w", path, err)
	}
	return data, nil
}

// Validate checks the size of a program image.
func Validate(data []byte) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if len(data) > cpu.MaxROMSize {
		return fmt.Errorf("%w: %d bytes, can't cross %d bytes", ErrTooLarge, len(data), cpu.MaxROMSize)
	}
	return nil
}

// HexDump formats the program 8 bytes per row, each row prefixed with the
// memory address it is loaded at.
func HexDump(data []byte) string {
	var sb strings.Builder
	for offset := 0; offset < len(data); offset += 8 {
		end := offset + 8
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&sb, "%04X: % 02X\n", cpu.ProgramStart+offset, data[offset:end])
	}
	return sb.String()
}

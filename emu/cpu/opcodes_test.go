package cpu

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestRegisterOps(t *testing.T) {
	tests := []struct {
		name     string
		vx, vy   uint8
		opcode   uint16
		expected uint8
		vf       uint8
	}{
		{"ld", 1, 2, 0x8120, 2, 0},
		{"or", 0x0C, 0x03, 0x8121, 0x0F, 0},
		{"and", 0x0C, 0x06, 0x8122, 0x04, 0},
		{"xor", 0x0C, 0x06, 0x8123, 0x0A, 0},
		{"add with carry", 250, 10, 0x8124, 4, 1},
		{"add without carry", 250, 5, 0x8124, 255, 0},
		{"sub with borrow", 5, 10, 0x8125, 251, 0},
		{"sub without borrow", 10, 5, 0x8125, 5, 1},
		{"sub equal", 7, 7, 0x8125, 0, 1},
		{"shr", 0x05, 0, 0x8126, 0x02, 1},
		{"subn without borrow", 5, 10, 0x8127, 5, 1},
		{"subn with borrow", 10, 5, 0x8127, 251, 0},
		{"shl", 0x81, 0, 0x812E, 0x02, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu, _ := newTestEMU(t, tt.opcode)
			emu.v[1] = tt.vx
			emu.v[2] = tt.vy
			emu.v[0xF] = 0xAA

			runCycles(t, emu, 1)
			assert.Equal(t, tt.expected, emu.v[1])
			if tt.opcode&0x000F >= 4 {
				assert.Equal(t, tt.vf, emu.v[0xF])
			}
			assert.Equal(t, uint16(0x202), emu.PC())
		})
	}
}

func TestShiftVY(t *testing.T) {
	clock := &fakeClock{}
	emu, err := NewEMU(program(0x8126, 0x834E), &Settings{ShiftVY: true, Clock: clock.Now})
	assert.NoError(t, err)
	emu.v[1] = 0xFF
	emu.v[2] = 0x04
	emu.v[4] = 0x80

	runCycles(t, emu, 1)
	assert.Equal(t, uint8(0x02), emu.v[1])
	assert.Equal(t, uint8(0), emu.v[0xF])

	runCycles(t, emu, 1)
	assert.Equal(t, uint8(0x00), emu.v[3])
	assert.Equal(t, uint8(1), emu.v[0xF])
}

func TestImmediateOps(t *testing.T) {
	emu, _ := newTestEMU(t, 0x6AFE, 0x7A03, 0x7A01)
	emu.v[0xF] = 7

	runCycles(t, emu, 1)
	assert.Equal(t, uint8(0xFE), emu.v[0xA])

	runCycles(t, emu, 1)
	assert.Equal(t, uint8(0x01), emu.v[0xA])
	assert.Equal(t, uint8(7), emu.v[0xF]) // 7XNN never touches VF

	runCycles(t, emu, 1)
	assert.Equal(t, uint8(0x02), emu.v[0xA])
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy uint8
		skip   bool
	}{
		{"se imm taken", 0x3142, 0x42, 0, true},
		{"se imm not taken", 0x3142, 0x41, 0, false},
		{"sne imm taken", 0x4142, 0x41, 0, true},
		{"sne imm not taken", 0x4142, 0x42, 0, false},
		{"se reg taken", 0x5120, 9, 9, true},
		{"se reg not taken", 0x5120, 9, 8, false},
		{"sne reg taken", 0x9120, 9, 8, true},
		{"sne reg not taken", 0x9120, 9, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu, _ := newTestEMU(t, tt.opcode)
			emu.v[1] = tt.vx
			emu.v[2] = tt.vy

			runCycles(t, emu, 1)
			expected := uint16(0x202)
			if tt.skip {
				expected = 0x204
			}
			assert.Equal(t, expected, emu.PC())
		})
	}
}

func TestJumpCallReturn(t *testing.T) {
	emu, _ := newTestEMU(t,
		0x1206, // 200: JP 206
		0x0000, // 202
		0x00EE, // 204: RET
		0x2204, // 206: CALL 204
		0x6001, // 208: LD V0, 1
	)

	runCycles(t, emu, 1)
	assert.Equal(t, uint16(0x206), emu.PC())

	runCycles(t, emu, 1)
	assert.Equal(t, uint16(0x204), emu.PC())
	assert.Equal(t, 1, emu.StackDepth())

	runCycles(t, emu, 1)
	assert.Equal(t, uint16(0x208), emu.PC())
	assert.Equal(t, 0, emu.StackDepth())

	runCycles(t, emu, 1)
	assert.Equal(t, uint8(1), emu.v[0])
}

func TestJumpV0(t *testing.T) {
	emu, _ := newTestEMU(t, 0xB300)
	emu.v[0] = 0x10
	runCycles(t, emu, 1)
	assert.Equal(t, uint16(0x310), emu.PC())

	emu, _ = newTestEMU(t, 0xBFFF)
	emu.v[0] = 0x01
	err := emu.Cycle()
	assert.True(t, errors.Is(err, ErrMemoryOutOfRange))
	assert.Equal(t, uint16(0x200), emu.PC())
}

func TestReturnOnEmptyStack(t *testing.T) {
	emu, _ := newTestEMU(t, 0x00EE)

	err := emu.Cycle()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, Halted, emu.State())
	assert.Equal(t, uint16(0x200), emu.PC())
}

func TestStackOverflow(t *testing.T) {
	clock := &fakeClock{}
	emu, err := NewEMU(program(0x2200), &Settings{StackDepth: 3, Clock: clock.Now})
	assert.NoError(t, err)
	runCycles(t, emu, 3)
	assert.Equal(t, 3, emu.StackDepth())

	err = emu.Cycle()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, 3, emu.StackDepth())
}

func TestGrowableStack(t *testing.T) {
	emu, _ := newTestEMU(t, 0x2200)
	runCycles(t, emu, 100)
	assert.Equal(t, 100, emu.StackDepth())
}

func TestIndexOps(t *testing.T) {
	emu, _ := newTestEMU(t, 0xA123, 0xF31E, 0xF429)
	emu.v[3] = 0x10
	emu.v[4] = 0x0B

	runCycles(t, emu, 1)
	assert.Equal(t, uint16(0x123), emu.I())
	runCycles(t, emu, 1)
	assert.Equal(t, uint16(0x133), emu.I())
	runCycles(t, emu, 1)
	assert.Equal(t, uint16(0x0B*GlyphSize), emu.I())
}

func TestAddIOutOfRange(t *testing.T) {
	emu, _ := newTestEMU(t, 0xAFFF, 0xF01E)
	emu.v[0] = 1
	runCycles(t, emu, 1)

	err := emu.Cycle()
	assert.True(t, errors.Is(err, ErrMemoryOutOfRange))
	assert.Equal(t, uint16(0xFFF), emu.I())
}

func TestRandom(t *testing.T) {
	emu, _ := newTestEMU(t, 0xC10F, 0xC200)
	emu.v[2] = 0xFF
	runCycles(t, emu, 2)
	assert.True(t, emu.v[1] <= 0x0F)
	assert.Equal(t, uint8(0), emu.v[2])
}

func TestRandomSeeded(t *testing.T) {
	run := func() uint8 {
		clock := &fakeClock{}
		emu, err := NewEMU(program(0xC0FF), &Settings{Seed: 42, Clock: clock.Now})
		assert.NoError(t, err)
		runCycles(t, emu, 1)
		return emu.v[0]
	}
	assert.Equal(t, run(), run())
}

func TestTimerOps(t *testing.T) {
	emu, _ := newTestEMU(t, 0xF115, 0xF218, 0xF307)
	emu.v[1] = 0x20
	emu.v[2] = 0x05

	runCycles(t, emu, 3)
	assert.Equal(t, uint8(0x20), emu.DelayTimer())
	assert.Equal(t, uint8(0x05), emu.SoundTimer())
	assert.True(t, emu.SoundActive())
	assert.Equal(t, uint8(0x20), emu.v[3])
}

func TestBCD(t *testing.T) {
	emu, _ := newTestEMU(t, 0xA300, 0xF533)
	emu.v[5] = 254
	runCycles(t, emu, 2)

	for i, digit := range []uint8{2, 5, 4} {
		got, err := emu.ReadMemory(0x300 + uint16(i))
		assert.NoError(t, err)
		assert.Equal(t, digit, got)
	}
}

func TestBCDOutOfRange(t *testing.T) {
	emu, _ := newTestEMU(t, 0xAFFE, 0xF533)
	emu.v[5] = 123
	runCycles(t, emu, 1)

	err := emu.Cycle()
	assert.True(t, errors.Is(err, ErrMemoryOutOfRange))
	got, _ := emu.ReadMemory(0xFFE)
	assert.Equal(t, uint8(0), got)
}

func TestStoreLoadRegisters(t *testing.T) {
	emu, _ := newTestEMU(t, 0xA400, 0xF355, 0xA400, 0xF265)
	emu.v = [RegisterCount]uint8{1, 2, 3, 4, 5}

	runCycles(t, emu, 2)
	assert.Equal(t, uint16(0x404), emu.I())
	for i := uint16(0); i < 4; i++ {
		got, _ := emu.ReadMemory(0x400 + i)
		assert.Equal(t, uint8(i+1), got)
	}

	emu.v = [RegisterCount]uint8{}
	runCycles(t, emu, 2)
	assert.Equal(t, uint16(0x403), emu.I())
	assert.Equal(t, [RegisterCount]uint8{1, 2, 3}, emu.v)
}

func TestLoadRegistersOutOfRange(t *testing.T) {
	emu, _ := newTestEMU(t, 0xAFFD, 0xF365)
	runCycles(t, emu, 1)

	err := emu.Cycle()
	assert.True(t, errors.Is(err, ErrMemoryOutOfRange))
	assert.Equal(t, uint16(0xFFD), emu.I())
	assert.Equal(t, uint16(0x202), emu.PC())
}

func TestClearScreen(t *testing.T) {
	emu, _ := newTestEMU(t, 0xD005, 0x00E0)
	runCycles(t, emu, 1)
	emu.ClearDirty()
	assert.True(t, emu.Frame() != Frame{})

	runCycles(t, emu, 1)
	assert.Equal(t, Frame{}, emu.Frame())
	assert.True(t, emu.Dirty())
}

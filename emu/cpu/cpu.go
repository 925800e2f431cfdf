// Package cpu implements the CHIP-8 virtual machine: memory, registers, call
// stack, timers, keypad, framebuffer and the fetch-decode-execute cycle.
package cpu

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	MemorySize      = 4096
	MaxAddress      = MemorySize - 1
	ProgramStart    = 0x200
	MaxROMSize      = MemorySize - ProgramStart
	RegisterCount   = 16
	InstructionSize = 2
)

// State is the execution state of the machine.
type State uint8

const (
	Running State = iota
	WaitingForKey
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case WaitingForKey:
		return "waiting for key"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Settings holds the configuration parameters for an EMU instance.
type Settings struct {
	// StackDepth bounds the call stack. 0 lets the stack grow without limit,
	// otherwise a call beyond the depth halts with ErrStackOverflow.
	StackDepth int
	// Seed for the CXNN random generator. 0 picks a random seed.
	Seed uint64
	// ShiftVY makes 8XY6 and 8XYE shift VY into VX instead of shifting VX.
	ShiftVY bool
	// TimerInterval between timer decrements. Defaults to 60 Hz.
	TimerInterval time.Duration
	// Clock returns the current time for the timer cadence. Defaults to time.Now.
	Clock func() time.Time
	// Tracer, when set, receives a debug entry for every executed instruction.
	Tracer *log.Logger
}

// DefaultSettings use a growable stack and the standard 60 Hz timers.
var DefaultSettings = &Settings{
	TimerInterval: TimerInterval,
}

// Validate returns an error when the settings aren't valid.
func (s *Settings) Validate() error {
	if s.StackDepth < 0 {
		return fmt.Errorf("stack depth must be >= 0, got %d", s.StackDepth)
	}
	if s.TimerInterval < 0 {
		return fmt.Errorf("timer interval must be >= 0, got %v", s.TimerInterval)
	}
	return nil
}

// EMU holds the complete state of one CHIP-8 machine. It is owned by a single
// driver goroutine; only SetKey may be called from another goroutine.
type EMU struct {
	memory     [MemorySize]uint8
	v          [RegisterCount]uint8
	i          uint16 //address register
	pc         uint16
	stack      []uint16
	display    display
	delayTimer uint8 //counts down at 60Hz
	soundTimer uint8 //same as above
	keypad     keypad

	state   State
	waitReg uint8
	fault   *Fault
	cycles  uint64

	rom             []byte
	settings        Settings
	rng             *rand.Rand
	lastTimerUpdate time.Time
}

// NewEMU creates a machine with the font table and the given program loaded.
// If settings is nil, DefaultSettings will be used.
func NewEMU(rom []byte, settings *Settings) (*EMU, error) {
	if settings == nil {
		settings = DefaultSettings
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s := *settings
	if s.TimerInterval == 0 {
		s.TimerInterval = TimerInterval
	}
	if s.Clock == nil {
		s.Clock = time.Now
	}
	seed := s.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	emu := &EMU{
		settings: s,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
	if err := emu.LoadROM(rom); err != nil {
		return nil, err
	}
	return emu, nil
}

// LoadROM resets the machine and loads a program at ProgramStart.
func (emu *EMU) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, can't cross %d bytes", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	emu.rom = append([]byte(nil), rom...)
	emu.Reset()
	return nil
}

// Reset restores the state right after construction: memory zeroed except
// for the font table and the program, PC at ProgramStart, empty stack,
// cleared screen and timers.
func (emu *EMU) Reset() {
	emu.memory = [MemorySize]uint8{}
	emu.loadFont()
	copy(emu.memory[ProgramStart:], emu.rom)

	emu.v = [RegisterCount]uint8{}
	emu.i = 0
	emu.pc = ProgramStart
	emu.stack = emu.stack[:0]
	emu.display = display{}
	emu.delayTimer = 0
	emu.soundTimer = 0
	emu.keypad.reset()

	emu.state = Running
	emu.waitReg = 0
	emu.fault = nil
	emu.cycles = 0
	emu.lastTimerUpdate = emu.settings.Clock()
}

// Cycle processes one machine cycle: timers are brought up to date, then one
// instruction is fetched, decoded and executed. While the machine waits for a
// key the cycle does nothing else. Once a fault was returned the machine is
// halted and every further call returns the same fault.
func (emu *EMU) Cycle() error {
	if emu.state == Halted {
		return emu.fault
	}
	emu.cycles++
	emu.updateTimers(emu.settings.Clock())

	if emu.state == WaitingForKey {
		key, ok := emu.keypad.take()
		if !ok {
			return nil
		}
		emu.v[emu.waitReg] = key
		emu.state = Running
	}

	if int(emu.pc)+InstructionSize > MemorySize {
		return emu.halt(0, outOfRange(emu.pc, InstructionSize))
	}
	ins := Instruction(uint16(emu.memory[emu.pc])<<8 | uint16(emu.memory[emu.pc+1]))

	if tracer := emu.settings.Tracer; tracer != nil {
		tracer.Debug("Executing instruction",
			log.Hex("pc", emu.pc),
			log.Hex("opcode", uint16(ins)),
			log.String("instruction", ins.Mnemonic()))
	}

	if err := emu.execute(ins); err != nil {
		return emu.halt(ins, err)
	}
	return nil
}

func (emu *EMU) halt(ins Instruction, err error) error {
	emu.state = Halted
	emu.fault = &Fault{
		Err:    err,
		Opcode: uint16(ins),
		PC:     emu.pc,
		Cycle:  emu.cycles,
	}
	return emu.fault
}

// ReadMemory returns the byte at addr.
func (emu *EMU) ReadMemory(addr uint16) (uint8, error) {
	if addr > MaxAddress {
		return 0, outOfRange(addr, 1)
	}
	return emu.memory[addr], nil
}

// checkRange verifies that length bytes starting at addr are addressable.
func checkRange(addr uint16, length int) error {
	if int(addr)+length > MemorySize {
		return outOfRange(addr, length)
	}
	return nil
}

func (emu *EMU) push(addr uint16) error {
	if depth := emu.settings.StackDepth; depth > 0 && len(emu.stack) >= depth {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, depth)
	}
	emu.stack = append(emu.stack, addr)
	return nil
}

func (emu *EMU) pop() (uint16, error) {
	if len(emu.stack) == 0 {
		return 0, ErrStackUnderflow
	}
	addr := emu.stack[len(emu.stack)-1]
	emu.stack = emu.stack[:len(emu.stack)-1]
	return addr, nil
}

func (emu *EMU) PC() uint16                      { return emu.pc }
func (emu *EMU) I() uint16                       { return emu.i }
func (emu *EMU) Registers() [RegisterCount]uint8 { return emu.v }
func (emu *EMU) StackDepth() int                 { return len(emu.stack) }
func (emu *EMU) Cycles() uint64                  { return emu.cycles }
func (emu *EMU) State() State                    { return emu.state }

// Fault returns the fault that halted the machine, or nil.
func (emu *EMU) Fault() error {
	if emu.fault == nil {
		return nil
	}
	return emu.fault
}

// String returns formatted information about the machine state.
func (emu *EMU) String() string {
	return fmt.Sprintf("EMU{Registers: [% 02X] I: %04X, Stack: % 04X, PC: %04X, "+
		"DT: %02X, ST: %02X, Keys: %016b, State: %v, Cycle: %d}",
		emu.v, emu.i, emu.stack, emu.pc, emu.delayTimer, emu.soundTimer,
		emu.keypad.state.Load(), emu.state, emu.cycles)
}

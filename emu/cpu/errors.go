package cpu

import (
	"errors"
	"fmt"
)

// Faults that halt the machine. A halted machine reports them wrapped in a *Fault.
var (
	ErrUnknownOpcode    = errors.New("unknown opcode")
	ErrMemoryOutOfRange = errors.New("memory access out of range")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrStackOverflow    = errors.New("stack overflow")
)

// Construction and input errors. These never halt a running machine.
var (
	ErrROMTooLarge = errors.New("rom too large")
	ErrInvalidKey  = errors.New("invalid key")
)

// A Fault is returned by Cycle when the machine halts. It records the
// instruction that failed, the address it was fetched from and the number
// of cycles processed so far.
type Fault struct {
	Err    error
	Opcode uint16
	PC     uint16
	Cycle  uint64
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v (opcode: %04X, pc: %04X, cycle: %d)", f.Err, f.Opcode, f.PC, f.Cycle)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Kind returns the sentinel error that classifies the fault.
func (f *Fault) Kind() error {
	for _, kind := range []error{ErrUnknownOpcode, ErrMemoryOutOfRange, ErrStackUnderflow, ErrStackOverflow} {
		if errors.Is(f.Err, kind) {
			return kind
		}
	}
	return f.Err
}

func outOfRange(addr uint16, length int) error {
	return fmt.Errorf("%w: %04X+%d", ErrMemoryOutOfRange, addr, length)
}

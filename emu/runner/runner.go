// Package runner drives a CHIP-8 machine at a fixed clock rate and presents
// its framebuffer, keypad and buzzer through a frontend.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beanboi7/chyp8/emu/audio"
	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/retroenv/retrogolib/log"
)

const (
	DefaultClockHz   = 600
	DefaultRefreshHz = 60
)

// Machine is the part of the VM the runner drives. *cpu.EMU implements it.
type Machine interface {
	Cycle() error
	SetKey(key uint8, pressed bool) error
	Frame() cpu.Frame
	Dirty() bool
	ClearDirty()
	SoundActive() bool
}

// Frontend presents frames and delivers key events.
type Frontend interface {
	Closed() bool
	PollKeys(set func(key uint8, pressed bool))
	Draw(frame cpu.Frame) error
	Update()
}

// Options for a Runner.
type Options struct {
	// ClockHz is the number of instructions executed per second.
	ClockHz int
	// RefreshHz is the number of frames presented per second.
	RefreshHz int
	// MaxFrames stops the run after that many frames, 0 runs until the
	// frontend closes or the context is cancelled.
	MaxFrames int
}

func (o Options) validate() error {
	if o.ClockHz <= 0 {
		return fmt.Errorf("clock must be positive, got %d Hz", o.ClockHz)
	}
	if o.RefreshHz <= 0 {
		return fmt.Errorf("refresh rate must be positive, got %d Hz", o.RefreshHz)
	}
	if o.ClockHz < o.RefreshHz {
		return fmt.Errorf("clock %d Hz is below the refresh rate %d Hz", o.ClockHz, o.RefreshHz)
	}
	if o.MaxFrames < 0 {
		return fmt.Errorf("max frames must be >= 0, got %d", o.MaxFrames)
	}
	return nil
}

type Runner struct {
	logger   *log.Logger
	machine  Machine
	frontend Frontend
	tone     audio.Tone
	opts     Options

	cyclesPerFrame int
	frames         int
}

// New returns a runner for the machine. A nil tone plays nothing.
func New(logger *log.Logger, machine Machine, frontend Frontend, tone audio.Tone, opts Options) (*Runner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if tone == nil {
		tone = audio.Silent{}
	}
	return &Runner{
		logger:         logger,
		machine:        machine,
		frontend:       frontend,
		tone:           tone,
		opts:           opts,
		cyclesPerFrame: opts.ClockHz / opts.RefreshHz,
	}, nil
}

// Frames returns the number of frames stepped so far.
func (r *Runner) Frames() int { return r.frames }

// Step runs one frame worth of cycles. Pending key events are delivered
// first and the frame is drawn only when the framebuffer changed.
func (r *Runner) Step() error {
	r.frontend.PollKeys(r.setKey)

	var cycleErr error
	for range r.cyclesPerFrame {
		if cycleErr = r.machine.Cycle(); cycleErr != nil {
			break
		}
	}

	if r.machine.Dirty() {
		if err := r.frontend.Draw(r.machine.Frame()); err != nil {
			return fmt.Errorf("drawing frame: %w", err)
		}
		r.machine.ClearDirty()
	}
	r.tone.SetTone(cycleErr == nil && r.machine.SoundActive())
	r.frontend.Update()
	r.frames++

	return cycleErr
}

func (r *Runner) setKey(key uint8, pressed bool) {
	if err := r.machine.SetKey(key, pressed); err != nil {
		r.logger.Warn("Ignoring key event", log.Uint8("key", key), log.Err(err))
	}
}

// Run steps frames at the refresh rate until the context is cancelled, the
// frontend is closed, the frame limit is reached or the machine halts. A halt
// is returned as the *cpu.Fault describing it.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.opts.RefreshHz))
	defer ticker.Stop()
	defer r.tone.SetTone(false)

	r.logger.Debug("Starting machine",
		log.Int("clock_hz", r.opts.ClockHz),
		log.Int("refresh_hz", r.opts.RefreshHz),
		log.Int("cycles_per_frame", r.cyclesPerFrame))

	for {
		if r.frontend.Closed() {
			r.logger.Info("Window closed")
			return nil
		}
		if r.opts.MaxFrames > 0 && r.frames >= r.opts.MaxFrames {
			r.logger.Debug("Frame limit reached", log.Int("frames", r.frames))
			return nil
		}

		if err := r.Step(); err != nil {
			var fault *cpu.Fault
			if errors.As(err, &fault) {
				r.logger.Error("Machine halted",
					log.Err(fault.Kind()),
					log.Hex("opcode", fault.Opcode),
					log.Hex("pc", fault.PC),
					log.Int("cycle", int(fault.Cycle)))
			}
			return err
		}

		select {
		case <-ctx.Done():
			r.logger.Info("Operation cancelled")
			return nil
		case <-ticker.C:
		}
	}
}

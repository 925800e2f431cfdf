package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/beanboi7/chyp8/emu/audio"
	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/rom"
	"github.com/beanboi7/chyp8/emu/runner"
	"github.com/beanboi7/chyp8/emu/screen"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var startCmd = &cobra.Command{
	Use:   "start path/ROM",
	Short: "load and start the Emulator",
	Example: "  chyp8 start roms/PONG -r 60\n" +
		"  chyp8 start roms/IBM --frontend headless --max-frames 120",
	Args: cobra.ExactArgs(1),
	RunE: Start,
}

func init() {
	flags := startCmd.Flags()
	flags.IntP("refresh", "r", runner.DefaultRefreshHz, "sets the refresh rate of the display")
	flags.Int("clock", runner.DefaultClockHz, "instructions executed per second")
	flags.Float64("scale", screen.DefaultScale, "window pixels per CHIP-8 pixel")
	flags.Uint64("seed", 0, "seed for the random number generator, 0 picks one")
	flags.Int("stack-depth", 0, "maximum call depth, 0 lets the stack grow")
	flags.String("frontend", frontendWindow, "frontend to use: window or headless")
	flags.Int("max-frames", 0, "stop after that many frames, 0 runs until closed")
	flags.Bool("mute", false, "disable the buzzer")
	flags.Bool("trace", false, "log every executed instruction")
	flags.Bool("shift-vy", false, "8XY6 and 8XYE shift VY into VX")

	for _, name := range []string{"refresh", "clock", "scale", "seed", "stack-depth",
		"frontend", "max-frames", "mute", "trace", "shift-vy"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}
}

// Start loads the ROM and runs it until the frontend is closed, the process
// is interrupted or the machine halts.
//
// chyp8 start 'path/to/ROM' -r 60
func Start(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger := createLogger(cfg.Debug, cfg.Quiet)

	romPath := args[0]
	data, err := rom.Load(romPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded ROM", log.String("path", romPath), log.Int("size", len(data)))
	logger.Debug("ROM contents\n" + rom.HexDump(data))

	emu, err := newEMU(data, cfg)
	if err != nil {
		return fmt.Errorf("starting the emulator: %w", err)
	}

	// cancelled on Ctrl+C
	ctx := app.Context()

	if cfg.Frontend == frontendHeadless {
		return runHeadless(ctx, logger, emu, cfg, cmd.OutOrStdout())
	}
	return runWindow(ctx, logger, emu, cfg, "Chyp8 - "+filepath.Base(romPath))
}

func newEMU(data []byte, cfg *Config) (*cpu.EMU, error) {
	settings := &cpu.Settings{
		StackDepth: cfg.StackDepth,
		Seed:       cfg.Seed,
		ShiftVY:    cfg.ShiftVY,
	}
	if cfg.Trace {
		// the trace is logged at debug level regardless of --quiet
		settings.Tracer = createLogger(true, false)
	}
	return cpu.NewEMU(data, settings)
}

func runWindow(ctx context.Context, logger *log.Logger, emu *cpu.EMU, cfg *Config, title string) error {
	keyMap, err := screen.ParseKeyMap(cfg.KeyMap)
	if err != nil {
		return err
	}

	var runErr error
	screen.Run(func() {
		win, err := screen.NewWindow(screen.Config{
			Title:  title,
			Scale:  cfg.Scale,
			VSync:  true,
			KeyMap: keyMap,
		})
		if err != nil {
			runErr = err
			return
		}
		defer win.Destroy()

		runErr = run(ctx, logger, emu, win, newTone(logger, cfg.Mute), cfg)
	})
	return runErr
}

// runHeadless runs without window and audio and writes the last frame to out.
func runHeadless(ctx context.Context, logger *log.Logger, emu *cpu.EMU, cfg *Config, out io.Writer) error {
	frontend := screen.NewHeadless()
	runErr := run(ctx, logger, emu, frontend, audio.Silent{}, cfg)

	if err := frontend.Render(out); err != nil {
		return errors.Join(runErr, fmt.Errorf("rendering frame: %w", err))
	}
	return runErr
}

func run(ctx context.Context, logger *log.Logger, emu *cpu.EMU, frontend runner.Frontend, tone audio.Tone, cfg *Config) error {
	r, err := runner.New(logger, emu, frontend, tone, cfg.runnerOptions())
	if err != nil {
		return err
	}

	err = r.Run(ctx)
	var fault *cpu.Fault
	if errors.As(err, &fault) {
		logger.Debug("Machine state at halt", log.Stringer("emu", emu))
		return fmt.Errorf("emulation halted: %w", err)
	}
	return err
}

func newTone(logger *log.Logger, mute bool) audio.Tone {
	if mute {
		return audio.Silent{}
	}
	beeper, err := audio.NewBeeper(audio.DefaultSampleRate, audio.DefaultFrequency)
	if err != nil {
		logger.Warn("Audio unavailable, continuing muted", log.Err(err))
		return audio.Silent{}
	}
	return beeper
}

package cmd

import (
	"fmt"

	"github.com/beanboi7/chyp8/emu/runner"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/viper"
)

const (
	frontendWindow   = "window"
	frontendHeadless = "headless"
)

// Config is the resolved configuration of a start run, merged from flags,
// the config file and CHYP8_ environment variables.
type Config struct {
	Clock      int
	Refresh    int
	Scale      float64
	Seed       uint64
	StackDepth int
	Frontend   string
	MaxFrames  int
	Mute       bool
	Trace      bool
	ShiftVY    bool
	Debug      bool
	Quiet      bool
	KeyMap     map[string]string
}

func loadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Clock:      v.GetInt("clock"),
		Refresh:    v.GetInt("refresh"),
		Scale:      v.GetFloat64("scale"),
		Seed:       v.GetUint64("seed"),
		StackDepth: v.GetInt("stack-depth"),
		Frontend:   v.GetString("frontend"),
		MaxFrames:  v.GetInt("max-frames"),
		Mute:       v.GetBool("mute"),
		Trace:      v.GetBool("trace"),
		ShiftVY:    v.GetBool("shift-vy"),
		Debug:      v.GetBool("debug"),
		Quiet:      v.GetBool("quiet"),
		KeyMap:     v.GetStringMapString("keymap"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that can't be handled by the components.
func (c *Config) Validate() error {
	switch {
	case c.Clock <= 0:
		return fmt.Errorf("clock must be positive, got %d", c.Clock)
	case c.Refresh <= 0:
		return fmt.Errorf("refresh rate must be positive, got %d", c.Refresh)
	case c.Clock < c.Refresh:
		return fmt.Errorf("clock %d can't be below the refresh rate %d", c.Clock, c.Refresh)
	case c.Scale <= 0:
		return fmt.Errorf("scale must be positive, got %v", c.Scale)
	case c.StackDepth < 0:
		return fmt.Errorf("stack depth must be >= 0, got %d", c.StackDepth)
	case c.MaxFrames < 0:
		return fmt.Errorf("max frames must be >= 0, got %d", c.MaxFrames)
	case c.Debug && c.Quiet:
		return fmt.Errorf("debug and quiet can't be combined")
	}

	switch c.Frontend {
	case frontendWindow, frontendHeadless:
	default:
		return fmt.Errorf("unsupported frontend %q", c.Frontend)
	}
	return nil
}

func (c *Config) runnerOptions() runner.Options {
	return runner.Options{
		ClockHz:   c.Clock,
		RefreshHz: c.Refresh,
		MaxFrames: c.MaxFrames,
	}
}

// createLogger returns a logger honoring the debug and quiet settings.
func createLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/viper"
)

func testViper() *viper.Viper {
	v := viper.New()
	v.Set("clock", 600)
	v.Set("refresh", 60)
	v.Set("scale", 10)
	v.Set("frontend", frontendHeadless)
	return v
}

func TestLoadConfig(t *testing.T) {
	v := testViper()
	v.Set("seed", 42)
	v.Set("stack-depth", 16)
	v.Set("shift-vy", true)
	v.Set("keymap", map[string]string{"5": "up"})

	cfg, err := loadConfig(v)
	assert.NoError(t, err)
	assert.Equal(t, 600, cfg.Clock)
	assert.Equal(t, 60, cfg.Refresh)
	assert.Equal(t, 10.0, cfg.Scale)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 16, cfg.StackDepth)
	assert.True(t, cfg.ShiftVY)
	assert.Equal(t, "up", cfg.KeyMap["5"])

	opts := cfg.runnerOptions()
	assert.Equal(t, 600, opts.ClockHz)
	assert.Equal(t, 60, opts.RefreshHz)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr string
	}{
		{"zero clock", "clock", 0, "clock must be positive"},
		{"zero refresh", "refresh", 0, "refresh rate must be positive"},
		{"clock below refresh", "clock", 30, "below the refresh rate"},
		{"negative scale", "scale", -1, "scale must be positive"},
		{"negative stack depth", "stack-depth", -1, "stack depth"},
		{"negative frame limit", "max-frames", -5, "max frames"},
		{"unknown frontend", "frontend", "terminal", "unsupported frontend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testViper()
			v.Set(tt.key, tt.value)
			_, err := loadConfig(v)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfigDebugAndQuiet(t *testing.T) {
	v := testViper()
	v.Set("debug", true)
	v.Set("quiet", true)
	_, err := loadConfig(v)
	assert.ErrorContains(t, err, "debug and quiet")
}

func TestRunHeadless(t *testing.T) {
	// LD I, 0 / DRW V0, V0, 5 / JP 204
	program := []byte{0xA0, 0x00, 0xD0, 0x05, 0x12, 0x04}
	v := testViper()
	v.Set("clock", 1000)
	v.Set("refresh", 1000)
	v.Set("max-frames", 4)
	v.Set("seed", 1)
	cfg, err := loadConfig(v)
	assert.NoError(t, err)

	emu, err := newEMU(program, cfg)
	assert.NoError(t, err)

	var out bytes.Buffer
	assert.NoError(t, runHeadless(context.Background(), log.NewTestLogger(t), emu, cfg, &out))

	lines := strings.Split(out.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "####."))
	assert.True(t, strings.HasPrefix(lines[1], "#..#."))
}

func TestRunHeadlessFault(t *testing.T) {
	// RET on an empty stack
	program := []byte{0x00, 0xEE}
	cfg, err := loadConfig(testViper())
	assert.NoError(t, err)

	emu, err := newEMU(program, cfg)
	assert.NoError(t, err)

	var out bytes.Buffer
	err = runHeadless(context.Background(), log.NewTestLogger(t), emu, cfg, &out)
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
	assert.ErrorContains(t, err, "emulation halted")
	assert.Equal(t, cpu.ScreenHeight*(cpu.ScreenWidth+1), out.Len())
}

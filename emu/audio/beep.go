// Package audio plays the CHIP-8 buzzer tone while the sound timer is active.
package audio

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)
	DefaultFrequency  = 440.0
	volume            = 0.25
)

// Tone switches the buzzer on and off.
type Tone interface {
	SetTone(on bool)
}

// Beeper plays a square wave through the speaker while the tone is on.
type Beeper struct {
	ctrl *beep.Ctrl
	on   bool
}

// NewBeeper initializes the speaker and starts a paused square wave stream.
func NewBeeper(sampleRate beep.SampleRate, frequency float64) (*Beeper, error) {
	if frequency <= 0 || float64(sampleRate) < 2*frequency {
		return nil, fmt.Errorf("invalid tone frequency %v for sample rate %v", frequency, sampleRate)
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}

	b := &Beeper{
		ctrl: &beep.Ctrl{Streamer: NewSquareWave(sampleRate, frequency), Paused: true},
	}
	speaker.Play(b.ctrl)
	return b, nil
}

// SetTone starts or pauses the tone. Calls that don't change the state
// don't touch the speaker.
func (b *Beeper) SetTone(on bool) {
	if on == b.on {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = !on
	speaker.Unlock()
	b.on = on
}

// Silent is the Tone used when audio is muted or unavailable.
type Silent struct{}

func (Silent) SetTone(bool) {}

// SquareWave is an endless square wave streamer.
type SquareWave struct {
	step  float64
	phase float64
}

// NewSquareWave returns a square wave of the given frequency.
func NewSquareWave(sampleRate beep.SampleRate, frequency float64) *SquareWave {
	return &SquareWave{step: frequency / float64(sampleRate)}
}

func (s *SquareWave) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		value := volume
		if s.phase >= 0.5 {
			value = -volume
		}
		samples[i][0] = value
		samples[i][1] = value

		s.phase += s.step
		if s.phase >= 1 {
			s.phase--
		}
	}
	return len(samples), true
}

func (s *SquareWave) Err() error { return nil }

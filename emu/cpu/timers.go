package cpu

import "time"

// TimerInterval is the delay and sound timer period (60 Hz).
const TimerInterval = time.Second / 60

// updateTimers decrements DT and ST once for every full timer interval that
// elapsed since the last update. The cadence is driven by the clock, not by
// the number of executed instructions.
func (emu *EMU) updateTimers(now time.Time) {
	interval := emu.settings.TimerInterval
	elapsed := now.Sub(emu.lastTimerUpdate)
	if elapsed < interval {
		return
	}

	ticks := elapsed / interval
	emu.lastTimerUpdate = emu.lastTimerUpdate.Add(ticks * interval)
	emu.delayTimer = countDown(emu.delayTimer, ticks)
	emu.soundTimer = countDown(emu.soundTimer, ticks)
}

func countDown(timer uint8, ticks time.Duration) uint8 {
	if time.Duration(timer) <= ticks {
		return 0
	}
	return timer - uint8(ticks)
}

// DelayTimer returns the current value of DT.
func (emu *EMU) DelayTimer() uint8 { return emu.delayTimer }

// SoundTimer returns the current value of ST.
func (emu *EMU) SoundTimer() uint8 { return emu.soundTimer }

// SoundActive reports whether a tone should be playing (ST > 0).
func (emu *EMU) SoundActive() bool { return emu.soundTimer > 0 }

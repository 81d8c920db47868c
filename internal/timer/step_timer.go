package timer

import (
	"math"
	"time"
)

// Clock is the read side of a frame timer.
type Clock interface {
	// TotalSeconds is the cumulative simulated time.
	TotalSeconds() float64
	// FrameCount is the number of ticks that ran an update.
	FrameCount() uint64
}

// maxDelta clamps long pauses (debugger, window drag) to a single step.
const maxDelta = 100 * time.Millisecond

// StepTimer drives per-frame updates in either variable or fixed timestep
// mode. It is not safe for concurrent use; tick it from the render loop.
type StepTimer struct {
	now  func() time.Time
	last time.Time

	total   time.Duration
	elapsed time.Duration
	frames  uint64

	fixed     bool
	target    time.Duration
	leftover  time.Duration
	fpsFrames int
	fpsWindow time.Duration
	fps       int
}

// NewStepTimer returns a variable-timestep timer at a 60Hz default target.
func NewStepTimer() *StepTimer {
	return NewStepTimerWithClock(time.Now)
}

// NewStepTimerWithClock uses now as the time source.
func NewStepTimerWithClock(now func() time.Time) *StepTimer {
	return &StepTimer{
		now:    now,
		last:   now(),
		target: time.Second / 60,
	}
}

// SetFixedTimeStep switches between fixed and variable timestep modes.
func (t *StepTimer) SetFixedTimeStep(fixed bool) { t.fixed = fixed }

// SetTargetElapsedSeconds sets the fixed-mode step length.
func (t *StepTimer) SetTargetElapsedSeconds(seconds float64) {
	if seconds <= 0 {
		return
	}
	t.target = time.Duration(seconds * float64(time.Second))
}

// ResetElapsedTime discards time accumulated since the last tick, e.g. after
// a blocking resource load.
func (t *StepTimer) ResetElapsedTime() {
	t.last = t.now()
	t.leftover = 0
	t.fpsFrames = 0
	t.fpsWindow = 0
}

func (t *StepTimer) TotalSeconds() float64   { return t.total.Seconds() }
func (t *StepTimer) ElapsedSeconds() float64 { return t.elapsed.Seconds() }
func (t *StepTimer) FrameCount() uint64      { return t.frames }

// FramesPerSecond is the tick rate measured over the last full second.
func (t *StepTimer) FramesPerSecond() int { return t.fps }

// Tick advances the timer and calls update once per step that ran. In
// variable mode that is once per call; in fixed mode it is as many whole
// steps as fit in the time since the previous call.
func (t *StepTimer) Tick(update func()) {
	now := t.now()
	delta := now.Sub(t.last)
	t.last = now
	if delta < 0 {
		delta = 0
	}
	if delta > maxDelta {
		delta = maxDelta
	}

	t.fpsWindow += delta
	t.fpsFrames++
	if t.fpsWindow >= time.Second {
		t.fps = int(math.Round(float64(t.fpsFrames) / t.fpsWindow.Seconds()))
		t.fpsFrames = 0
		t.fpsWindow %= time.Second
	}

	if t.fixed {
		// Snap deltas within a quarter millisecond of the target so vsync
		// jitter does not accumulate into skipped or doubled steps.
		if diff := delta - t.target; diff > -250*time.Microsecond && diff < 250*time.Microsecond {
			delta = t.target
		}
		t.leftover += delta
		for t.leftover >= t.target {
			t.elapsed = t.target
			t.total += t.target
			t.leftover -= t.target
			t.frames++
			if update != nil {
				update()
			}
		}
		return
	}

	t.elapsed = delta
	t.total += delta
	t.frames++
	if update != nil {
		update()
	}
}

package timer

import (
	"time"

	"mygrid/internal/config"
)

const (
	// idleFPS caps the loop while the window is minimized.
	idleFPS = 30
	// spinMargin is left to a yield loop instead of a sleep, which tends to
	// overshoot by about that much.
	spinMargin = 200 * time.Microsecond
)

// FPSLimiter paces the render loop against a StepTimer.
//
// The frame interval is the longest of the configured FPS cap, the idle cap
// and, when the timer runs fixed steps, the step length. A fixed-step timer
// is then ticked once per step interval, and its snapping absorbs the wake-up
// jitter so every frame runs exactly one update.
type FPSLimiter struct {
	timer *StepTimer
	now   func() time.Time
	sleep func(time.Duration)

	deadline time.Time
}

// NewFPSLimiter paces frames for st. st may be nil to honor only the caps.
func NewFPSLimiter(st *StepTimer) *FPSLimiter {
	return newFPSLimiter(st, time.Now, time.Sleep)
}

func newFPSLimiter(st *StepTimer, now func() time.Time, sleep func(time.Duration)) *FPSLimiter {
	return &FPSLimiter{timer: st, now: now, sleep: sleep}
}

// Interval is the minimum frame time; 0 means unlimited.
func (f *FPSLimiter) Interval(idle bool) time.Duration {
	var interval time.Duration
	if limit := config.GetFPSLimit(); limit > 0 {
		interval = time.Second / time.Duration(limit)
	}
	if idle {
		interval = max(interval, time.Second/idleFPS)
	}
	if f.timer != nil && f.timer.fixed {
		interval = max(interval, f.timer.target)
	}
	return interval
}

// Wait blocks until the current frame's interval has passed. Deadlines
// advance from the previous one so short oversleeps do not add up; a frame
// that overruns by more than an interval restarts the schedule from now.
func (f *FPSLimiter) Wait(idle bool) {
	interval := f.Interval(idle)
	if interval <= 0 {
		f.deadline = time.Time{}
		return
	}

	now := f.now()
	if f.deadline.IsZero() || now.Sub(f.deadline) > interval {
		f.deadline = now.Add(interval)
	} else {
		f.deadline = f.deadline.Add(interval)
	}

	for remaining := f.deadline.Sub(now); remaining > 0; remaining = f.deadline.Sub(f.now()) {
		if remaining > spinMargin {
			f.sleep(remaining - spinMargin)
		} else {
			f.sleep(0)
		}
	}
}

package timer

import (
	"testing"
	"time"

	"mygrid/internal/config"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestVariableTick(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	st := NewStepTimerWithClock(clock.now)

	calls := 0
	clock.advance(20 * time.Millisecond)
	st.Tick(func() { calls++ })
	clock.advance(30 * time.Millisecond)
	st.Tick(func() { calls++ })

	assert.Equal(t, 2, calls)
	assert.Equal(t, uint64(2), st.FrameCount())
	assert.InDelta(t, 0.05, st.TotalSeconds(), 1e-9)
	assert.InDelta(t, 0.03, st.ElapsedSeconds(), 1e-9)
}

func TestTickClampsLongPauses(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	st := NewStepTimerWithClock(clock.now)

	clock.advance(5 * time.Second)
	st.Tick(nil)
	assert.InDelta(t, maxDelta.Seconds(), st.TotalSeconds(), 1e-9)
}

func TestFixedTick(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	st := NewStepTimerWithClock(clock.now)
	st.SetFixedTimeStep(true)
	st.SetTargetElapsedSeconds(0.01)

	calls := 0
	clock.advance(35 * time.Millisecond)
	st.Tick(func() { calls++ })
	assert.Equal(t, 3, calls)
	assert.Equal(t, uint64(3), st.FrameCount())

	// The 5ms remainder plus 5ms more makes one more step.
	clock.advance(5 * time.Millisecond)
	st.Tick(func() { calls++ })
	assert.Equal(t, 4, calls)
	assert.InDelta(t, 0.04, st.TotalSeconds(), 1e-9)
}

func TestNoFramesBeforeTick(t *testing.T) {
	st := NewStepTimer()
	assert.Equal(t, uint64(0), st.FrameCount())
	assert.Zero(t, st.TotalSeconds())
}

func TestFramesPerSecond(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	st := NewStepTimerWithClock(clock.now)
	for i := 0; i < 50; i++ {
		clock.advance(20 * time.Millisecond)
		st.Tick(nil)
	}
	assert.Equal(t, 50, st.FramesPerSecond())
}

func withFPSLimit(t *testing.T, limit int) {
	t.Helper()
	prev := config.GetFPSLimit()
	config.SetFPSLimit(limit)
	t.Cleanup(func() { config.SetFPSLimit(prev) })
}

// sleep advances the clock by d plus overshoot; a zero sleep is a short spin.
func (c *fakeClock) sleep(overshoot time.Duration) func(time.Duration) {
	return func(d time.Duration) {
		if d == 0 {
			c.advance(10 * time.Microsecond)
			return
		}
		c.advance(d + overshoot)
	}
}

func TestLimiterUnlimitedReturnsImmediately(t *testing.T) {
	withFPSLimit(t, 0)
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := newFPSLimiter(nil, clock.now, func(time.Duration) { t.Fatal("unexpected sleep") })

	l.Wait(false)
	assert.Equal(t, time.Unix(0, 0), clock.t)
	assert.Zero(t, l.Interval(false))
}

func TestLimiterInterval(t *testing.T) {
	fixed := NewStepTimer()
	fixed.SetFixedTimeStep(true)
	fixed.SetTargetElapsedSeconds(0.02)

	for _, tc := range []struct {
		name  string
		limit int
		idle  bool
		timer *StepTimer
		want  time.Duration
	}{
		{"capped", 100, false, nil, 10 * time.Millisecond},
		{"idle unlimited", 0, true, nil, time.Second / idleFPS},
		{"idle below cap", 10, true, nil, 100 * time.Millisecond},
		{"variable step", 1000, false, NewStepTimer(), time.Millisecond},
		{"fixed step slower than cap", 1000, false, fixed, 20 * time.Millisecond},
		{"fixed step unlimited", 0, false, fixed, 20 * time.Millisecond},
		{"cap slower than fixed step", 25, false, fixed, 40 * time.Millisecond},
	} {
		withFPSLimit(t, tc.limit)
		l := NewFPSLimiter(tc.timer)
		assert.Equal(t, tc.want, l.Interval(tc.idle), tc.name)
	}
}

func TestLimiterPacesFrames(t *testing.T) {
	withFPSLimit(t, 100)
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := newFPSLimiter(nil, clock.now, clock.sleep(0))

	for i := 0; i < 3; i++ {
		l.Wait(false)
	}
	assert.Equal(t, 30*time.Millisecond, clock.t.Sub(time.Unix(0, 0)))

	// Work inside the frame shortens the wait.
	start := clock.t
	clock.advance(4 * time.Millisecond)
	l.Wait(false)
	assert.Equal(t, 10*time.Millisecond, clock.t.Sub(start))
}

func TestLimiterRestartsAfterHitch(t *testing.T) {
	withFPSLimit(t, 100)
	clock := &fakeClock{t: time.Unix(0, 0)}
	l := newFPSLimiter(nil, clock.now, clock.sleep(0))

	l.Wait(false)
	clock.advance(50 * time.Millisecond)
	start := clock.t
	l.Wait(false)
	assert.Equal(t, 10*time.Millisecond, clock.t.Sub(start))
}

func TestLimiterRunsOneFixedStepPerFrame(t *testing.T) {
	withFPSLimit(t, 0)
	clock := &fakeClock{t: time.Unix(0, 0)}
	st := NewStepTimerWithClock(clock.now)
	st.SetFixedTimeStep(true)
	st.SetTargetElapsedSeconds(1.0 / 60)
	// Sleeps overshoot past the spin margin, so wake-ups land late.
	l := newFPSLimiter(st, clock.now, clock.sleep(300*time.Microsecond))

	st.Tick(nil)
	for i := 0; i < 120; i++ {
		clock.advance(3 * time.Millisecond)
		l.Wait(false)

		steps := 0
		st.Tick(func() { steps++ })
		assert.Equal(t, 1, steps, "frame %d", i)
	}
	assert.Equal(t, uint64(120), st.FrameCount())
}

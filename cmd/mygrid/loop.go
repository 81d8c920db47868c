package main

import (
	"time"

	"mygrid/internal/logging"
	"mygrid/internal/profiling"
	"mygrid/internal/timer"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// slowFrame is the frame time above which the heaviest sections are logged.
const slowFrame = time.Second / 30

// FrameLoop drives one frame per iteration on the render thread.
type FrameLoop struct {
	app        *App
	fpsLimiter *timer.FPSLimiter

	frames           int
	lastFPSCheckTime time.Time
}

func NewFrameLoop(a *App) *FrameLoop {
	return &FrameLoop{
		app:              a,
		fpsLimiter:       timer.NewFPSLimiter(a.renderer.Timer()),
		lastFPSCheckTime: time.Now(),
	}
}

// Run loops until the window is asked to close.
func (l *FrameLoop) Run() {
	for !l.app.res.Window.ShouldClose() {
		l.tick()
	}
}

func (l *FrameLoop) tick() {
	profiling.ResetFrame()
	start := time.Now()

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	// Background resource creation waits on this.
	l.app.res.Drain()
	l.reloadShaders()

	if err := l.app.renderer.Update(); err != nil {
		logging.Logger().Error("mygrid: grid unavailable until the next device reset", "err", err)
	}
	if l.app.renderer.Render() {
		l.app.res.Present()
	}

	l.logTiming(start)
	l.fpsLimiter.Wait(l.app.res.Minimized())
}

// reloadShaders runs a device-lost/restored cycle after the shader files
// change.
func (l *FrameLoop) reloadShaders() {
	if l.app.watcher == nil {
		return
	}
	select {
	case <-l.app.watcher.Changed():
		func() { defer profiling.Track("gpu.HandleDeviceLost")(); l.app.res.HandleDeviceLost() }()
	default:
	}
}

func (l *FrameLoop) logTiming(start time.Time) {
	l.frames++
	if time.Since(l.lastFPSCheckTime) >= time.Second {
		logging.Logger().Debug("mygrid: fps", "frames", l.frames,
			"updates", l.app.renderer.Timer().FramesPerSecond(),
			"lines", l.app.renderer.Grid().VisibleLines())
		l.frames = 0
		l.lastFPSCheckTime = time.Now()
	}

	if d := time.Since(start); d > slowFrame {
		logging.Logger().Warn("mygrid: slow frame",
			"ms", float64(d.Microseconds())/1000,
			"top", profiling.TopN(3),
			"gpu", profiling.SumWithPrefix("gpu.").String())
	}
}

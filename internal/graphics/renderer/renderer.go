package renderer

import (
	"errors"

	"mygrid/internal/gpu"
	"mygrid/internal/graphics"
	"mygrid/internal/graphics/renderables/grid"
	"mygrid/internal/logging"
	"mygrid/internal/profiling"
	"mygrid/internal/timer"
)

// Resources are the device and presentation objects the renderer draws with.
type Resources struct {
	Device   gpu.Device
	Context  gpu.Context
	Surface  gpu.Surface
	Notifier *gpu.Notifier
	Shaders  graphics.ShaderLoader
}

// Config configures the frame.
type Config struct {
	Grid       grid.Config
	Background [4]float32
	// FixedStep, when positive, runs updates at a fixed rate of that many
	// seconds per step.
	FixedStep float64
}

// DefaultBackground is opaque white.
var DefaultBackground = [4]float32{1, 1, 1, 1}

// Renderer orchestrates a frame: it ticks the timer, updates and draws its
// renderables, and forwards window and device events to them.
type Renderer struct {
	surface     gpu.Surface
	timer       *timer.StepTimer
	grid        *grid.Grid
	renderables []Renderable
	background  [4]float32
	unregister  func()
}

// NewRenderer creates the grid and registers for device notifications.
func NewRenderer(res Resources, cfg Config) *Renderer {
	return newRenderer(res, cfg, timer.NewStepTimer())
}

func newRenderer(res Resources, cfg Config, t *timer.StepTimer) *Renderer {
	if cfg.FixedStep > 0 {
		t.SetFixedTimeStep(true)
		t.SetTargetElapsedSeconds(cfg.FixedStep)
	}
	g := grid.New(grid.Deps{
		Device:  res.Device,
		Context: res.Context,
		Surface: res.Surface,
		Shaders: res.Shaders,
	}, cfg.Grid)

	r := &Renderer{
		surface:     res.Surface,
		timer:       t,
		grid:        g,
		renderables: []Renderable{g},
		background:  cfg.Background,
	}
	r.unregister = res.Notifier.Register(r)
	return r
}

// Grid returns the grid renderable.
func (r *Renderer) Grid() *grid.Grid {
	return r.grid
}

// Timer returns the frame timer.
func (r *Renderer) Timer() *timer.StepTimer {
	return r.timer
}

// CreateWindowSizeDependentResources recomputes everything that depends on
// the output size or orientation.
func (r *Renderer) CreateWindowSizeDependentResources() {
	for _, renderable := range r.renderables {
		renderable.CreateWindowSizeDependentResources()
	}
}

// Update advances the timer, updating the renderables once per step. It
// returns a device resource creation failure once, the first time it is
// observed. Superseded creations are not failures.
func (r *Renderer) Update() error {
	defer profiling.Track("frame.Update")()

	r.timer.Tick(func() {
		for _, renderable := range r.renderables {
			renderable.Update(r.timer)
		}
	})

	var errs []error
	for _, renderable := range r.renderables {
		select {
		case err := <-renderable.Loading():
			if err != nil && !errors.Is(err, gpu.ErrStaleGeneration) {
				errs = append(errs, err)
			}
		default:
		}
	}
	return errors.Join(errs...)
}

// Render draws the frame. It returns false, drawing nothing, until the
// timer has ticked at least once.
func (r *Renderer) Render() bool {
	if r.timer.FrameCount() == 0 {
		return false
	}
	defer profiling.Track("frame.Render")()

	r.surface.BindRenderTargets()
	r.surface.ClearRenderTarget(r.background)
	r.surface.ClearDepthStencil(1.0, 0)

	for _, renderable := range r.renderables {
		renderable.Render()
	}
	return true
}

// OnDeviceLost releases every device-dependent resource.
func (r *Renderer) OnDeviceLost() {
	logging.Logger().Warn("renderer: device lost, releasing resources")
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].ReleaseDeviceDependentResources()
	}
}

// OnDeviceRestored rebuilds device-dependent then window-size resources.
func (r *Renderer) OnDeviceRestored() {
	logging.Logger().Info("renderer: device restored, recreating resources")
	for _, renderable := range r.renderables {
		renderable.CreateDeviceDependentResources()
	}
	r.CreateWindowSizeDependentResources()
}

// Close unregisters from device notifications and releases resources in
// reverse order.
func (r *Renderer) Close() {
	r.unregister()
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].ReleaseDeviceDependentResources()
	}
}

package main

import (
	"fmt"
	"sync"
	"time"

	"mygrid/internal/config"
	"mygrid/internal/graphics"
	"mygrid/internal/graphics/renderables/grid"
	renderer "mygrid/internal/graphics/renderer"
	"mygrid/internal/logging"
	"mygrid/internal/platform"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// shaderSettle is how long the shader directory must be quiet before a
// reload.
const shaderSettle = 150 * time.Millisecond

// App holds the initialized components.
type App struct {
	res      *platform.DeviceResources
	renderer *renderer.Renderer
	watcher  *platform.ShaderWatcher // nil unless shaders.watch is set
}

func setupApp(cfg config.Config) (*App, error) {
	rotation, err := platform.ParseRotation(cfg.Display.Rotation)
	if err != nil {
		return nil, err
	}
	background, err := config.ParseColor(cfg.Display.Background)
	if err != nil {
		return nil, err
	}

	res, err := platform.NewDeviceResources(cfg.Window, rotation)
	if err != nil {
		return nil, err
	}

	shaders := graphics.NewShaderFiles(cfg.Shaders.Dir, cfg.Shaders.Vertex, cfg.Shaders.Geometry, cfg.Shaders.Pixel)
	r := renderer.NewRenderer(renderer.Resources{
		Device:   res.Device,
		Context:  res.Context,
		Surface:  res,
		Notifier: &res.Notifier,
		Shaders:  shaders,
	}, renderer.Config{
		Grid:       gridConfig(cfg.Grid),
		Background: background,
		FixedStep:  cfg.FixedTimeStep,
	})

	a := &App{res: res, renderer: r}
	if cfg.Shaders.Watch {
		a.watcher, err = platform.WatchShaders(shaders.Dir(), shaderSettle)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("watch shaders: %w", err)
		}
		logging.Logger().Info("mygrid: watching shaders", "dir", shaders.Dir())
	}

	res.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		logging.Logger().Debug("mygrid: framebuffer resized", "width", width, "height", height)
		r.CreateWindowSizeDependentResources()
	})
	return a, nil
}

func gridConfig(g config.GridConfig) grid.Config {
	return grid.Config{
		Orientation:          mgl32.DegToRad(float32(g.OrientationDeg)),
		RevolutionsPerMinute: g.RevolutionsPerMinute,
		Size:                 g.Size,
		Segments:             g.Segments,
		ThinLine:             g.ThinLine,
		ThickLine:            g.ThickLine,
	}
}

// Close tears everything down. Render thread only.
func (a *App) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			logging.Logger().Warn("mygrid: closing shader watcher", "err", err)
		}
	}
	a.renderer.Close()
	a.res.Close()
}

// shutdown lets a signal handler stop the render loop and wait for the
// render thread to finish teardown.
type shutdown struct {
	mu     sync.Mutex
	window *glfw.Window // nil once torn down
	done   chan struct{}
}

func newShutdown(window *glfw.Window) *shutdown {
	return &shutdown{window: window, done: make(chan struct{})}
}

func (s *shutdown) request() {
	s.mu.Lock()
	if s.window != nil {
		s.window.SetShouldClose(true)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *shutdown) finish(teardown func()) {
	s.mu.Lock()
	s.window = nil
	teardown()
	s.mu.Unlock()
	close(s.done)
}

package grid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"mygrid/internal/gpu"
	"mygrid/internal/graphics"
	"mygrid/internal/logging"
	"mygrid/internal/profiling"
	"mygrid/internal/timer"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// Config holds the grid constants. It is fixed for the lifetime of a Grid.
type Config struct {
	Orientation          float32 // radians added to the rotation angle
	RevolutionsPerMinute float64
	Size                 float32 // world units along each axis
	Segments             int     // positive multiple of 2*MajorEvery
	ThinLine             float32
	ThickLine            float32
}

// DefaultConfig returns a 20×20 grid with 200 divisions at 15 rpm.
func DefaultConfig() Config {
	return Config{
		Orientation:          math.Pi / 4,
		RevolutionsPerMinute: 15,
		Size:                 20,
		Segments:             200,
		ThinLine:             3,
		ThickLine:            6,
	}
}

// Deps are the collaborators a Grid renders through.
type Deps struct {
	Device  gpu.Device
	Context gpu.Context
	Surface gpu.Surface
	Shaders graphics.ShaderLoader
}

var inputElements = []gpu.InputElement{
	{Semantic: "POSITION", Index: 0, Format: gpu.FormatR32G32B32A32Float, Slot: 0, Offset: 0},
}

// deviceResources are the handles owned by one successful creation.
type deviceResources struct {
	vertexShader   gpu.Shader
	geometryShader gpu.Shader
	pixelShader    gpu.Shader
	inputLayout    gpu.InputLayout

	vertexBuffer gpu.Buffer
	vertexCount  uint32

	blendState     gpu.BlendState
	constantBuffer gpu.Buffer

	// uploaded is set by the first Update after commit; the constant buffer
	// holds nothing drawable before that.
	uploaded bool
}

func (r *deviceResources) release(d gpu.Device) {
	for _, h := range []gpu.Resource{
		r.inputLayout,
		r.vertexShader,
		r.geometryShader,
		r.pixelShader,
		r.vertexBuffer,
		r.blendState,
		r.constantBuffer,
	} {
		if h != nil {
			d.Release(h)
		}
	}
}

// Grid draws the rotating reference grid.
//
// Update and Render run on the render thread. Device-dependent creation runs
// on a background goroutine; until it commits, Update and Render do nothing,
// and Render keeps doing nothing until the next Update.
type Grid struct {
	cfg     Config
	device  gpu.Device
	ctx     gpu.Context
	surface gpu.Surface
	shaders graphics.ShaderLoader
	camera  *graphics.Camera

	constants FrameConstants

	mu         sync.Mutex
	res        *deviceResources // nil until ready
	generation uint64
	vertices   []Vertex
	loading    <-chan error
}

// New creates the grid and starts building its resources. It panics if
// cfg.Segments is not a positive multiple of 2*MajorEvery.
func New(deps Deps, cfg Config) *Grid {
	if !ValidSegments(cfg.Segments) {
		panic(fmt.Sprintf("grid: segment count %d is not a positive multiple of %d", cfg.Segments, 2*MajorEvery))
	}
	g := &Grid{
		cfg:     cfg,
		device:  deps.Device,
		ctx:     deps.Context,
		surface: deps.Surface,
		shaders: deps.Shaders,
		camera:  graphics.NewCamera(),
	}
	g.CreateDeviceDependentResources()
	g.CreateWindowSizeDependentResources()
	return g
}

// Ready reports whether every device resource exists.
func (g *Grid) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.res != nil
}

// Loading returns the result channel of the most recent creation.
func (g *Grid) Loading() <-chan error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}

// Vertices returns a copy of the vertices of the committed vertex buffer,
// or nil while no buffer is committed.
func (g *Grid) Vertices() []Vertex {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.vertices == nil {
		return nil
	}
	return append([]Vertex(nil), g.vertices...)
}

// VisibleLines counts the lines the geometry stage keeps for the current
// frame constants.
func (g *Grid) VisibleLines() int {
	g.mu.Lock()
	vertices := g.vertices
	g.mu.Unlock()
	c := g.constants
	return VisibleLines(vertices, c.Projection.Mul4(c.View).Mul4(c.Model))
}

// Constants returns the current frame constants.
func (g *Grid) Constants() FrameConstants {
	return g.constants
}

func (g *Grid) resources() *deviceResources {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.res
}

// CreateDeviceDependentResources loads the three shader stages concurrently,
// then builds the vertex buffer, blend state and constant buffer. It returns
// at once; the channel yields nil once the grid is ready, or an error
// wrapping gpu.ErrDeviceResources. A creation overtaken by a release or a
// newer creation discards its work and reports gpu.ErrStaleGeneration.
func (g *Grid) CreateDeviceDependentResources() <-chan error {
	done := make(chan error, 1)

	g.mu.Lock()
	g.generation++
	gen := g.generation
	g.loading = done
	g.mu.Unlock()

	go func() {
		err := g.createDeviceResources(gen)
		switch {
		case err == nil:
			logging.Logger().Info("grid: device resources ready", "generation", gen)
		case errors.Is(err, gpu.ErrStaleGeneration):
			logging.Logger().Debug("grid: discarded stale device resources", "generation", gen)
		default:
			logging.Logger().Error("grid: device resource creation failed", "generation", gen, "err", err)
		}
		done <- err
		close(done)
	}()
	return done
}

func (g *Grid) createDeviceResources(gen uint64) error {
	res := &deviceResources{}

	eg, ctx := errgroup.WithContext(context.Background())
	eg.Go(func() error {
		blob, err := g.shaders.Load(ctx, gpu.StageVertex)
		if err != nil {
			return err
		}
		if res.vertexShader, err = g.device.CreateShader(gpu.StageVertex, blob); err != nil {
			return fmt.Errorf("create vertex shader: %w", err)
		}
		if res.inputLayout, err = g.device.CreateInputLayout(inputElements, blob); err != nil {
			return fmt.Errorf("create input layout: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		blob, err := g.shaders.Load(ctx, gpu.StageGeometry)
		if err != nil {
			return err
		}
		if res.geometryShader, err = g.device.CreateShader(gpu.StageGeometry, blob); err != nil {
			return fmt.Errorf("create geometry shader: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		blob, err := g.shaders.Load(ctx, gpu.StagePixel)
		if err != nil {
			return err
		}
		if res.pixelShader, err = g.device.CreateShader(gpu.StagePixel, blob); err != nil {
			return fmt.Errorf("create pixel shader: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		res.release(g.device)
		return fmt.Errorf("%w: %w", gpu.ErrDeviceResources, err)
	}

	vertices, err := g.createVertexBuffer(res)
	if err != nil {
		res.release(g.device)
		return fmt.Errorf("%w: %w", gpu.ErrDeviceResources, err)
	}

	if res.blendState, err = g.device.CreateBlendState(gpu.AlphaBlend()); err != nil {
		res.release(g.device)
		return fmt.Errorf("%w: create blend state: %w", gpu.ErrDeviceResources, err)
	}
	res.constantBuffer, err = g.device.CreateBuffer(gpu.BufferDesc{
		Bind:      gpu.BindConstantBuffer,
		ByteWidth: FrameConstantsFloats * 4,
	}, nil)
	if err != nil {
		res.release(g.device)
		return fmt.Errorf("%w: create constant buffer: %w", gpu.ErrDeviceResources, err)
	}

	g.mu.Lock()
	if g.generation != gen {
		g.mu.Unlock()
		res.release(g.device)
		return fmt.Errorf("%w: %w", gpu.ErrDeviceResources, gpu.ErrStaleGeneration)
	}
	prev := g.res
	g.res = res
	g.vertices = vertices
	g.mu.Unlock()

	if prev != nil {
		prev.release(g.device)
	}
	return nil
}

func (g *Grid) createVertexBuffer(res *deviceResources) ([]Vertex, error) {
	vertices, err := BuildVertices(g.cfg.Size, g.cfg.Segments, g.cfg.ThinLine, g.cfg.ThickLine)
	if err != nil {
		return nil, err
	}
	res.vertexBuffer, err = g.device.CreateBuffer(gpu.BufferDesc{
		Bind:      gpu.BindVertexBuffer,
		ByteWidth: VertexStride * len(vertices),
	}, Flatten(vertices))
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}
	res.vertexCount = uint32(len(vertices))
	logging.Logger().Debug("grid: vertex buffer built", "vertices", len(vertices))
	return vertices, nil
}

// CreateWindowSizeDependentResources recomputes projection, view, eye and
// resolution from the current output. Zero-sized outputs (a minimized
// window) keep the previous values.
func (g *Grid) CreateWindowSizeDependentResources() {
	width, height := g.surface.OutputSize()
	if width <= 0 || height <= 0 {
		logging.Logger().Debug("grid: skipping projection for empty output", "width", width, "height", height)
		return
	}
	g.constants.OutputResolution = mgl32.Vec2{width, height}
	g.constants.Projection = g.camera.GetProjectionMatrix(width, height, g.surface.OrientationTransform())
	g.constants.EyePosition = g.camera.EyePosition()
	g.constants.View = g.camera.GetViewMatrix()
}

// RotationAngle is the Y rotation in radians after elapsed seconds,
// wrapped to [0, 2π) before narrowing to float32.
func (g *Grid) RotationAngle(elapsedSeconds float64) float32 {
	angle := elapsedSeconds*(g.cfg.RevolutionsPerMinute/60.0) + float64(g.cfg.Orientation)
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return float32(angle)
}

// Update rotates the grid to the timer's cumulative time and uploads the
// frame constants.
func (g *Grid) Update(t timer.Clock) {
	res := g.resources()
	if res == nil {
		return
	}
	defer profiling.Track("grid.Update")()

	g.constants.Model = mgl32.HomogRotate3DY(g.RotationAngle(t.TotalSeconds()))
	g.ctx.UpdateBuffer(res.constantBuffer, g.constants.Floats())
	res.uploaded = true
}

// Render draws the grid as a single non-indexed line list. Resources
// committed since the last Update are not drawn until Update has filled
// their constant buffer.
func (g *Grid) Render() {
	res := g.resources()
	if res == nil || !res.uploaded {
		return
	}
	defer profiling.Track("grid.Render")()

	for _, stage := range gpu.Stages {
		g.ctx.BindConstantBuffer(stage, 0, res.constantBuffer)
	}

	g.ctx.BindVertexBuffer(0, res.vertexBuffer, VertexStride, 0)
	g.ctx.SetPrimitiveTopology(gpu.TopologyLineList)
	g.ctx.BindInputLayout(res.inputLayout)

	g.ctx.BindShader(gpu.StageVertex, res.vertexShader)
	g.ctx.BindShader(gpu.StageGeometry, res.geometryShader)
	g.ctx.BindShader(gpu.StagePixel, res.pixelShader)

	g.ctx.SetBlendState(res.blendState)

	g.ctx.Draw(res.vertexCount, 0)
}

// ReleaseDeviceDependentResources drops every device handle. It is safe to
// call repeatedly and while a creation is in flight; that creation will be
// discarded when it finishes.
func (g *Grid) ReleaseDeviceDependentResources() {
	g.mu.Lock()
	g.generation++
	res := g.res
	g.res = nil
	g.vertices = nil
	g.mu.Unlock()

	if res != nil {
		res.release(g.device)
	}
}

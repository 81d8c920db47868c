// Package gputest provides an in-memory gpu backend that records every call.
// It backs the renderer tests; nothing is drawn.
package gputest

import (
	"fmt"
	"slices"
	"sync"

	"mygrid/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

type base struct {
	id       int
	kind     gpu.ResourceKind
	released bool
}

func (b *base) Kind() gpu.ResourceKind { return b.kind }

// ID is the creation sequence number of the resource.
func (b *base) ID() int { return b.id }

type Shader struct {
	base
	stage gpu.Stage
	Blob  []byte
}

func (s *Shader) Stage() gpu.Stage { return s.stage }

type InputLayout struct {
	base
	elements []gpu.InputElement
}

func (l *InputLayout) Elements() []gpu.InputElement { return l.elements }

type Buffer struct {
	base
	desc gpu.BufferDesc
	Data []float32
}

func (b *Buffer) Desc() gpu.BufferDesc { return b.desc }

type BlendState struct {
	base
	desc gpu.BlendDesc
}

func (b *BlendState) Desc() gpu.BlendDesc { return b.desc }

// Device is a recording gpu.Device. Failure fields are read at call time.
type Device struct {
	mu      sync.Mutex
	nextID  int
	live    map[int]gpu.Resource
	created []gpu.Resource

	// FailShader makes CreateShader fail for the given stage.
	FailShader map[gpu.Stage]error
	// FailBuffer makes CreateBuffer fail for the given bind flag.
	FailBuffer map[gpu.BindFlag]error
	// FailLayout makes CreateInputLayout fail.
	FailLayout error
	// FailBlend makes CreateBlendState fail.
	FailBlend error

	gate chan struct{}
}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		live:       make(map[int]gpu.Resource),
		FailShader: make(map[gpu.Stage]error),
		FailBuffer: make(map[gpu.BindFlag]error),
	}
}

// HoldShaders blocks every CreateShader call until the returned function is
// called. Use it to observe a renderer mid-creation.
func (d *Device) HoldShaders() (release func()) {
	ch := make(chan struct{})
	d.mu.Lock()
	d.gate = ch
	d.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (d *Device) track(r gpu.Resource, b *base, kind gpu.ResourceKind) {
	d.nextID++
	b.id = d.nextID
	b.kind = kind
	d.live[b.id] = r
	d.created = append(d.created, r)
}

func (d *Device) CreateShader(stage gpu.Stage, blob []byte) (gpu.Shader, error) {
	d.mu.Lock()
	gate := d.gate
	d.mu.Unlock()
	if gate != nil {
		<-gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.FailShader[stage]; err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, gpu.ErrEmptyBlob
	}
	s := &Shader{stage: stage, Blob: slices.Clone(blob)}
	d.track(s, &s.base, gpu.KindShader)
	return s, nil
}

func (d *Device) CreateInputLayout(elements []gpu.InputElement, vertexBlob []byte) (gpu.InputLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailLayout != nil {
		return nil, d.FailLayout
	}
	if len(vertexBlob) == 0 {
		return nil, gpu.ErrEmptyBlob
	}
	l := &InputLayout{elements: slices.Clone(elements)}
	d.track(l, &l.base, gpu.KindInputLayout)
	return l, nil
}

func (d *Device) CreateBuffer(desc gpu.BufferDesc, data []float32) (gpu.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.FailBuffer[desc.Bind]; err != nil {
		return nil, err
	}
	if len(data)*4 > desc.ByteWidth {
		return nil, fmt.Errorf("gputest: %d bytes of data exceed buffer width %d", len(data)*4, desc.ByteWidth)
	}
	b := &Buffer{desc: desc, Data: slices.Clone(data)}
	d.track(b, &b.base, gpu.KindBuffer)
	return b, nil
}

func (d *Device) CreateBlendState(desc gpu.BlendDesc) (gpu.BlendState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailBlend != nil {
		return nil, d.FailBlend
	}
	b := &BlendState{desc: desc}
	d.track(b, &b.base, gpu.KindBlendState)
	return b, nil
}

func (d *Device) Release(r gpu.Resource) {
	if r == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var b *base
	switch v := r.(type) {
	case *Shader:
		b = &v.base
	case *InputLayout:
		b = &v.base
	case *Buffer:
		b = &v.base
	case *BlendState:
		b = &v.base
	default:
		return
	}
	if b.released {
		return
	}
	b.released = true
	delete(d.live, b.id)
}

// Live returns the number of created and not yet released resources.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// LiveOf counts live resources of one kind.
func (d *Device) LiveOf(kind gpu.ResourceKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.live {
		if r.Kind() == kind {
			n++
		}
	}
	return n
}

// Buffers returns every buffer ever created with the given bind flag, oldest
// first.
func (d *Device) Buffers(bind gpu.BindFlag) []*Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Buffer
	for _, r := range d.created {
		if b, ok := r.(*Buffer); ok && b.desc.Bind == bind {
			out = append(out, b)
		}
	}
	return out
}

// Released reports whether r has been released.
func (d *Device) Released(r gpu.Resource) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch v := r.(type) {
	case *Shader:
		return v.released
	case *InputLayout:
		return v.released
	case *Buffer:
		return v.released
	case *BlendState:
		return v.released
	}
	return false
}

// Context is a recording gpu.Context.
type Context struct {
	mu    sync.Mutex
	Calls []string
	Draws []uint32
	// Uploads holds the latest data pushed per buffer.
	Uploads map[gpu.Buffer][]float32
}

func NewContext() *Context {
	return &Context{Uploads: make(map[gpu.Buffer][]float32)}
}

func (c *Context) record(format string, args ...any) {
	c.Calls = append(c.Calls, fmt.Sprintf(format, args...))
}

func (c *Context) UpdateBuffer(b gpu.Buffer, data []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("UpdateBuffer(%d)", len(data))
	c.Uploads[b] = slices.Clone(data)
}

func (c *Context) BindConstantBuffer(stage gpu.Stage, slot uint32, b gpu.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindConstantBuffer(%s,%d)", stage, slot)
}

func (c *Context) BindVertexBuffer(slot uint32, b gpu.Buffer, stride, offset uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindVertexBuffer(%d,%d,%d)", slot, stride, offset)
}

func (c *Context) SetPrimitiveTopology(t gpu.Topology) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("SetPrimitiveTopology(%d)", t)
}

func (c *Context) BindInputLayout(l gpu.InputLayout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindInputLayout")
}

func (c *Context) BindShader(stage gpu.Stage, s gpu.Shader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("BindShader(%s)", stage)
}

func (c *Context) SetBlendState(b gpu.BlendState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("SetBlendState")
}

func (c *Context) Draw(vertexCount, startVertex uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("Draw(%d,%d)", vertexCount, startVertex)
	c.Draws = append(c.Draws, vertexCount)
}

// DrawCount returns the number of draws issued.
func (c *Context) DrawCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Draws)
}

// Reset clears the recorded calls.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = nil
	c.Draws = nil
}

// Surface is a recording gpu.Surface.
type Surface struct {
	Width, Height float32
	Orientation   mgl32.Mat4
	Calls         []string
	ClearColors   [][4]float32
}

func NewSurface(width, height float32) *Surface {
	return &Surface{Width: width, Height: height, Orientation: mgl32.Ident4()}
}

func (s *Surface) OutputSize() (float32, float32) {
	return s.Width, s.Height
}

func (s *Surface) OrientationTransform() mgl32.Mat4 {
	return s.Orientation
}

func (s *Surface) BindRenderTargets() {
	s.Calls = append(s.Calls, "BindRenderTargets")
}

func (s *Surface) ClearRenderTarget(rgba [4]float32) {
	s.Calls = append(s.Calls, "ClearRenderTarget")
	s.ClearColors = append(s.ClearColors, rgba)
}

func (s *Surface) ClearDepthStencil(depth float32, stencil uint8) {
	s.Calls = append(s.Calls, fmt.Sprintf("ClearDepthStencil(%g,%d)", depth, stencil))
}

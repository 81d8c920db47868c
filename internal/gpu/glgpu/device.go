// Package glgpu implements the gpu interfaces on OpenGL 4.1 core.
//
// GL contexts are bound to one thread. Device methods may be called from any
// goroutine: creation calls are queued and block until the render thread
// calls Drain; releases are queued without waiting. Context methods run on
// the render thread directly.
package glgpu

import (
	"fmt"
	"strings"
	"sync/atomic"

	"mygrid/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
)

type handle struct {
	kind     gpu.ResourceKind
	released atomic.Bool
}

func (h *handle) Kind() gpu.ResourceKind { return h.kind }

type shader struct {
	handle
	stage   gpu.Stage
	program uint32
}

func (s *shader) Stage() gpu.Stage { return s.stage }

type inputLayout struct {
	handle
	elements []gpu.InputElement
}

func (l *inputLayout) Elements() []gpu.InputElement { return l.elements }

type buffer struct {
	handle
	desc   gpu.BufferDesc
	id     uint32
	target uint32
}

func (b *buffer) Desc() gpu.BufferDesc { return b.desc }

type blendState struct {
	handle
	desc  gpu.BlendDesc
	state glBlend
}

func (b *blendState) Desc() gpu.BlendDesc { return b.desc }

// Device creates GL objects on behalf of any goroutine.
type Device struct {
	q    queue
	live atomic.Int64
}

// NewDevice returns a device whose queue is drained by the render thread.
func NewDevice() *Device {
	return &Device{}
}

// Drain runs queued GL calls. Call it on the render thread once per frame.
func (d *Device) Drain() int {
	return d.q.drain()
}

// Pending reports the number of queued calls.
func (d *Device) Pending() int {
	return d.q.pending()
}

// Live reports the number of resources created and not yet released.
func (d *Device) Live() int {
	return int(d.live.Load())
}

// Close drains outstanding releases and fails later creations with
// gpu.ErrDeviceLost. Call it on the render thread before the context goes.
func (d *Device) Close() {
	d.q.drain()
	d.q.close()
}

func (d *Device) CreateShader(stage gpu.Stage, blob []byte) (gpu.Shader, error) {
	if len(blob) == 0 {
		return nil, gpu.ErrEmptyBlob
	}
	shaderType, err := shaderType(stage)
	if err != nil {
		return nil, err
	}

	var (
		program uint32
		cerr    error
	)
	if err := d.q.do(func() {
		program, cerr = compileSeparable(string(blob), shaderType)
	}); err != nil {
		return nil, err
	}
	if cerr != nil {
		return nil, fmt.Errorf("%s shader: %w", stage, cerr)
	}
	d.live.Add(1)
	return &shader{handle: handle{kind: gpu.KindShader}, stage: stage, program: program}, nil
}

// CreateInputLayout validates the elements. GL has no layout object; the
// attributes are applied to the context's vertex array at draw time.
func (d *Device) CreateInputLayout(elements []gpu.InputElement, vertexBlob []byte) (gpu.InputLayout, error) {
	if len(vertexBlob) == 0 {
		return nil, gpu.ErrEmptyBlob
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("input layout: no elements: %w", gpu.ErrUnsupported)
	}
	for _, e := range elements {
		if e.Format.Components() == 0 {
			return nil, fmt.Errorf("input layout %s%d: format %d: %w", e.Semantic, e.Index, e.Format, gpu.ErrUnsupported)
		}
		if e.Slot != 0 {
			return nil, fmt.Errorf("input layout %s%d: slot %d: %w", e.Semantic, e.Index, e.Slot, gpu.ErrUnsupported)
		}
	}
	d.live.Add(1)
	return &inputLayout{
		handle:   handle{kind: gpu.KindInputLayout},
		elements: append([]gpu.InputElement(nil), elements...),
	}, nil
}

func (d *Device) CreateBuffer(desc gpu.BufferDesc, data []float32) (gpu.Buffer, error) {
	target, usage, err := bufferTarget(desc.Bind)
	if err != nil {
		return nil, err
	}
	if desc.ByteWidth <= 0 {
		return nil, fmt.Errorf("buffer: byte width %d: %w", desc.ByteWidth, gpu.ErrUnsupported)
	}
	if len(data)*4 > desc.ByteWidth {
		return nil, fmt.Errorf("buffer: %d bytes of data exceed width %d", len(data)*4, desc.ByteWidth)
	}

	var id uint32
	if err := d.q.do(func() {
		gl.GenBuffers(1, &id)
		gl.BindBuffer(target, id)
		if len(data) == 0 {
			gl.BufferData(target, desc.ByteWidth, nil, usage)
		} else {
			gl.BufferData(target, desc.ByteWidth, gl.Ptr(data), usage)
		}
		gl.BindBuffer(target, 0)
	}); err != nil {
		return nil, err
	}
	d.live.Add(1)
	return &buffer{handle: handle{kind: gpu.KindBuffer}, desc: desc, id: id, target: target}, nil
}

func (d *Device) CreateBlendState(desc gpu.BlendDesc) (gpu.BlendState, error) {
	state, err := convertBlend(desc)
	if err != nil {
		return nil, err
	}
	d.live.Add(1)
	return &blendState{handle: handle{kind: gpu.KindBlendState}, desc: desc, state: state}, nil
}

// Release frees r. GL deletions are deferred to the next Drain.
func (d *Device) Release(r gpu.Resource) {
	var h *handle
	var free func()
	switch v := r.(type) {
	case *shader:
		h = &v.handle
		free = func() { gl.DeleteProgram(v.program) }
	case *buffer:
		h = &v.handle
		free = func() { gl.DeleteBuffers(1, &v.id) }
	case *inputLayout:
		h = &v.handle
	case *blendState:
		h = &v.handle
	default:
		return
	}
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	d.live.Add(-1)
	if free != nil {
		d.q.post(free)
	}
}

// compileSeparable builds a single-stage separable program and binds its
// uniform blocks to consecutive binding points in declaration order.
func compileSeparable(source string, shaderType uint32) (uint32, error) {
	csources, free := gl.Strs(source + "\x00")
	program := gl.CreateShaderProgramv(shaderType, 1, csources)
	free()

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to build program: %v", strings.TrimRight(log, "\x00"))
	}

	var blocks int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_BLOCKS, &blocks)
	for i := uint32(0); i < uint32(blocks); i++ {
		gl.UniformBlockBinding(program, i, i)
	}
	return program, nil
}

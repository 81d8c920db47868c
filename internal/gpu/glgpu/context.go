package glgpu

import (
	"mygrid/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
)

type vertexBinding struct {
	buf    *buffer
	stride uint32
	offset uint32
}

// Context issues GL state changes and draws. Render thread only.
type Context struct {
	vao      uint32
	pipeline uint32

	layout   *inputLayout
	vertices vertexBinding
	mode     uint32
	enabled  int // vertex attribute arrays currently enabled
}

// NewContext allocates the vertex array and program pipeline every draw
// goes through. The GL context must be current.
func NewContext() *Context {
	c := &Context{mode: gl.LINES}
	gl.GenVertexArrays(1, &c.vao)
	gl.GenProgramPipelines(1, &c.pipeline)
	return c
}

// Close deletes the context's GL objects.
func (c *Context) Close() {
	gl.DeleteProgramPipelines(1, &c.pipeline)
	gl.DeleteVertexArrays(1, &c.vao)
}

func (c *Context) UpdateBuffer(b gpu.Buffer, data []float32) {
	buf, ok := b.(*buffer)
	if !ok || buf.released.Load() || len(data) == 0 {
		return
	}
	size := min(len(data)*4, buf.desc.ByteWidth)
	gl.BindBuffer(buf.target, buf.id)
	gl.BufferSubData(buf.target, 0, size, gl.Ptr(data))
	gl.BindBuffer(buf.target, 0)
}

// BindConstantBuffer binds b to uniform binding point slot. GL binding points
// are shared by all stages, so stage only documents the caller's intent.
func (c *Context) BindConstantBuffer(stage gpu.Stage, slot uint32, b gpu.Buffer) {
	buf, ok := b.(*buffer)
	if !ok {
		return
	}
	gl.BindBufferBase(gl.UNIFORM_BUFFER, slot, buf.id)
}

// BindVertexBuffer records the vertex stream. Only slot 0 is supported.
func (c *Context) BindVertexBuffer(slot uint32, b gpu.Buffer, stride, offset uint32) {
	buf, ok := b.(*buffer)
	if !ok || slot != 0 {
		return
	}
	c.vertices = vertexBinding{buf: buf, stride: stride, offset: offset}
}

func (c *Context) SetPrimitiveTopology(t gpu.Topology) {
	c.mode = topologyMode(t)
}

func (c *Context) BindInputLayout(l gpu.InputLayout) {
	if layout, ok := l.(*inputLayout); ok {
		c.layout = layout
	}
}

func (c *Context) BindShader(stage gpu.Stage, s gpu.Shader) {
	sh, ok := s.(*shader)
	if !ok {
		gl.UseProgramStages(c.pipeline, stageBit(stage), 0)
		return
	}
	gl.UseProgramStages(c.pipeline, stageBit(stage), sh.program)
}

func (c *Context) SetBlendState(b gpu.BlendState) {
	bs, ok := b.(*blendState)
	if !ok {
		gl.Disable(gl.BLEND)
		return
	}
	s := bs.state
	if s.enable {
		gl.Enable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
	}
	if s.alphaToCoverage {
		gl.Enable(gl.SAMPLE_ALPHA_TO_COVERAGE)
	} else {
		gl.Disable(gl.SAMPLE_ALPHA_TO_COVERAGE)
	}
	gl.BlendFuncSeparate(s.src, s.dst, s.srcA, s.dstA)
	gl.BlendEquationSeparate(s.op, s.opA)
	gl.ColorMask(s.r, s.g, s.b, s.a)
}

// Draw applies the recorded vertex stream and layout, then draws.
func (c *Context) Draw(vertexCount, startVertex uint32) {
	if c.vertices.buf == nil || c.layout == nil {
		return
	}
	gl.UseProgram(0)
	gl.BindProgramPipeline(c.pipeline)
	gl.BindVertexArray(c.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vertices.buf.id)

	for i, e := range c.layout.elements {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), int32(e.Format.Components()), gl.FLOAT, false,
			int32(c.vertices.stride), gl.PtrOffset(int(c.vertices.offset+e.Offset)))
	}
	for i := len(c.layout.elements); i < c.enabled; i++ {
		gl.DisableVertexAttribArray(uint32(i))
	}
	c.enabled = len(c.layout.elements)

	gl.DrawArrays(c.mode, int32(startVertex), int32(vertexCount))
	gl.BindVertexArray(0)
}

// Package gpu describes the GPU capabilities the renderers depend on. It is
// backend neutral: glgpu implements it on OpenGL 4.1 and gputest records
// calls for tests.
//
// The split follows the usual device/context model. A Device creates and
// releases resources and is safe for concurrent use. A Context binds state and
// issues draws and must only be used from the render thread. A Surface is the
// presentation target the frame orchestrator clears each frame.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Stage identifies a programmable pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StageGeometry
	StagePixel
)

// Stages lists every stage in pipeline order.
var Stages = [...]Stage{StageVertex, StageGeometry, StagePixel}

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageGeometry:
		return "geometry"
	case StagePixel:
		return "pixel"
	default:
		return "unknown"
	}
}

// ResourceKind tags the concrete kind behind a Resource.
type ResourceKind int

const (
	KindShader ResourceKind = iota
	KindInputLayout
	KindBuffer
	KindBlendState
)

func (k ResourceKind) String() string {
	switch k {
	case KindShader:
		return "shader"
	case KindInputLayout:
		return "input layout"
	case KindBuffer:
		return "buffer"
	case KindBlendState:
		return "blend state"
	default:
		return "unknown"
	}
}

// Resource is a device-owned object. Handles are opaque to callers; only the
// device that created a handle may release or bind it.
type Resource interface {
	Kind() ResourceKind
}

// Shader is a created shader for one stage.
type Shader interface {
	Resource
	Stage() Stage
}

// InputLayout maps vertex buffer bytes to vertex shader inputs.
type InputLayout interface {
	Resource
	Elements() []InputElement
}

// Buffer is a vertex or constant buffer.
type Buffer interface {
	Resource
	Desc() BufferDesc
}

// BlendState is an output-merger blend configuration.
type BlendState interface {
	Resource
	Desc() BlendDesc
}

// Format describes the layout of one vertex element.
type Format int

const (
	FormatR32G32B32A32Float Format = iota
)

// Components returns the float count of the format.
func (f Format) Components() int {
	switch f {
	case FormatR32G32B32A32Float:
		return 4
	default:
		return 0
	}
}

// InputElement is one per-vertex attribute.
type InputElement struct {
	Semantic string
	Index    uint32
	Format   Format
	Slot     uint32
	Offset   uint32
}

// BindFlag tells the device how a buffer is going to be bound.
type BindFlag int

const (
	BindVertexBuffer BindFlag = iota
	BindConstantBuffer
)

// BufferDesc describes a buffer allocation.
type BufferDesc struct {
	Bind      BindFlag
	ByteWidth int
}

// Blend is a blend factor.
type Blend int

const (
	BlendZero Blend = iota
	BlendOne
	BlendSrcAlpha
	BlendInvSrcAlpha
)

// BlendOp combines the weighted source and destination.
type BlendOp int

const (
	BlendOpAdd BlendOp = iota
)

// ColorWriteMask selects writable channels.
type ColorWriteMask uint8

const (
	ColorWriteRed ColorWriteMask = 1 << iota
	ColorWriteGreen
	ColorWriteBlue
	ColorWriteAlpha

	ColorWriteAll = ColorWriteRed | ColorWriteGreen | ColorWriteBlue | ColorWriteAlpha
)

// RenderTargetBlend is the blend configuration of a single render target.
type RenderTargetBlend struct {
	Enable    bool
	Src       Blend
	Dst       Blend
	Op        BlendOp
	SrcAlpha  Blend
	DstAlpha  Blend
	OpAlpha   BlendOp
	WriteMask ColorWriteMask
}

// BlendDesc describes a blend state.
type BlendDesc struct {
	AlphaToCoverage  bool
	IndependentBlend bool
	RenderTarget     RenderTargetBlend
}

// AlphaBlend returns standard alpha compositing: srcAlpha / invSrcAlpha with
// additive combination on colour and alpha, all channels writable.
func AlphaBlend() BlendDesc {
	return BlendDesc{
		RenderTarget: RenderTargetBlend{
			Enable:    true,
			Src:       BlendSrcAlpha,
			Dst:       BlendInvSrcAlpha,
			Op:        BlendOpAdd,
			SrcAlpha:  BlendSrcAlpha,
			DstAlpha:  BlendInvSrcAlpha,
			OpAlpha:   BlendOpAdd,
			WriteMask: ColorWriteAll,
		},
	}
}

// Topology is the primitive assembly mode.
type Topology int

const (
	TopologyLineList Topology = iota
)

// Device creates and releases resources. Implementations must be safe for
// concurrent use.
type Device interface {
	CreateShader(stage Stage, blob []byte) (Shader, error)
	CreateInputLayout(elements []InputElement, vertexBlob []byte) (InputLayout, error)
	CreateBuffer(desc BufferDesc, data []float32) (Buffer, error)
	CreateBlendState(desc BlendDesc) (BlendState, error)
	// Release frees a resource. Releasing nil or an already released
	// resource is a no-op.
	Release(r Resource)
}

// Context binds pipeline state and issues draws. Render thread only.
type Context interface {
	UpdateBuffer(b Buffer, data []float32)
	BindConstantBuffer(stage Stage, slot uint32, b Buffer)
	BindVertexBuffer(slot uint32, b Buffer, stride, offset uint32)
	SetPrimitiveTopology(t Topology)
	BindInputLayout(l InputLayout)
	BindShader(stage Stage, s Shader)
	SetBlendState(b BlendState)
	Draw(vertexCount, startVertex uint32)
}

// Surface is the presentation target.
type Surface interface {
	// OutputSize is the logical size of the output in pixels.
	OutputSize() (width, height float32)
	// OrientationTransform corrects projection for the display rotation.
	OrientationTransform() mgl32.Mat4
	BindRenderTargets()
	ClearRenderTarget(rgba [4]float32)
	ClearDepthStencil(depth float32, stencil uint8)
}

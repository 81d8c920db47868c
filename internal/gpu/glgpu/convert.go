package glgpu

import (
	"fmt"

	"mygrid/internal/gpu"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// glBlend is a BlendDesc translated to GL enums.
type glBlend struct {
	enable          bool
	alphaToCoverage bool
	src, dst        uint32
	srcA, dstA      uint32
	op, opA         uint32
	r, g, b, a      bool
}

func shaderType(stage gpu.Stage) (uint32, error) {
	switch stage {
	case gpu.StageVertex:
		return gl.VERTEX_SHADER, nil
	case gpu.StageGeometry:
		return gl.GEOMETRY_SHADER, nil
	case gpu.StagePixel:
		return gl.FRAGMENT_SHADER, nil
	}
	return 0, fmt.Errorf("stage %d: %w", stage, gpu.ErrUnsupported)
}

func stageBit(stage gpu.Stage) uint32 {
	switch stage {
	case gpu.StageVertex:
		return gl.VERTEX_SHADER_BIT
	case gpu.StageGeometry:
		return gl.GEOMETRY_SHADER_BIT
	case gpu.StagePixel:
		return gl.FRAGMENT_SHADER_BIT
	}
	return 0
}

func bufferTarget(bind gpu.BindFlag) (target, usage uint32, err error) {
	switch bind {
	case gpu.BindVertexBuffer:
		return gl.ARRAY_BUFFER, gl.STATIC_DRAW, nil
	case gpu.BindConstantBuffer:
		return gl.UNIFORM_BUFFER, gl.DYNAMIC_DRAW, nil
	}
	return 0, 0, fmt.Errorf("bind flag %d: %w", bind, gpu.ErrUnsupported)
}

func topologyMode(t gpu.Topology) uint32 {
	switch t {
	case gpu.TopologyLineList:
		return gl.LINES
	}
	return gl.POINTS
}

func blendFactor(b gpu.Blend) (uint32, error) {
	switch b {
	case gpu.BlendZero:
		return gl.ZERO, nil
	case gpu.BlendOne:
		return gl.ONE, nil
	case gpu.BlendSrcAlpha:
		return gl.SRC_ALPHA, nil
	case gpu.BlendInvSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA, nil
	}
	return 0, fmt.Errorf("blend factor %d: %w", b, gpu.ErrUnsupported)
}

func blendOp(op gpu.BlendOp) (uint32, error) {
	switch op {
	case gpu.BlendOpAdd:
		return gl.FUNC_ADD, nil
	}
	return 0, fmt.Errorf("blend op %d: %w", op, gpu.ErrUnsupported)
}

func convertBlend(desc gpu.BlendDesc) (glBlend, error) {
	if desc.IndependentBlend {
		return glBlend{}, fmt.Errorf("independent blend: %w", gpu.ErrUnsupported)
	}
	rt := desc.RenderTarget
	out := glBlend{
		enable:          rt.Enable,
		alphaToCoverage: desc.AlphaToCoverage,
		r:               rt.WriteMask&gpu.ColorWriteRed != 0,
		g:               rt.WriteMask&gpu.ColorWriteGreen != 0,
		b:               rt.WriteMask&gpu.ColorWriteBlue != 0,
		a:               rt.WriteMask&gpu.ColorWriteAlpha != 0,
	}
	var err error
	for _, f := range []struct {
		dst *uint32
		in  gpu.Blend
	}{
		{&out.src, rt.Src},
		{&out.dst, rt.Dst},
		{&out.srcA, rt.SrcAlpha},
		{&out.dstA, rt.DstAlpha},
	} {
		if *f.dst, err = blendFactor(f.in); err != nil {
			return glBlend{}, err
		}
	}
	if out.op, err = blendOp(rt.Op); err != nil {
		return glBlend{}, err
	}
	if out.opA, err = blendOp(rt.OpAlpha); err != nil {
		return glBlend{}, err
	}
	return out, nil
}

package grid

import "github.com/go-gl/mathgl/mgl32"

// FrameConstantsFloats is the std140 size of FrameConstants in float32s:
// three mat4, a vec4, a vec2 and padding to a 16-byte multiple.
const FrameConstantsFloats = 3*16 + 4 + 4

// FrameConstants is the per-frame block read by all three shader stages.
// mgl32 matrices are column-major, which is the transpose of their row-major
// mathematical layout and what the shaders expect.
type FrameConstants struct {
	Model            mgl32.Mat4
	View             mgl32.Mat4
	Projection       mgl32.Mat4
	EyePosition      mgl32.Vec4
	OutputResolution mgl32.Vec2
}

// Floats lays the block out for upload.
func (c *FrameConstants) Floats() []float32 {
	out := make([]float32, FrameConstantsFloats)
	copy(out[0:16], c.Model[:])
	copy(out[16:32], c.View[:])
	copy(out[32:48], c.Projection[:])
	copy(out[48:52], c.EyePosition[:])
	copy(out[52:54], c.OutputResolution[:])
	return out
}

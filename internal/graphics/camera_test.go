package graphics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFieldOfViewDoublesForPortrait(t *testing.T) {
	c := NewCamera()
	base := float32(63.0 * math.Pi / 180.0)

	assert.InDelta(t, base, c.FieldOfViewY(16.0/9.0), 1e-6)
	assert.InDelta(t, base, c.FieldOfViewY(1.0), 1e-6)
	assert.InDelta(t, 2*base, c.FieldOfViewY(9.0/16.0), 1e-6)
}

func TestProjectionUsesFieldOfView(t *testing.T) {
	c := NewCamera()
	proj := c.GetProjectionMatrix(600, 800, mgl32.Ident4())

	// m[5] of a perspective matrix is cot(fovY/2).
	fov := 2 * math.Atan(1/float64(proj[5]))
	assert.InDelta(t, 2*63.0*math.Pi/180.0, fov, 1e-5)
}

func TestProjectionAppliesOrientation(t *testing.T) {
	c := NewCamera()
	rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(90))
	plain := c.GetProjectionMatrix(800, 600, mgl32.Ident4())
	rotated := c.GetProjectionMatrix(800, 600, rot)
	assert.True(t, rot.Mul4(plain).ApproxEqual(rotated))
}

func TestViewLooksAtOrigin(t *testing.T) {
	c := NewCamera()
	view := c.GetViewMatrix()

	// The origin lands on the -Z axis of eye space at the eye distance.
	p := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p[0], 1e-6)
	assert.InDelta(t, 0, p[1], 1e-6)
	assert.InDelta(t, -math.Sqrt(8), p[2], 1e-5)
	assert.Equal(t, mgl32.Vec4{0, 2, -2, 1}, c.EyePosition())
}

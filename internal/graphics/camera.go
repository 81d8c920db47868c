package graphics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera handles the view and projection matrices
type Camera struct {
	FOV       float32 // vertical, degrees
	NearPlane float32
	FarPlane  float32

	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3
}

// NewCamera returns the fixed reference-grid camera: a 35mm-equivalent lens
// looking down at the origin from (0, 2, -2).
func NewCamera() *Camera {
	return &Camera{
		FOV:       63.0,
		NearPlane: 0.01,
		FarPlane:  100.0,
		Eye:       mgl32.Vec3{0, 2, -2},
		Target:    mgl32.Vec3{0, 0, 0},
		Up:        mgl32.Vec3{0, 1, 0},
	}
}

// FieldOfViewY returns the vertical field of view in radians. Portrait
// outputs get twice the angle so the grid stays in frame.
func (c *Camera) FieldOfViewY(aspect float32) float32 {
	fov := mgl32.DegToRad(c.FOV)
	if aspect < 1.0 {
		fov *= 2.0
	}
	return fov
}

// GetProjectionMatrix builds the perspective projection for an output of the
// given size, corrected by the display orientation transform.
func (c *Camera) GetProjectionMatrix(width, height float32, orientation mgl32.Mat4) mgl32.Mat4 {
	aspect := width / height
	perspective := mgl32.Perspective(c.FieldOfViewY(aspect), aspect, c.NearPlane, c.FarPlane)
	return orientation.Mul4(perspective)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// EyePosition returns the eye as a homogeneous point.
func (c *Camera) EyePosition() mgl32.Vec4 {
	return c.Eye.Vec4(1)
}

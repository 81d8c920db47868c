package platform

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Rotation is the clockwise rotation of the panel relative to its native
// orientation, in degrees.
type Rotation int

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// ParseRotation accepts 0, 90, 180 and 270.
func ParseRotation(degrees int) (Rotation, error) {
	switch r := Rotation(degrees); r {
	case Rotation0, Rotation90, Rotation180, Rotation270:
		return r, nil
	}
	return 0, fmt.Errorf("platform: unsupported display rotation %d", degrees)
}

// Transform is the clip-space rotation that undoes the panel rotation. It is
// applied after the projection, so it pre-multiplies it.
func (r Rotation) Transform() mgl32.Mat4 {
	switch r {
	case Rotation90:
		return mgl32.HomogRotate3DZ(mgl32.DegToRad(90))
	case Rotation180:
		return mgl32.HomogRotate3DZ(mgl32.DegToRad(180))
	case Rotation270:
		return mgl32.HomogRotate3DZ(mgl32.DegToRad(270))
	}
	return mgl32.Ident4()
}

// Swaps reports whether the logical output is the framebuffer transposed.
func (r Rotation) Swaps() bool {
	return r == Rotation90 || r == Rotation270
}

// LogicalSize converts a framebuffer size into the size the scene is laid
// out for.
func (r Rotation) LogicalSize(width, height int) (float32, float32) {
	if r.Swaps() {
		return float32(height), float32(width)
	}
	return float32(width), float32(height)
}

package grid

import "github.com/go-gl/mathgl/mgl32"

// ClipEpsilon is the smallest clip-space w the geometry stage keeps. Lines
// reaching behind the eye are cut where they cross it.
const ClipEpsilon float32 = 1e-4

// ClipToEye applies the geometry stage's eye-plane rule to a clip-space
// segment. It reports false when both endpoints are at or behind the plane;
// otherwise the endpoint behind it is moved along the segment onto w =
// ClipEpsilon. t0 and t1 are the segment parameters of the returned points.
func ClipToEye(p0, p1 mgl32.Vec4) (a, b mgl32.Vec4, t0, t1 float32, ok bool) {
	if p0.W() <= ClipEpsilon && p1.W() <= ClipEpsilon {
		return p0, p1, 0, 1, false
	}
	a, b, t0, t1 = p0, p1, 0, 1
	switch {
	case p0.W() < ClipEpsilon:
		t0 = (ClipEpsilon - p0.W()) / (p1.W() - p0.W())
		a = lerp(p0, p1, t0)
	case p1.W() < ClipEpsilon:
		t1 = 1 - (ClipEpsilon-p1.W())/(p0.W()-p1.W())
		b = lerp(p0, p1, t1)
	}
	return a, b, t0, t1, true
}

func lerp(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

// VisibleLines counts the lines of vertices that survive ClipToEye under mvp.
// Zero-thickness padding is never drawn.
func VisibleLines(vertices []Vertex, mvp mgl32.Mat4) int {
	n := 0
	for i := 0; i+1 < len(vertices); i += 2 {
		a, b := vertices[i], vertices[i+1]
		if a.Thickness <= 0 {
			continue
		}
		p0 := mvp.Mul4x1(mgl32.Vec4{a.X, a.YBias, a.Z, 1})
		p1 := mvp.Mul4x1(mgl32.Vec4{b.X, b.YBias, b.Z, 1})
		if _, _, _, _, ok := ClipToEye(p0, p1); ok {
			n++
		}
	}
	return n
}

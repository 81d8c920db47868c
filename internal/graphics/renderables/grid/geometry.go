package grid

import "fmt"

const (
	// DepthBias separates the two line families vertically so coincident
	// lines never z-fight.
	DepthBias float32 = 5.0e-4

	// MajorEvery is the number of minor divisions between major lines.
	MajorEvery = 10

	// VertexStride is the size of one Vertex in bytes.
	VertexStride = 16
)

// Vertex is one line endpoint. Thickness is a line-width hint in pixels for
// the geometry stage, not a coordinate.
type Vertex struct {
	X         float32
	YBias     float32
	Z         float32
	Thickness float32
}

// VertexCount returns the number of vertices emitted for segments divisions.
func VertexCount(segments int) int {
	return 2 * (2*segments + 4)
}

// ValidSegments reports whether segments is a positive multiple of
// 2*MajorEvery, which keeps the major-line stride aligned in both halves.
func ValidSegments(segments int) bool {
	return segments > 0 && segments%(2*MajorEvery) == 0
}

// BuildVertices generates the line list for a size×size grid split into
// segments divisions per axis.
//
// Each family is ordered from the outer edges inward: first the lines from
// the low edge up to, but excluding, the centerline, then the lines from the
// high edge down to the centerline inclusive. With that ordering every
// MajorEvery-th line index is a major line counted from either edge, so the
// thick lines are found with a fixed stride.
//
// The vertical family (lines along X) sits at -DepthBias and comes first; the
// horizontal family (lines along Z) sits at +DepthBias. Two zero-length,
// zero-width lines at the origin pad the list to VertexCount(segments).
func BuildVertices(size float32, segments int, thin, thick float32) ([]Vertex, error) {
	if !ValidSegments(segments) {
		return nil, fmt.Errorf("grid: segment count %d is not a positive multiple of %d", segments, 2*MajorEvery)
	}

	count := VertexCount(segments)
	increment := size / float32(segments)
	half := segments / 2

	x0, x1 := -size/2, size/2
	z0, z1 := -size/2, size/2

	vertices := make([]Vertex, 0, count)
	addLine := func(ax, az, bx, bz, bias float32) {
		vertices = append(vertices,
			Vertex{X: ax, YBias: bias, Z: az, Thickness: thin},
			Vertex{X: bx, YBias: bias, Z: bz, Thickness: thin},
		)
	}

	// Vertical lines: low edge toward the centerline, then high edge to it.
	for i := 0; i < half; i++ {
		z := z0 + float32(i)*increment
		addLine(x0, z, x1, z, -DepthBias)
	}
	for i := 0; i <= half; i++ {
		z := z1 - float32(i)*increment
		addLine(x0, z, x1, z, -DepthBias)
	}
	for i := 0; i <= segments; i += MajorEvery {
		vertices[2*i].Thickness = thick
		vertices[2*i+1].Thickness = thick
	}

	// Horizontal lines: high edge toward the centerline, then low edge to it.
	for i := 0; i < half; i++ {
		x := x1 - float32(i)*increment
		addLine(x, z0, x, z1, DepthBias)
	}
	for i := 0; i <= half; i++ {
		x := x0 + float32(i)*increment
		addLine(x, z0, x, z1, DepthBias)
	}
	// The horizontal block starts right after the segments+1 vertical lines.
	for i := segments + 1; i <= 2*segments+4; i += MajorEvery {
		vertices[2*i].Thickness = thick
		vertices[2*i+1].Thickness = thick
	}

	for len(vertices) < count {
		vertices = append(vertices, Vertex{YBias: DepthBias})
	}
	return vertices, nil
}

// Flatten packs vertices into the float layout of the vertex buffer.
func Flatten(vertices []Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*4)
	for _, v := range vertices {
		out = append(out, v.X, v.YBias, v.Z, v.Thickness)
	}
	return out
}

// Package debug provides debug visualization utilities.
package debug

import "github.com/Faultbox/midgard-globe/pkg/math"

// BoxLineVertexCount is the number of vertices of a box wireframe (12 edges × 2).
const BoxLineVertexCount = 24

// boxEdges lists the corner pairs of the 12 box edges, using the corner
// order of math.Box.Corners.
var boxEdges = [12][2]int{
	// bottom face
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	// top face
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	// vertical edges
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// BoxLineVertices returns the 24 line-list vertices of b's wireframe as
// [x, y, z] triplets relative to center, ready for a float32 buffer drawn
// with a transform translating to center.
func BoxLineVertices(b math.Box, center math.Vec3) []float32 {
	corners := b.Corners()
	out := make([]float32, 0, 3*BoxLineVertexCount)
	for _, e := range boxEdges {
		for _, i := range e {
			p := corners[i].Sub(center)
			out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
		}
	}
	return out
}

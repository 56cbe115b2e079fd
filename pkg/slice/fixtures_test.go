package slice

import (
	"math"

	"github.com/chazu/stlslice/pkg/mesh"
)

// unitCube returns the 12 outward-wound triangles of the cube [-0.5, 0.5]^3.
func unitCube() []mesh.Triangle {
	return mesh.UnitCube()
}

func clippedArea(tris []ClippedTriangle) float64 {
	total := 0.0
	for _, t := range tris {
		total += t.Triangle().Area()
	}
	return total
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

package mesh

import v3 "github.com/deadsy/sdfx/vec/v3"

// Box returns the 12 outward-wound triangles of the axis-aligned box
// spanning lo to hi. Each face is split along the diagonal from its first
// corner.
func Box(lo, hi v3.Vec) []Triangle {
	c := func(x, y, z bool) v3.Vec {
		v := lo
		if x {
			v.X = hi.X
		}
		if y {
			v.Y = hi.Y
		}
		if z {
			v.Z = hi.Z
		}
		return v
	}
	quads := [6][4]v3.Vec{
		{c(false, false, false), c(false, false, true), c(false, true, true), c(false, true, false)}, // -X
		{c(true, false, false), c(true, true, false), c(true, true, true), c(true, false, true)},     // +X
		{c(false, false, false), c(true, false, false), c(true, false, true), c(false, false, true)}, // -Y
		{c(false, true, false), c(false, true, true), c(true, true, true), c(true, true, false)},     // +Y
		{c(false, false, false), c(false, true, false), c(true, true, false), c(true, false, false)}, // -Z
		{c(false, false, true), c(true, false, true), c(true, true, true), c(false, true, true)},     // +Z
	}
	tris := make([]Triangle, 0, 12)
	for _, q := range quads {
		tris = append(tris, NewTriangle(q[0], q[1], q[2]), NewTriangle(q[0], q[2], q[3]))
	}
	return tris
}

// UnitCube returns Box over [-0.5, 0.5] on every axis.
func UnitCube() []Triangle {
	return Box(v3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
}

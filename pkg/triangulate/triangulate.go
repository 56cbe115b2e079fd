// Package triangulate fills planar polygons, and cross-sections with
// holes, with triangles by ear clipping.
package triangulate

import (
	"log"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/rclancey/earcut"
)

// NewellNormal returns the (unnormalized) Newell normal of a polygon. Its
// direction follows the polygon's winding; its length is twice the area.
func NewellNormal(points []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, p := range points {
		q := points[(i+1)%len(points)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// Project drops the dominant axis of n and maps points into 2D. The
// remaining axes are taken in cyclic order so a polygon wound
// counter-clockwise about +n projects counter-clockwise when n's dominant
// component is positive.
func Project(points []v3.Vec, n v3.Vec) []v2.Vec {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	out := make([]v2.Vec, len(points))
	for i, p := range points {
		switch {
		case az >= ax && az >= ay:
			out[i] = v2.Vec{X: p.X, Y: p.Y}
		case ax >= ay:
			out[i] = v2.Vec{X: p.Y, Y: p.Z}
		default:
			out[i] = v2.Vec{X: p.Z, Y: p.X}
		}
	}
	return out
}

// Area2D returns the signed shoelace area, positive for counter-clockwise
// polygons.
func Area2D(pts []v2.Vec) float64 {
	a := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Polygon triangulates a simple planar polygon given in boundary order.
//
// It returns exactly len(points)-2 triangles wound like the input, and
// every input vertex is used. Input earcut cannot triangulate that way
// (degenerate, self-intersecting, or with collinear runs it drops) is
// fanned from its first vertex instead.
func Polygon(points []v3.Vec) [][3]v3.Vec {
	n := len(points)
	if n < 3 {
		return nil
	}
	pts := Project(points, NewellNormal(points))
	idx, err := earcut.Earcut(flatten(pts), nil, 2)
	if err != nil || len(idx) != 3*(n-2) {
		idx = fan(n)
	}
	return assemble(points, pts, idx, sign(Area2D(pts)))
}

// PolygonWithHoles triangulates the region inside outer and outside every
// hole. The holes must lie in outer's plane and inside it. Triangles are
// wound like outer. If earcut fails the holes are ignored and outer is
// filled on its own.
func PolygonWithHoles(outer []v3.Vec, holes [][]v3.Vec) [][3]v3.Vec {
	if len(outer) < 3 {
		return nil
	}
	all := append([]v3.Vec(nil), outer...)
	var starts []int
	for _, h := range holes {
		if len(h) < 3 {
			continue
		}
		starts = append(starts, len(all))
		all = append(all, h...)
	}
	if len(starts) == 0 {
		return Polygon(outer)
	}

	pts := Project(all, NewellNormal(outer))
	idx, err := earcut.Earcut(flatten(pts), starts, 2)
	if err != nil || len(idx) == 0 || len(idx)%3 != 0 {
		log.Printf("triangulate: %d-vertex polygon with %d holes: earcut gave %d indices (%v); filling without holes",
			len(outer), len(starts), len(idx), err)
		return Polygon(outer)
	}
	return assemble(all, pts, idx, sign(Area2D(pts[:len(outer)])))
}

// flatten packs points as x0, y0, x1, y1, ... for earcut.
func flatten(pts []v2.Vec) []float64 {
	out := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, p.X, p.Y)
	}
	return out
}

// fan returns the index triples of a fan from vertex 0.
func fan(n int) []int {
	idx := make([]int, 0, 3*(n-2))
	for k := 1; k+1 < n; k++ {
		idx = append(idx, 0, k, k+1)
	}
	return idx
}

// assemble turns index triples into triangles, swapping any whose 2D
// winding disagrees with orient.
func assemble(points []v3.Vec, pts []v2.Vec, idx []int, orient float64) [][3]v3.Vec {
	out := make([][3]v3.Vec, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := idx[i], idx[i+1], idx[i+2]
		if cross(pts[a], pts[b], pts[c])*orient < 0 {
			b, c = c, b
		}
		out = append(out, [3]v3.Vec{points[a], points[b], points[c]})
	}
	return out
}

func sign(a float64) float64 {
	switch {
	case a < 0:
		return -1
	case a > 0:
		return 1
	}
	return 0
}

func cross(o, a, b v2.Vec) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

package triangulate

import (
	"math"

	"github.com/chazu/stlslice/pkg/contour"
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/slice"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
)

// Outward returns the unit normal of a clipping plane pointing away from
// the region the plane keeps.
func Outward(id slice.PlaneID) v3.Vec {
	var n v3.Vec
	s := 1.0
	if id.IsMin() {
		s = -1
	}
	return mesh.WithComponent(n, id.Axis(), s)
}

// Contours fills the cross-sections bounded by cs with triangles facing out
// of the kept region. Loops on the same plane are nested by even-odd
// containment, so a loop inside another is left open as a hole. Zero-area
// pieces are dropped.
func Contours(cs []contour.Contour) []mesh.Triangle {
	byPlane := lo.GroupBy(cs, func(c contour.Contour) slice.PlaneID { return c.Plane })
	var out []mesh.Triangle
	for _, id := range slice.PlaneOrder {
		for _, r := range nest(byPlane[id], id) {
			out = appendFill(out, id, r)
		}
	}
	return out
}

// region is an outer loop and the holes directly inside it.
type region struct {
	outer []v3.Vec
	holes [][]v3.Vec
}

// nest sorts the loops of one plane into regions. A loop inside an even
// number of others is an outer boundary; one inside an odd number is a
// hole of the smallest loop containing it.
func nest(cs []contour.Contour, id slice.PlaneID) []region {
	n := Outward(id)
	rings := make([][]v2.Vec, len(cs))
	areas := make([]float64, len(cs))
	for i, c := range cs {
		rings[i] = Project(c.Points, n)
		areas[i] = math.Abs(Area2D(rings[i]))
	}

	parent := make([]int, len(cs))
	depth := make([]int, len(cs))
	for i := range cs {
		parent[i] = -1
		if len(rings[i]) == 0 {
			continue
		}
		p := rings[i][0]
		for j := range cs {
			if j == i || areas[j] <= areas[i] || !inside(p, rings[j]) {
				continue
			}
			depth[i]++
			if parent[i] < 0 || areas[j] < areas[parent[i]] {
				parent[i] = j
			}
		}
	}

	var out []region
	at := make(map[int]int)
	for i, c := range cs {
		if depth[i]%2 == 0 {
			at[i] = len(out)
			out = append(out, region{outer: c.Points})
		}
	}
	for i, c := range cs {
		if depth[i]%2 == 0 {
			continue
		}
		if r, ok := at[parent[i]]; ok {
			out[r].holes = append(out[r].holes, c.Points)
		} else {
			out = append(out, region{outer: c.Points})
		}
	}
	return out
}

// inside reports whether p is inside ring by the even-odd rule.
func inside(p v2.Vec, ring []v2.Vec) bool {
	in := false
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < a.X+(p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y) {
			in = !in
		}
	}
	return in
}

func appendFill(dst []mesh.Triangle, id slice.PlaneID, r region) []mesh.Triangle {
	n := Outward(id)
	flip := NewellNormal(r.outer).Dot(n) < 0
	for _, t := range PolygonWithHoles(r.outer, r.holes) {
		if flip {
			t[1], t[2] = t[2], t[1]
		}
		tri := mesh.Triangle{V: t, Normal: n}
		if tri.Area() == 0 {
			continue
		}
		dst = append(dst, tri)
	}
	return dst
}

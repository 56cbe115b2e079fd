package slice

import (
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/samber/lo"
)

// Stats counts how triangles were routed through Slice.
type Stats struct {
	Kept      int // wholly inside, returned untouched
	Discarded int // wholly outside one plane, dropped without clipping
	Clipped   int // run through the six clip passes
}

// Result is the outcome of slicing a mesh: the kept surface and the cut
// segments left on the clipping planes. It is a pure function of the mesh
// and the bounds.
type Result struct {
	Triangles []mesh.Triangle
	CutEdges  []CutEdge
	Stats     Stats
}

// EdgesByPlane groups the cut edges by the plane that produced them.
func (r Result) EdgesByPlane() map[PlaneID][]CutEdge {
	return lo.GroupBy(r.CutEdges, func(e CutEdge) PlaneID {
		return e.Plane
	})
}

// EdgesByAxis groups the cut edges by the axis of their plane, which is
// how the renderer colours them.
func (r Result) EdgesByAxis() map[mesh.Axis][]CutEdge {
	return lo.GroupBy(r.CutEdges, func(e CutEdge) mesh.Axis {
		return e.Plane.Axis()
	})
}

// Slice clips tris against the six planes of b.
//
// Triangles wholly inside b are returned unchanged and wholly outside one
// plane are dropped; only the rest go through the clip passes. Cut edges
// are read off the surviving pieces afterwards: an edge whose two corners
// lie on the same plane is a cut on that plane. Reading them last means a
// cut made by an early pass is trimmed by the passes after it.
func Slice(tris []mesh.Triangle, b ClipBounds) Result {
	planes := b.Planes()
	res := Result{Triangles: make([]mesh.Triangle, 0, len(tris))}

	var scratch []ClippedTriangle
	for _, t := range tris {
		switch classify(t, &planes) {
		case routeKeep:
			res.Triangles = append(res.Triangles, t)
			res.Stats.Kept++
			continue
		case routeDiscard:
			res.Stats.Discarded++
			continue
		}

		res.Stats.Clipped++
		scratch = append(scratch[:0], FromTriangle(t))
		for _, p := range planes {
			scratch = ClipPass(scratch, p)
			if len(scratch) == 0 {
				break
			}
		}
		first := len(res.CutEdges)
		for _, c := range scratch {
			if c.Degenerate() {
				// A sliver left where a mesh edge lies on the plane still
				// carries that edge as a cut.
				res.CutEdges = appendCollapsedEdge(res.CutEdges, c)
				continue
			}
			res.Triangles = append(res.Triangles, c.Triangle())
			res.CutEdges = appendCutEdges(res.CutEdges, c)
		}
		res.CutEdges = dedupeFrom(res.CutEdges, first)
	}
	return res
}

type route int

const (
	routeClip route = iota
	routeKeep
	routeDiscard
)

// classify decides the fast path for t.
func classify(t mesh.Triangle, planes *[6]Plane) route {
	allInside := true
	for _, p := range planes {
		outside := 0
		for _, v := range t.V {
			if !p.Keeps(v) {
				outside++
			}
		}
		if outside == 3 {
			return routeDiscard
		}
		if outside > 0 {
			allInside = false
		}
	}
	if allInside {
		return routeKeep
	}
	return routeClip
}

// appendCutEdges appends every edge of c whose corners share a plane.
func appendCutEdges(dst []CutEdge, c ClippedTriangle) []CutEdge {
	for i := 0; i < 3; i++ {
		shared := c.SharedPlanes(i)
		if shared == 0 {
			continue
		}
		a, b := c.V[i].Pos, c.V[(i+1)%3].Pos
		for _, id := range PlaneOrder {
			if shared.Has(id) {
				dst = append(dst, CutEdge{A: a, B: b, Plane: id})
			}
		}
	}
	return dst
}

// appendCollapsedEdge appends the one segment a degenerate triangle
// spans, if its ends share a plane.
func appendCollapsedEdge(dst []CutEdge, c ClippedTriangle) []CutEdge {
	a, b := c.V[0], c.V[1]
	if a.Pos == b.Pos {
		b = c.V[2]
	}
	if a.Pos == b.Pos {
		return dst
	}
	shared := a.On & b.On
	for _, id := range PlaneOrder {
		if shared.Has(id) {
			dst = append(dst, CutEdge{A: a.Pos, B: b.Pos, Plane: id})
		}
	}
	return dst
}

// dedupeFrom drops repeats, in either direction, among edges[first:].
// Pieces of one source triangle can report the same segment twice when a
// corner sits exactly on a plane.
func dedupeFrom(edges []CutEdge, first int) []CutEdge {
	out := edges[:first]
	for _, e := range edges[first:] {
		dup := false
		for _, k := range out[first:] {
			if k.Plane == e.Plane && (k.A == e.A && k.B == e.B || k.A == e.B && k.B == e.A) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	return out
}

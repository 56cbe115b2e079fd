package slice

import (
	"math"

	"github.com/chazu/stlslice/pkg/mesh"
)

// minDenominator is the smallest distance difference still used to
// interpolate an intersection. Below it the intersection collapses onto
// the inside vertex.
const minDenominator = 1e-300

// ClipTriangle clips one triangle against one plane. It returns the 0-2
// triangles covering the kept part and, when the plane crosses the
// triangle, the cut segment it leaves behind. Triangles with two
// coincident corners are omitted, as is a zero-length cut.
func ClipTriangle(t ClippedTriangle, p Plane) ([]ClippedTriangle, CutEdge, bool) {
	out, edge, cut := clipInto(nil, t, p)
	kept := out[:0]
	for _, c := range out {
		if !c.Degenerate() {
			kept = append(kept, c)
		}
	}
	if cut && edge.A == edge.B {
		cut = false
	}
	return kept, edge, cut
}

// ClipPass clips every triangle in tris against p and returns the kept
// pieces in input order. Degenerate pieces are kept so the provenance of
// their edges survives later passes.
func ClipPass(tris []ClippedTriangle, p Plane) []ClippedTriangle {
	out := make([]ClippedTriangle, 0, len(tris)+len(tris)/2)
	for _, t := range tris {
		out, _, _ = clipInto(out, t, p)
	}
	return out
}

// clipInto appends the kept pieces of t to dst.
func clipInto(dst []ClippedTriangle, t ClippedTriangle, p Plane) ([]ClippedTriangle, CutEdge, bool) {
	var d [3]float64
	inside := 0
	for i, v := range t.V {
		d[i] = p.Distance(v.Pos)
		if d[i] >= 0 {
			inside++
		}
	}

	switch inside {
	case 3:
		return append(dst, t), CutEdge{}, false
	case 0:
		return dst, CutEdge{}, false
	case 1:
		// Rotate so corner i is the inside one, keeping the winding.
		i := 0
		for d[i] < 0 {
			i++
		}
		j, k := (i+1)%3, (i+2)%3
		in := touch(t.V[i], d[i], p.ID)
		x1 := intersect(in, t.V[j], d[i], d[j], p)
		x2 := intersect(in, t.V[k], d[i], d[k], p)
		dst = append(dst, derive(t, in, x1, x2))
		return dst, CutEdge{A: x1.Pos, B: x2.Pos, Plane: p.ID}, true
	default:
		o := 0
		for d[o] >= 0 {
			o++
		}
		i1, i2 := (o+1)%3, (o+2)%3
		in1, in2 := touch(t.V[i1], d[i1], p.ID), touch(t.V[i2], d[i2], p.ID)
		// Intersections are interpolated from the inside corner so the
		// neighbour sharing an edge computes the same point.
		x1 := intersect(in1, t.V[o], d[i1], d[o], p)
		x2 := intersect(in2, t.V[o], d[i2], d[o], p)
		// The quad in1, in2, x2, x1 is split along in2-x1.
		dst = append(dst, derive(t, in1, in2, x1), derive(t, in2, x2, x1))
		return dst, CutEdge{A: x1.Pos, B: x2.Pos, Plane: p.ID}, true
	}
}

// intersect returns the point where the segment from the inside vertex a
// to the outside vertex b crosses p, tagged with p.
func intersect(a, b Vertex, da, db float64, p Plane) Vertex {
	den := da - db
	t := 0.0
	if math.Abs(den) > minDenominator {
		t = da / den
	}
	if t < 0 || math.IsNaN(t) {
		t = 0
	} else if t > 1 {
		t = 1
	}
	pos := a.Pos.Add(b.Pos.Sub(a.Pos).MulScalar(t))
	pos = mesh.WithComponent(pos, p.ID.Axis(), p.Pos)
	return Vertex{Pos: pos, Origin: p.ID, On: (a.On & b.On).With(p.ID)}
}

// touch marks an inside corner of a straddling triangle that sits
// exactly on the plane.
func touch(v Vertex, d float64, id PlaneID) Vertex {
	if d == 0 {
		v.On = v.On.With(id)
	}
	return v
}

func derive(t ClippedTriangle, a, b, c Vertex) ClippedTriangle {
	return ClippedTriangle{V: [3]Vertex{a, b, c}, Normal: t.Normal, Color: t.Color}
}

// Package wireframe builds the edge overlay drawn on top of the sliced
// mesh.
package wireframe

import (
	"math"

	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/slice"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// cancelCheckEvery is how many segments Clip processes between polls of
// its cancel probe.
const cancelCheckEvery = 1024

// Segment is a straight line between two points.
type Segment struct {
	A, B v3.Vec
}

type vkey [3]int64

// Extract returns each undirected triangle edge once, in first-seen order.
// Vertices are matched after snapping to a grid of size quantum; a quantum
// of zero matches exact coordinates only.
func Extract(tris []mesh.Triangle, quantum float64) []Segment {
	seen := make(map[[2]vkey]struct{}, len(tris)*3/2)
	out := make([]Segment, 0, len(tris)*3/2)
	for _, t := range tris {
		for i := 0; i < 3; i++ {
			a, b := t.V[i], t.V[(i+1)%3]
			ka, kb := key(a, quantum), key(b, quantum)
			if ka == kb {
				continue
			}
			if less(kb, ka) {
				ka, kb = kb, ka
			}
			k := [2]vkey{ka, kb}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, Segment{A: a, B: b})
		}
	}
	return out
}

func key(v v3.Vec, q float64) vkey {
	if q <= 0 {
		return vkey{
			int64(math.Float64bits(v.X)),
			int64(math.Float64bits(v.Y)),
			int64(math.Float64bits(v.Z)),
		}
	}
	return vkey{
		int64(math.Round(v.X / q)),
		int64(math.Round(v.Y / q)),
		int64(math.Round(v.Z / q)),
	}
}

func less(a, b vkey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Clip trims segments to the bounds using Liang-Barsky. Segments fully
// outside are dropped. It returns nil if canceled reports true partway.
func Clip(segs []Segment, b slice.ClipBounds, canceled func() bool) []Segment {
	out := make([]Segment, 0, len(segs))
	for i, s := range segs {
		if canceled != nil && i%cancelCheckEvery == 0 && canceled() {
			return nil
		}
		if c, ok := clipSegment(s, b); ok {
			out = append(out, c)
		}
	}
	return out
}

func clipSegment(s Segment, b slice.ClipBounds) (Segment, bool) {
	t0, t1 := 0.0, 1.0
	d := s.B.Sub(s.A)
	for _, a := range []mesh.Axis{mesh.AxisX, mesh.AxisY, mesh.AxisZ} {
		lo, hi := b.Range(a)
		p0, dp := mesh.Component(s.A, a), mesh.Component(d, a)
		for _, e := range [2][2]float64{{-dp, p0 - lo}, {dp, hi - p0}} {
			p, q := e[0], e[1]
			if p == 0 {
				if q < 0 {
					return Segment{}, false
				}
				continue
			}
			r := q / p
			if p < 0 {
				if r > t1 {
					return Segment{}, false
				}
				if r > t0 {
					t0 = r
				}
			} else {
				if r < t0 {
					return Segment{}, false
				}
				if r < t1 {
					t1 = r
				}
			}
		}
	}
	out := s
	if t0 > 0 {
		out.A = s.A.Add(d.MulScalar(t0))
	}
	if t1 < 1 {
		out.B = s.A.Add(d.MulScalar(t1))
	}
	return out, true
}

// FromCutEdges converts cut edges to plain segments.
func FromCutEdges(edges []slice.CutEdge) []Segment {
	out := make([]Segment, len(edges))
	for i, e := range edges {
		out[i] = Segment{A: e.A, B: e.B}
	}
	return out
}

// Lines flattens segments into a line buffer for upload.
func Lines(name string, segs []Segment, thickness float32) *mesh.LineBuffer {
	buf := &mesh.LineBuffer{
		Name:      name,
		Thickness: thickness,
		Segments:  make([]float32, 0, len(segs)*6),
	}
	for _, s := range segs {
		buf.Segments = append(buf.Segments,
			float32(s.A.X), float32(s.A.Y), float32(s.A.Z),
			float32(s.B.X), float32(s.B.Y), float32(s.B.Z),
		)
	}
	return buf
}

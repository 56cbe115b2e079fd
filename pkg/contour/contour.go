// Package contour stitches the unordered cut edges of one clipping plane
// into the closed loops that bound its cross-section.
package contour

import (
	"log"
	"math"
	"sort"

	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/slice"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"
)

const (
	// relativeTolerance scales the endpoint matching distance with the
	// model size.
	relativeTolerance = 1e-7

	// MinTolerance is the smallest matching distance Build will use.
	MinTolerance = 1e-9
)

// Contour is a closed loop of points on one clipping plane. The last point
// connects back to the first and is not repeated.
type Contour struct {
	Plane  slice.PlaneID
	Points []v3.Vec
}

// Axis returns the axis of the contour's plane.
func (c Contour) Axis() mesh.Axis {
	return c.Plane.Axis()
}

// IsMin reports whether the contour lies on a min-side plane.
func (c Contour) IsMin() bool {
	return c.Plane.IsMin()
}

// Len returns the number of points.
func (c Contour) Len() int {
	return len(c.Points)
}

// Perimeter returns the loop length.
func (c Contour) Perimeter() float64 {
	total := 0.0
	for i, p := range c.Points {
		total += c.Points[(i+1)%len(c.Points)].Sub(p).Length()
	}
	return total
}

// Tolerance returns the endpoint matching distance for a model with the
// given bounding box.
func Tolerance(box sdf.Box3) float64 {
	return math.Max(MinTolerance, mesh.Diagonal(box)*relativeTolerance)
}

// BuildAll groups edges by plane and builds the loops of each plane, in
// plane order.
func BuildAll(edges []slice.CutEdge, tol float64) []Contour {
	return BuildAllWithin(edges, slice.Unbounded(), tol)
}

// BuildAllWithin is BuildAll for edges cut by the planes of b. Where two
// clip planes meet inside the mesh the cut surface of each plane is open
// along the other; BuildAllWithin closes such chains along the meeting
// line (see Close).
func BuildAllWithin(edges []slice.CutEdge, b slice.ClipBounds, tol float64) []Contour {
	byPlane := lo.GroupBy(edges, func(e slice.CutEdge) slice.PlaneID {
		return e.Plane
	})
	var out []Contour
	for _, id := range slice.PlaneOrder {
		if group := byPlane[id]; len(group) > 0 {
			out = append(out, BuildWithin(group, b, tol)...)
		}
	}
	return out
}

// Build reconstructs closed loops from the cut edges of a single plane.
//
// Chains are grown greedily: starting from an unused edge, the unused edge
// with an endpoint nearest the chain's tail (within tol) is appended until
// the tail comes back to the start. Chains that dead-end, and loops with
// fewer than 3 points, are dropped.
func Build(edges []slice.CutEdge, tol float64) []Contour {
	return BuildWithin(edges, slice.Unbounded(), tol)
}

// BuildWithin is Build for edges cut by the planes of b. An open chain is
// kept if Close can complete it against b.
func BuildWithin(edges []slice.CutEdge, b slice.ClipBounds, tol float64) []Contour {
	if len(edges) == 0 {
		return nil
	}
	if !(tol >= MinTolerance) {
		tol = MinTolerance
	}
	plane := edges[0].Plane

	idx := newEndpointIndex(edges, tol)
	idx.dropDuplicates()

	var (
		out    []Contour
		open   int
		tooFew int
	)
	for start := range edges {
		if idx.used[start] {
			continue
		}
		points, closed := idx.chain(start)
		if !closed {
			var ok bool
			if points, ok = Close(points, plane, b, tol); !ok {
				open++
				continue
			}
		}
		if len(points) < 3 {
			tooFew++
			continue
		}
		points = dropCollinear(points, tol)
		if len(points) < 3 {
			tooFew++
			continue
		}
		out = append(out, Contour{Plane: plane, Points: points})
	}

	if open > 0 || tooFew > 0 {
		log.Printf("contour: plane %v: dropped %d open chain(s) and %d short loop(s) from %d edges",
			plane, open, tooFew, len(edges))
	}
	return out
}

// Close completes an open chain on plane whose two ends lie on other
// planes of b. Ends on the same plane are joined directly; ends on planes
// of different axes are joined through the box corner the three planes
// share. It reports false for any other chain.
func Close(points []v3.Vec, plane slice.PlaneID, b slice.ClipBounds, tol float64) ([]v3.Vec, bool) {
	if len(points) < 2 {
		return nil, false
	}
	head, tail := points[0], points[len(points)-1]
	onHead, onTail := onPlanes(head, plane, b, tol), onPlanes(tail, plane, b, tol)
	if onHead&onTail != 0 {
		return points, true
	}
	for _, q := range slice.PlaneOrder {
		if !onTail.Has(q) {
			continue
		}
		for _, r := range slice.PlaneOrder {
			if !onHead.Has(r) || r.Axis() == q.Axis() {
				continue
			}
			corner := head
			corner = mesh.WithComponent(corner, plane.Axis(), b.Plane(plane).Pos)
			corner = mesh.WithComponent(corner, q.Axis(), b.Plane(q).Pos)
			corner = mesh.WithComponent(corner, r.Axis(), b.Plane(r).Pos)
			return append(points, corner), true
		}
	}
	return nil, false
}

// onPlanes returns the planes of b other than those on plane's axis that
// p lies on.
func onPlanes(p v3.Vec, plane slice.PlaneID, b slice.ClipBounds, tol float64) slice.PlaneSet {
	var set slice.PlaneSet
	for _, q := range b.Planes() {
		if q.ID.Axis() == plane.Axis() {
			continue
		}
		if math.Abs(q.Distance(p)) <= tol {
			set = set.With(q.ID)
		}
	}
	return set
}

// chain grows a chain from edge start in both directions. It reports
// whether the chain closed on itself.
func (x *endpointIndex) chain(start int) ([]v3.Vec, bool) {
	x.used[start] = true
	first := x.edges[start].A
	points := []v3.Vec{first, x.edges[start].B}
	for {
		next, ok := x.take(points[len(points)-1])
		if !ok {
			break
		}
		if near(next, first, x.tol) {
			return points, true
		}
		points = append(points, next)
	}

	// Dead end: walk back from the head to recover the rest of the chain.
	var before []v3.Vec
	head := first
	for {
		prev, ok := x.take(head)
		if !ok {
			break
		}
		before = append(before, prev)
		head = prev
	}
	if len(before) == 0 {
		return points, false
	}
	lo.Reverse(before)
	return append(before, points...), false
}

func near(a, b v3.Vec, tol float64) bool {
	return a.Sub(b).Length() <= tol
}

// endpoint is one end of a cut edge, stored in the R-tree.
type endpoint struct {
	edge int
	end  int // 0 for A, 1 for B
	rect rtreego.Rect
}

func (e *endpoint) Bounds() rtreego.Rect {
	return e.rect
}

// endpointIndex finds unused edges by endpoint position.
type endpointIndex struct {
	edges []slice.CutEdge
	used  []bool
	tol   float64
	tree  *rtreego.Rtree
}

func newEndpointIndex(edges []slice.CutEdge, tol float64) *endpointIndex {
	objs := make([]rtreego.Spatial, 0, 2*len(edges))
	used := make([]bool, len(edges))
	for i, e := range edges {
		if e.Length() <= tol {
			used[i] = true
			continue
		}
		for end, p := range [2]v3.Vec{e.A, e.B} {
			objs = append(objs, &endpoint{edge: i, end: end, rect: point(p).ToRect(tol)})
		}
	}
	return &endpointIndex{
		edges: edges,
		used:  used,
		tol:   tol,
		tree:  rtreego.NewTree(3, 25, 50, objs...),
	}
}

func point(v v3.Vec) rtreego.Point {
	return rtreego.Point{v.X, v.Y, v.Z}
}

func (x *endpointIndex) at(e *endpoint) v3.Vec {
	if e.end == 0 {
		return x.edges[e.edge].A
	}
	return x.edges[e.edge].B
}

func (x *endpointIndex) other(e *endpoint) v3.Vec {
	if e.end == 0 {
		return x.edges[e.edge].B
	}
	return x.edges[e.edge].A
}

// candidates returns the unused endpoints within tol of p, nearest first
// and by edge order on ties.
func (x *endpointIndex) candidates(p v3.Vec) []*endpoint {
	unused := func(_ []rtreego.Spatial, obj rtreego.Spatial) (bool, bool) {
		return x.used[obj.(*endpoint).edge], false
	}
	hits := x.tree.SearchIntersect(point(p).ToRect(x.tol), unused)
	var out []*endpoint
	for _, h := range hits {
		e := h.(*endpoint)
		if near(x.at(e), p, x.tol) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := x.at(out[i]).Sub(p).Length(), x.at(out[j]).Sub(p).Length()
		if di != dj {
			return di < dj
		}
		if out[i].edge != out[j].edge {
			return out[i].edge < out[j].edge
		}
		return out[i].end < out[j].end
	})
	return out
}

// take marks the best unused edge touching p as used and returns its far
// endpoint.
func (x *endpointIndex) take(p v3.Vec) (v3.Vec, bool) {
	c := x.candidates(p)
	if len(c) == 0 {
		return v3.Vec{}, false
	}
	x.used[c[0].edge] = true
	return x.other(c[0]), true
}

// dropDuplicates marks edges that repeat an earlier edge, in either
// direction, as used.
func (x *endpointIndex) dropDuplicates() {
	for i, e := range x.edges {
		if x.used[i] {
			continue
		}
		for _, c := range x.candidates(e.A) {
			if c.edge >= i {
				continue
			}
			if near(x.other(c), e.B, x.tol) {
				x.used[i] = true
				break
			}
		}
	}
}

// dropCollinear removes points lying on the segment between their
// neighbours, so a straight side split across several triangles comes
// back as one side.
func dropCollinear(points []v3.Vec, tol float64) []v3.Vec {
	for changed := true; changed && len(points) > 3; {
		changed = false
		for i := 0; i < len(points) && len(points) > 3; i++ {
			prev := points[(i+len(points)-1)%len(points)]
			next := points[(i+1)%len(points)]
			if between(prev, points[i], next, tol) {
				points = append(points[:i], points[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return points
}

// between reports whether p lies on the segment a-b within tol.
func between(a, p, b v3.Vec, tol float64) bool {
	ab := b.Sub(a)
	l := ab.Length()
	if l <= tol {
		return false
	}
	if ab.Cross(p.Sub(a)).Length()/l > tol {
		return false
	}
	return p.Sub(a).Dot(ab) > 0 && b.Sub(p).Dot(ab) > 0
}

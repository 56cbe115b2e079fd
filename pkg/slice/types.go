// Package slice clips a triangle mesh against an axis-aligned box and
// reports the boundary segments the box planes cut into the surface.
//
// The functions here are pure and never fail: degenerate input produces
// an empty or partial result rather than an error, since they run on
// every interaction frame.
package slice

import (
	"fmt"
	"image/color"
	"math"

	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PlaneID names one of the six clipping planes. Even IDs are the min side
// of their axis and keep the half-space >= the plane; odd IDs are the max
// side and keep <= the plane.
type PlaneID int

const (
	XMin PlaneID = iota
	XMax
	YMin
	YMax
	ZMin
	ZMax
)

// NoPlane marks a vertex that was not created by any clipping plane.
const NoPlane PlaneID = -1

// PlaneOrder is the fixed order clip passes run in.
var PlaneOrder = [6]PlaneID{XMin, XMax, YMin, YMax, ZMin, ZMax}

// Axis returns the axis the plane is perpendicular to.
func (p PlaneID) Axis() mesh.Axis {
	return mesh.Axis(int(p) / 2)
}

// IsMin reports whether the plane bounds the low end of its axis.
func (p PlaneID) IsMin() bool {
	return int(p)%2 == 0
}

// Valid reports whether p is one of the six planes.
func (p PlaneID) Valid() bool {
	return p >= XMin && p <= ZMax
}

// PlaneFor returns the plane bounding axis a on the given side.
func PlaneFor(a mesh.Axis, isMin bool) PlaneID {
	id := PlaneID(int(a) * 2)
	if !isMin {
		id++
	}
	return id
}

func (p PlaneID) String() string {
	if !p.Valid() {
		return "none"
	}
	side := "max"
	if p.IsMin() {
		side = "min"
	}
	return p.Axis().String() + "-" + side
}

// Plane is a positioned clipping plane.
type Plane struct {
	ID  PlaneID
	Pos float64
}

// Distance returns the signed distance of v to the plane, positive on the
// kept side.
func (p Plane) Distance(v v3.Vec) float64 {
	d := mesh.Component(v, p.ID.Axis()) - p.Pos
	if !p.ID.IsMin() {
		d = -d
	}
	return d
}

// Keeps reports whether v lies in the kept half-space (boundary inclusive).
func (p Plane) Keeps(v v3.Vec) bool {
	return p.Distance(v) >= 0
}

// ClipBounds is the kept box: one [min, max] interval per axis, with
// min <= max on every axis. Infinite values leave an axis unbounded.
type ClipBounds struct {
	Min v3.Vec
	Max v3.Vec
}

// BoundsFromBox derives clip bounds from a model bounding box.
func BoundsFromBox(b sdf.Box3) ClipBounds {
	return ClipBounds{Min: b.Min, Max: b.Max}
}

// Unbounded returns bounds that keep all of space.
func Unbounded() ClipBounds {
	inf := math.Inf(1)
	return ClipBounds{
		Min: v3.Vec{X: -inf, Y: -inf, Z: -inf},
		Max: v3.Vec{X: inf, Y: inf, Z: inf},
	}
}

// Range returns the [min, max] interval of axis a.
func (b ClipBounds) Range(a mesh.Axis) (float64, float64) {
	return mesh.Component(b.Min, a), mesh.Component(b.Max, a)
}

// WithRange returns b with axis a set to [lo, hi]. Swapped input is
// reordered so the min <= max invariant holds.
func (b ClipBounds) WithRange(a mesh.Axis, lo, hi float64) ClipBounds {
	if lo > hi {
		lo, hi = hi, lo
	}
	b.Min = mesh.WithComponent(b.Min, a, lo)
	b.Max = mesh.WithComponent(b.Max, a, hi)
	return b
}

// Set moves one side of axis a to value, clamping it against the other
// side so min never exceeds max. NaN values are ignored.
func (b ClipBounds) Set(a mesh.Axis, isMin bool, value float64) ClipBounds {
	if math.IsNaN(value) {
		return b
	}
	lo, hi := b.Range(a)
	if isMin {
		lo = math.Min(value, hi)
	} else {
		hi = math.Max(value, lo)
	}
	b.Min = mesh.WithComponent(b.Min, a, lo)
	b.Max = mesh.WithComponent(b.Max, a, hi)
	return b
}

// Plane returns the positioned plane for id.
func (b ClipBounds) Plane(id PlaneID) Plane {
	lo, hi := b.Range(id.Axis())
	if id.IsMin() {
		return Plane{ID: id, Pos: lo}
	}
	return Plane{ID: id, Pos: hi}
}

// Planes returns all six planes in pass order.
func (b ClipBounds) Planes() [6]Plane {
	var ps [6]Plane
	for i, id := range PlaneOrder {
		ps[i] = b.Plane(id)
	}
	return ps
}

// Contains reports whether v lies inside the bounds (boundary inclusive).
func (b ClipBounds) Contains(v v3.Vec) bool {
	return v.X >= b.Min.X && v.X <= b.Max.X &&
		v.Y >= b.Min.Y && v.Y <= b.Max.Y &&
		v.Z >= b.Min.Z && v.Z <= b.Max.Z
}

// Covers reports whether the bounds contain the whole box.
func (b ClipBounds) Covers(box sdf.Box3) bool {
	return b.Contains(box.Min) && b.Contains(box.Max)
}

func (b ClipBounds) String() string {
	return fmt.Sprintf("x[%g,%g] y[%g,%g] z[%g,%g]",
		b.Min.X, b.Max.X, b.Min.Y, b.Max.Y, b.Min.Z, b.Max.Z)
}

// PlaneSet is a bit set of plane IDs.
type PlaneSet uint8

// Has reports whether p is in the set.
func (s PlaneSet) Has(p PlaneID) bool {
	return p.Valid() && s&(1<<uint(p)) != 0
}

// With returns the set with p added.
func (s PlaneSet) With(p PlaneID) PlaneSet {
	if !p.Valid() {
		return s
	}
	return s | 1<<uint(p)
}

// Vertex is a clipped-triangle corner. Origin is the plane that created
// it, or NoPlane for an original mesh vertex. On holds every plane the
// vertex is known to lie on: its origin, the planes shared by the two
// corners it was interpolated between, and planes it touched exactly
// while a triangle was being cut.
type Vertex struct {
	Pos    v3.Vec
	Origin PlaneID
	On     PlaneSet
}

// ClippedTriangle is a triangle moving through the clip passes. Normal
// and Color are inherited from the source face and never recomputed.
type ClippedTriangle struct {
	V      [3]Vertex
	Normal v3.Vec
	Color  color.RGBA
}

// FromTriangle wraps an original mesh triangle for clipping.
func FromTriangle(t mesh.Triangle) ClippedTriangle {
	return ClippedTriangle{
		V: [3]Vertex{
			{Pos: t.V[0], Origin: NoPlane},
			{Pos: t.V[1], Origin: NoPlane},
			{Pos: t.V[2], Origin: NoPlane},
		},
		Normal: t.Normal,
		Color:  t.Color,
	}
}

// Triangle drops the provenance tags.
func (c ClippedTriangle) Triangle() mesh.Triangle {
	return mesh.Triangle{
		V:      [3]v3.Vec{c.V[0].Pos, c.V[1].Pos, c.V[2].Pos},
		Normal: c.Normal,
		Color:  c.Color,
	}
}

// SharedPlanes returns the planes both ends of edge i (V[i] to V[i+1])
// lie on. A non-empty result means the edge is a cut edge.
func (c ClippedTriangle) SharedPlanes(i int) PlaneSet {
	return c.V[i].On & c.V[(i+1)%3].On
}

// Degenerate reports whether two corners coincide exactly.
func (c ClippedTriangle) Degenerate() bool {
	return c.V[0].Pos == c.V[1].Pos || c.V[1].Pos == c.V[2].Pos || c.V[2].Pos == c.V[0].Pos
}

// CutEdge is a boundary segment a clipping plane cut into the surface.
type CutEdge struct {
	A, B  v3.Vec
	Plane PlaneID
}

// Length returns the segment length.
func (e CutEdge) Length() float64 {
	return e.B.Sub(e.A).Length()
}

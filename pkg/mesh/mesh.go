// Package mesh defines the triangle mesh types shared by the slicing
// pipeline and the rendering collaborators. Geometry is expressed with
// sdfx's v3.Vec so meshes produced by the sdfx kernel and loaders need
// no conversion.
package mesh

import (
	"image/color"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Axis identifies a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "?"
}

// Component returns the coordinate of v along axis a.
func Component(v v3.Vec, a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent returns v with the coordinate along axis a replaced.
func WithComponent(v v3.Vec, a Axis, value float64) v3.Vec {
	switch a {
	case AxisX:
		v.X = value
	case AxisY:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// Triangle is an immutable mesh face. Normal is the precomputed face
// normal; the zero vector means none was supplied. Color with zero alpha
// means the triangle carries no colour of its own.
type Triangle struct {
	V      [3]v3.Vec
	Normal v3.Vec
	Color  color.RGBA
}

// NewTriangle builds a triangle and precomputes its face normal.
func NewTriangle(a, b, c v3.Vec) Triangle {
	t := Triangle{V: [3]v3.Vec{a, b, c}}
	t.Normal = t.ComputeNormal()
	return t
}

// ComputeNormal returns the unit normal from the vertex winding, or the
// zero vector for a degenerate triangle.
func (t Triangle) ComputeNormal() v3.Vec {
	n := t.V[1].Sub(t.V[0]).Cross(t.V[2].Sub(t.V[0]))
	l := n.Length()
	if l == 0 {
		return v3.Vec{}
	}
	return n.MulScalar(1 / l)
}

// FaceNormal returns the stored normal, falling back to the winding normal.
func (t Triangle) FaceNormal() v3.Vec {
	if t.Normal != (v3.Vec{}) {
		return t.Normal
	}
	return t.ComputeNormal()
}

// HasColor reports whether the triangle carries a colour.
func (t Triangle) HasColor() bool {
	return t.Color.A != 0
}

// Area returns the triangle's surface area.
func (t Triangle) Area() float64 {
	return t.V[1].Sub(t.V[0]).Cross(t.V[2].Sub(t.V[0])).Length() / 2
}

// FromSDF converts sdfx triangles into mesh triangles, keeping the
// winding normal sdfx reports.
func FromSDF(tris []*sdf.Triangle3) []Triangle {
	out := make([]Triangle, 0, len(tris))
	for _, tri := range tris {
		if tri == nil {
			continue
		}
		out = append(out, Triangle{
			V:      [3]v3.Vec{tri[0], tri[1], tri[2]},
			Normal: tri.Normal(),
		})
	}
	return out
}

// ToSDF converts mesh triangles into sdfx triangles, e.g. for STL export.
func ToSDF(tris []Triangle) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, len(tris))
	for i, t := range tris {
		out[i] = &sdf.Triangle3{t.V[0], t.V[1], t.V[2]}
	}
	return out
}

// Mesh is a named triangle soup as loaded from a model file.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// BoundingBox returns the axis-aligned bounding box of all vertices.
// An empty mesh yields a zero box.
func (m *Mesh) BoundingBox() sdf.Box3 {
	return Bounds(m.Triangles)
}

// SurfaceArea sums the area of every triangle.
func (m *Mesh) SurfaceArea() float64 {
	total := 0.0
	for _, t := range m.Triangles {
		total += t.Area()
	}
	return total
}

// Bounds returns the axis-aligned bounding box of tris.
func Bounds(tris []Triangle) sdf.Box3 {
	if len(tris) == 0 {
		return sdf.Box3{}
	}
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, t := range tris {
		for _, v := range t.V {
			lo = lo.Min(v)
			hi = hi.Max(v)
		}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Diagonal returns the length of the box diagonal.
func Diagonal(b sdf.Box3) float64 {
	return b.Max.Sub(b.Min).Length()
}

// Package kernel defines the solid modeling interface used to generate
// sample models. Implementations (sdfx) build solids and tessellate them
// into meshes the slicer can work on.
package kernel

import (
	"errors"

	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/deadsy/sdfx/sdf"
)

// DefaultCells is the tessellation resolution along the longest side.
const DefaultCells = 64

// ErrEmptySolid is returned by ToMesh when tessellation yields no faces.
var ErrEmptySolid = errors.New("kernel: solid tessellated to an empty mesh")

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() sdf.Box3
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives, centred on the origin.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Sphere(radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates s with the given number of cells along its
	// longest side; cells <= 0 means DefaultCells.
	ToMesh(s Solid, name string, cells int) (*mesh.Mesh, error)
}

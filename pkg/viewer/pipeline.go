package viewer

import (
	"github.com/chazu/stlslice/pkg/contour"
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/slice"
	"github.com/chazu/stlslice/pkg/triangulate"
)

// Options are the view toggles that shape a recompute.
type Options struct {
	SlicingActive     bool
	FillCrossSections bool
}

// Output is one recompute's worth of geometry.
type Output struct {
	Triangles []mesh.Triangle
	CutEdges  map[mesh.Axis][]slice.CutEdge
	Contours  []contour.Contour
	Fill      []mesh.Triangle
	Stats     slice.Stats
}

// CutEdgeCount returns the number of cut edges on all axes.
func (o Output) CutEdgeCount() int {
	n := 0
	for _, es := range o.CutEdges {
		n += len(es)
	}
	return n
}

// Compute runs the slicing pipeline. With slicing off the input triangles
// are returned as they are and nothing else is produced; fill triangles
// are only built when FillCrossSections is set.
func Compute(tris []mesh.Triangle, b slice.ClipBounds, tol float64, opts Options) Output {
	if !opts.SlicingActive {
		return Output{Triangles: tris, Stats: slice.Stats{Kept: len(tris)}}
	}

	res := slice.Slice(tris, b)
	out := Output{
		Triangles: res.Triangles,
		CutEdges:  res.EdgesByAxis(),
		Stats:     res.Stats,
	}
	out.Contours = contour.BuildAllWithin(res.CutEdges, b, tol)
	if opts.FillCrossSections {
		out.Fill = triangulate.Contours(out.Contours)
	}
	return out
}

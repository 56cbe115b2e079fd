package viewer

import (
	"testing"

	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/slice"
)

func TestCompute(t *testing.T) {
	cube := mesh.UnitCube()
	cut := slice.BoundsFromBox(mesh.Bounds(cube)).WithRange(mesh.AxisZ, -0.5, 0)

	tests := []struct {
		name      string
		bounds    slice.ClipBounds
		opts      Options
		wantStats slice.Stats
		wantCuts  int
		wantLoops int
		wantFill  int
	}{
		{
			name:      "slicing off",
			bounds:    cut,
			opts:      Options{FillCrossSections: true},
			wantStats: slice.Stats{Kept: 12},
		},
		{
			name:      "full box",
			bounds:    slice.BoundsFromBox(mesh.Bounds(cube)),
			opts:      Options{SlicingActive: true, FillCrossSections: true},
			wantStats: slice.Stats{Kept: 12},
		},
		{
			name:      "half cube",
			bounds:    cut,
			opts:      Options{SlicingActive: true},
			wantStats: slice.Stats{Kept: 2, Discarded: 2, Clipped: 8},
			wantCuts:  8,
			wantLoops: 1,
		},
		{
			name:      "half cube with fill",
			bounds:    cut,
			opts:      Options{SlicingActive: true, FillCrossSections: true},
			wantStats: slice.Stats{Kept: 2, Discarded: 2, Clipped: 8},
			wantCuts:  8,
			wantLoops: 1,
			wantFill:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Compute(cube, tt.bounds, 1e-9, tt.opts)
			if out.Stats != tt.wantStats {
				t.Errorf("stats %+v, want %+v", out.Stats, tt.wantStats)
			}
			if got := out.CutEdgeCount(); got != tt.wantCuts {
				t.Errorf("cut edges %d, want %d", got, tt.wantCuts)
			}
			if len(out.Contours) != tt.wantLoops {
				t.Errorf("contours %d, want %d", len(out.Contours), tt.wantLoops)
			}
			if len(out.Fill) != tt.wantFill {
				t.Errorf("fill %d, want %d", len(out.Fill), tt.wantFill)
			}
		})
	}
}

func TestComputeCutsGroupedByAxis(t *testing.T) {
	cube := mesh.UnitCube()
	b := slice.BoundsFromBox(mesh.Bounds(cube)).
		WithRange(mesh.AxisX, -0.5, 0.25).
		WithRange(mesh.AxisZ, -0.25, 0.5)

	out := Compute(cube, b, 1e-9, Options{SlicingActive: true, FillCrossSections: true})
	if len(out.CutEdges[mesh.AxisX]) == 0 || len(out.CutEdges[mesh.AxisZ]) == 0 {
		t.Fatalf("expected cuts on x and z, got %v", out.CutEdges)
	}
	if len(out.CutEdges[mesh.AxisY]) != 0 {
		t.Errorf("unexpected y cuts: %d", len(out.CutEdges[mesh.AxisY]))
	}
	if len(out.Contours) != 2 {
		t.Errorf("expected one contour per cut plane, got %d", len(out.Contours))
	}
	area := 0.0
	for _, f := range out.Fill {
		area += f.Area()
	}
	// x cap is 1 x 0.75, z cap is 0.75 x 1.
	if area < 1.5-1e-9 || area > 1.5+1e-9 {
		t.Errorf("fill area %g, want 1.5", area)
	}
}

package engine

import (
	"fmt"

	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/slice"
	"github.com/deadsy/sdfx/sdf"
)

// OpKind selects how a BoundsOp changes the clip box.
type OpKind int

const (
	// OpReset restores the full model bounding box.
	OpReset OpKind = iota
	// OpRange sets both sides of one axis in model units.
	OpRange
	// OpSide sets one side of one axis in model units.
	OpSide
	// OpFraction sets both sides of one axis as fractions of the model
	// extent, 0 at the model's min and 1 at its max.
	OpFraction
)

// BoundsOp is one clip-box edit recorded by a preset script.
type BoundsOp struct {
	Kind  OpKind
	Axis  mesh.Axis
	IsMin bool // OpSide only
	Lo    float64
	Hi    float64
}

func (op BoundsOp) String() string {
	switch op.Kind {
	case OpReset:
		return "reset"
	case OpRange:
		return fmt.Sprintf("%s [%g, %g]", op.Axis, op.Lo, op.Hi)
	case OpSide:
		side := "max"
		if op.IsMin {
			side = "min"
		}
		return fmt.Sprintf("%s-%s %g", op.Axis, side, op.Lo)
	case OpFraction:
		return fmt.Sprintf("%s [%g%%, %g%%]", op.Axis, op.Lo*100, op.Hi*100)
	}
	return "unknown"
}

// MaxCells caps the tessellation a preset may request. Finer grids take
// too long to mesh for an interactive session.
const MaxCells = 512

// Preset is the result of evaluating a preset script: a list of clip-box
// edits plus optional view toggles. Nil toggles leave the current setting.
type Preset struct {
	Model     string
	Cells     int // tessellation for kernel models; 0 means default
	Ops       []BoundsOp
	Slicing   *bool
	Fill      *bool
	Wireframe *bool
}

// IsEmpty reports whether the preset changes nothing.
func (p *Preset) IsEmpty() bool {
	return p.Model == "" && len(p.Ops) == 0 && p.Slicing == nil && p.Fill == nil && p.Wireframe == nil
}

// Apply replays the preset's edits on b. model is the bounding box of the
// loaded mesh, used by OpReset and OpFraction.
func (p *Preset) Apply(b slice.ClipBounds, model sdf.Box3) slice.ClipBounds {
	for _, op := range p.Ops {
		switch op.Kind {
		case OpReset:
			b = slice.BoundsFromBox(model)
		case OpRange:
			b = b.WithRange(op.Axis, op.Lo, op.Hi)
		case OpSide:
			b = b.Set(op.Axis, op.IsMin, op.Lo)
		case OpFraction:
			lo, hi := mesh.Component(model.Min, op.Axis), mesh.Component(model.Max, op.Axis)
			b = b.WithRange(op.Axis, lo+op.Lo*(hi-lo), lo+op.Hi*(hi-lo))
		}
	}
	return b
}

package viewer

import (
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/wireframe"
)

// Handle identifies a buffer held by the renderer.
type Handle string

// Layer names what an uploaded buffer shows.
type Layer string

const (
	LayerMesh      Layer = "mesh"
	LayerFill      Layer = "fill"
	LayerWireframe Layer = "wireframe"
)

// CutLayer returns the layer for the cut edges of one axis, which the
// renderer colours per axis.
func CutLayer(a mesh.Axis) Layer {
	return Layer("cuts-" + a.String())
}

// MeshUploader hands triangle lists to the renderer. An upload replaces
// the previous contents of the layer.
type MeshUploader interface {
	UploadMesh(layer Layer, tris []mesh.Triangle) Handle
}

// EdgeUploader hands line segments to the renderer. An upload replaces
// the previous contents of the layer.
type EdgeUploader interface {
	UploadEdges(layer Layer, segs []wireframe.Segment, thickness float32) Handle
}

// Handles are the renderer buffers behind the current frame.
type Handles struct {
	Mesh      Handle
	Fill      Handle
	Wireframe Handle
	Cuts      [3]Handle
}

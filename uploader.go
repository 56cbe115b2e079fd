package main

import (
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/viewer"
	"github.com/chazu/stlslice/pkg/wireframe"
	"github.com/google/uuid"
)

var (
	_ viewer.MeshUploader = (*eventUploader)(nil)
	_ viewer.EdgeUploader = (*eventUploader)(nil)
)

// eventUploader sends render buffers to the frontend as layer events.
// Every upload gets a fresh handle so the frontend can drop buffers that
// arrive out of order.
type eventUploader struct {
	emit func(event string, data ...interface{})
}

func (u *eventUploader) UploadMesh(layer viewer.Layer, tris []mesh.Triangle) viewer.Handle {
	h := viewer.Handle(uuid.NewString())
	u.emit(EventLayer, LayerData{
		Handle: string(h),
		Layer:  string(layer),
		Color:  layerColors[layer],
		Mesh:   mesh.Flatten(string(layer), tris),
	})
	return h
}

func (u *eventUploader) UploadEdges(layer viewer.Layer, segs []wireframe.Segment, thickness float32) viewer.Handle {
	h := viewer.Handle(uuid.NewString())
	u.emit(EventLayer, LayerData{
		Handle: string(h),
		Layer:  string(layer),
		Color:  layerColors[layer],
		Lines:  wireframe.Lines(string(layer), segs, thickness),
	})
	return h
}

package meshio

import (
	"fmt"

	"github.com/chazu/stlslice/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/hpinc/go3mf"
	"github.com/pkg/errors"
)

// Load3MF reads every mesh object of a 3MF package into one mesh.
//
// TODO: apply build item transforms; objects are placed in their own
// coordinates for now.
func Load3MF(path string) (*mesh.Mesh, error) {
	r, err := go3mf.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open 3mf %s", path)
	}
	defer r.Close()

	var model go3mf.Model
	if err := r.Decode(&model); err != nil {
		return nil, errors.Wrapf(err, "decode 3mf %s", path)
	}

	var tris []mesh.Triangle
	for _, obj := range model.Resources.Objects {
		if obj.Mesh == nil {
			continue
		}
		tris, err = appendObject(tris, obj.Mesh.Vertices.Vertex, obj.Mesh.Triangles.Triangle)
		if err != nil {
			return nil, errors.Wrapf(err, "3mf %s: object %d", path, obj.ID)
		}
	}
	if len(tris) == 0 {
		return nil, errors.Wrapf(ErrEmptyMesh, "load 3mf %s", path)
	}
	return &mesh.Mesh{Name: baseName(path), Triangles: tris}, nil
}

func appendObject(dst []mesh.Triangle, verts []go3mf.Point3D, faces []go3mf.Triangle) ([]mesh.Triangle, error) {
	at := func(i uint32) (v3.Vec, error) {
		if int(i) >= len(verts) {
			return v3.Vec{}, fmt.Errorf("vertex index %d out of range (%d vertices)", i, len(verts))
		}
		p := verts[i]
		return v3.Vec{X: float64(p.X()), Y: float64(p.Y()), Z: float64(p.Z())}, nil
	}
	for n, f := range faces {
		var v [3]v3.Vec
		for j, idx := range [3]uint32{f.V1, f.V2, f.V3} {
			p, err := at(idx)
			if err != nil {
				return nil, fmt.Errorf("triangle %d: %w", n, err)
			}
			v[j] = p
		}
		dst = append(dst, mesh.NewTriangle(v[0], v[1], v[2]))
	}
	return dst, nil
}

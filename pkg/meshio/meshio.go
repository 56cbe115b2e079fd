// Package meshio loads meshes for the viewer from STL and 3MF files or
// from built-in kernel samples, and writes sliced results back to STL.
package meshio

import (
	"path/filepath"
	"strings"

	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/deadsy/sdfx/render"
	"github.com/pkg/errors"
)

// SamplePrefix marks a source string that names a built-in sample rather
// than a file, e.g. "sample:bracket".
const SamplePrefix = "sample:"

var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .stl and .3mf.
	ErrUnsupportedFormat = errors.New("meshio: unsupported file type")

	// ErrEmptyMesh is returned when a source holds no triangles.
	ErrEmptyMesh = errors.New("meshio: mesh has no triangles")
)

// Open loads a mesh from a file path or a sample. Samples are named with
// the "sample:" prefix, or by their bare name when it has no extension.
// cells sets the tessellation of samples and is ignored for files.
func Open(source string, cells int) (*mesh.Mesh, error) {
	if name, ok := strings.CutPrefix(source, SamplePrefix); ok {
		return Sample(name, cells)
	}
	if _, ok := samples[source]; ok && filepath.Ext(source) == "" {
		return Sample(source, cells)
	}
	return Load(source)
}

// Load reads a mesh file, choosing the format by extension.
func Load(path string) (*mesh.Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		return LoadSTL(path)
	case ".3mf":
		return Load3MF(path)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s (expected .stl or .3mf)", path)
	}
}

// LoadSTL reads a binary STL file.
func LoadSTL(path string) (*mesh.Mesh, error) {
	tris, err := render.LoadSTL(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load stl %s", path)
	}
	if len(tris) == 0 {
		return nil, errors.Wrapf(ErrEmptyMesh, "load stl %s", path)
	}
	return &mesh.Mesh{Name: baseName(path), Triangles: mesh.FromSDF(tris)}, nil
}

// SaveSTL writes tris to a binary STL file.
func SaveSTL(path string, tris []mesh.Triangle) error {
	if len(tris) == 0 {
		return errors.Wrapf(ErrEmptyMesh, "save stl %s", path)
	}
	if err := render.SaveSTL(path, mesh.ToSDF(tris)); err != nil {
		return errors.Wrapf(err, "save stl %s", path)
	}
	return nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

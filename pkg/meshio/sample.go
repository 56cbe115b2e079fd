package meshio

import (
	"sort"

	"github.com/chazu/stlslice/pkg/kernel"
	"github.com/chazu/stlslice/pkg/kernel/sdfx"
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrUnknownSample is returned by Sample for names not in SampleNames.
var ErrUnknownSample = errors.New("meshio: unknown sample")

// samples build demonstration solids, sized in millimetres.
var samples = map[string]func(k kernel.Kernel) kernel.Solid{
	"cube": func(k kernel.Kernel) kernel.Solid {
		return k.Box(20, 20, 20)
	},
	"ball": func(k kernel.Kernel) kernel.Solid {
		return k.Sphere(10)
	},
	"pipe": func(k kernel.Kernel) kernel.Solid {
		return k.Difference(k.Cylinder(40, 10), k.Cylinder(42, 7))
	},
	"bracket": func(k kernel.Kernel) kernel.Solid {
		base := k.Box(40, 20, 5)
		wall := k.Translate(k.Box(5, 20, 30), -17.5, 0, 12.5)
		hole := k.Translate(k.Cylinder(10, 4), 8, 0, 0)
		return k.Difference(k.Union(base, wall), hole)
	},
}

// SampleNames lists the built-in samples in sorted order.
func SampleNames() []string {
	names := lo.Keys(samples)
	sort.Strings(names)
	return names
}

// Sample tessellates a built-in sample solid with the sdfx kernel.
func Sample(name string, cells int) (*mesh.Mesh, error) {
	build, ok := samples[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSample, "%q (have %v)", name, SampleNames())
	}
	k := sdfx.New()
	m, err := k.ToMesh(build(k), name, cells)
	if err != nil {
		return nil, errors.Wrapf(err, "sample %s", name)
	}
	return m, nil
}

package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/slice"
	"github.com/chazu/stlslice/pkg/viewer"
)

// maxOutlineTriangles caps how many triangles are outlined when the
// wireframe is hidden.
const maxOutlineTriangles = 20_000

// projection maps model space onto the braille micro grid by dropping the
// look axis. The model box is fitted to the grid with a uniform scale and
// screen y grows downwards.
type projection struct {
	u, v   mesh.Axis
	min    [2]float64
	scale  float64
	ox, oy float64
	hMic   int
}

// screenAxes returns the axes shown horizontally and vertically when
// looking along look.
func screenAxes(look mesh.Axis) (mesh.Axis, mesh.Axis) {
	switch look {
	case mesh.AxisX:
		return mesh.AxisY, mesh.AxisZ
	case mesh.AxisY:
		return mesh.AxisX, mesh.AxisZ
	default:
		return mesh.AxisX, mesh.AxisY
	}
}

func newProjection(look mesh.Axis, box sdf.Box3, w, h int) projection {
	u, v := screenAxes(look)
	p := projection{u: u, v: v, hMic: h * 4}
	p.min = [2]float64{mesh.Component(box.Min, u), mesh.Component(box.Min, v)}
	du := mesh.Component(box.Max, u) - p.min[0]
	dv := mesh.Component(box.Max, v) - p.min[1]
	wMic, hMic := float64(w*2-1), float64(h*4-1)

	p.scale = math.Inf(1)
	if du > 0 {
		p.scale = wMic / du
	}
	if dv > 0 {
		p.scale = math.Min(p.scale, hMic/dv)
	}
	if math.IsInf(p.scale, 1) {
		p.scale = 1
	}
	p.ox = (wMic - du*p.scale) / 2
	p.oy = (hMic - dv*p.scale) / 2
	return p
}

// micro returns the micro-pixel for a model-space point.
func (p projection) micro(q v3.Vec) (int, int) {
	x := p.ox + (mesh.Component(q, p.u)-p.min[0])*p.scale
	y := p.oy + (mesh.Component(q, p.v)-p.min[1])*p.scale
	return int(math.Round(x)), p.hMic - 1 - int(math.Round(y))
}

func (p projection) line(b *brailleBuf, a, c v3.Vec) {
	x0, y0 := p.micro(a)
	x1, y1 := p.micro(c)
	b.drawLine(x0, y0, x1, y1)
}

// layer is one colour of the canvas.
type layer struct {
	buf   *brailleBuf
	style lipgloss.Style
}

// renderCanvas draws f looking along look. Cut edges are drawn on top,
// then filled cross-sections, the clip box, and the surface.
func renderCanvas(f viewer.Frame, look mesh.Axis, box sdf.Box3, w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	p := newProjection(look, box, w, h)
	newLayer := func(s lipgloss.Style) layer { return layer{buf: newBrailleBuf(w, h), style: s} }

	surface := newLayer(meshStyle)
	switch {
	case f.ShowWireframe:
		surface.style = wireStyle
		for _, s := range f.Wireframe {
			p.line(surface.buf, s.A, s.B)
		}
	case len(f.Triangles) <= maxOutlineTriangles:
		for _, t := range f.Triangles {
			p.line(surface.buf, t.V[0], t.V[1])
			p.line(surface.buf, t.V[1], t.V[2])
			p.line(surface.buf, t.V[2], t.V[0])
		}
	}

	bounds := newLayer(dimStyle)
	if f.SlicingActive {
		drawBounds(&p, bounds.buf, f.Bounds, box)
	}

	fill := newLayer(fillStyle)
	if f.FillCrossSections {
		for _, c := range f.Contours {
			if c.Axis() != look {
				continue
			}
			ring := make([][2]int, len(c.Points))
			for i, q := range c.Points {
				ring[i][0], ring[i][1] = p.micro(q)
			}
			fill.buf.fillPolygon(ring)
		}
	}

	// Cuts on the look axis face the viewer and go on top.
	layers := make([]layer, 0, 6)
	for _, a := range []mesh.Axis{look, (look + 1) % 3, (look + 2) % 3} {
		cuts := newLayer(cutStyles[a])
		for _, e := range f.CutEdges[a] {
			p.line(cuts.buf, e.A, e.B)
		}
		layers = append(layers, cuts)
	}
	layers = append(layers, fill, bounds, surface)
	return compose(layers, w, h)
}

// drawBounds outlines the clip box, limited to the model box so an
// unbounded side stays on screen.
func drawBounds(p *projection, b *brailleBuf, cb slice.ClipBounds, box sdf.Box3) {
	ulo, uhi := cb.Range(p.u)
	vlo, vhi := cb.Range(p.v)
	ulo = math.Max(ulo, mesh.Component(box.Min, p.u))
	uhi = math.Min(uhi, mesh.Component(box.Max, p.u))
	vlo = math.Max(vlo, mesh.Component(box.Min, p.v))
	vhi = math.Min(vhi, mesh.Component(box.Max, p.v))
	if ulo > uhi || vlo > vhi {
		return
	}
	at := func(u, v float64) v3.Vec {
		return mesh.WithComponent(mesh.WithComponent(v3.Vec{}, p.u, u), p.v, v)
	}
	corners := []v3.Vec{at(ulo, vlo), at(uhi, vlo), at(uhi, vhi), at(ulo, vhi)}
	for i := range corners {
		p.line(b, corners[i], corners[(i+1)%4])
	}
}

// compose merges the layers cell by cell. A cell shows the union of all
// layer dots in the colour of the topmost layer that has any.
func compose(layers []layer, w, h int) string {
	var sb strings.Builder
	var run strings.Builder
	for y := 0; y < h; y++ {
		cur := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur < 0 {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(layers[cur].style.Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < w; x++ {
			var mask uint8
			top := -1
			for i, l := range layers {
				if cm := l.buf.m[y][x]; cm != 0 {
					mask |= cm
					if top < 0 {
						top = i
					}
				}
			}
			if top != cur {
				flush()
				cur = top
			}
			run.WriteRune(glyph(mask))
		}
		flush()
		if y < h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

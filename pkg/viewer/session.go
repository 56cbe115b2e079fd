// Package viewer owns the state of an interactive slicing session: the
// loaded mesh, the clip box, the view toggles and the current frame. UI
// front ends drive it with slider events and render what it uploads.
package viewer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/chazu/stlslice/pkg/contour"
	"github.com/chazu/stlslice/pkg/engine"
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/meshio"
	"github.com/chazu/stlslice/pkg/schedule"
	"github.com/chazu/stlslice/pkg/slice"
	"github.com/chazu/stlslice/pkg/wireframe"
	"github.com/deadsy/sdfx/sdf"
)

// ErrNoModel is returned by operations that need a loaded mesh.
var ErrNoModel = errors.New("viewer: no model loaded")

// Frame is the state the renderer should be showing.
type Frame struct {
	// Seq increases with every published frame.
	Seq    uint64
	Bounds slice.ClipBounds
	Options
	Output

	Wireframe []wireframe.Segment
	// WireframeClipped is false while the wireframe shown is the
	// last-known unclipped one and a clipped version is still pending.
	WireframeClipped bool
	ShowWireframe    bool

	Handles Handles
}

// clippedWire is a background wireframe clip, tagged with the mesh and
// bounds it was computed for.
type clippedWire struct {
	model  *mesh.Mesh
	bounds slice.ClipBounds
	segs   []wireframe.Segment
}

type extracted struct {
	model *mesh.Mesh
	segs  []wireframe.Segment
}

// Session coordinates slicing for one loaded mesh. All state is guarded
// by a single mutex; background results are handed over through the
// scheduler's generation slot and applied under it.
type Session struct {
	cfg    Config
	meshes MeshUploader
	edges  EdgeUploader

	sched   *schedule.Scheduler[slice.ClipBounds, clippedWire]
	extract *schedule.Worker[extracted]

	mu        sync.Mutex
	model     *mesh.Mesh
	box       sdf.Box3
	tol       float64
	bounds    slice.ClipBounds
	opts      Options
	showWire  bool
	wire      []wireframe.Segment // unclipped, nil until extracted
	clipped   clippedWire
	frame     Frame
	listeners []func(Frame)
}

// NewSession creates a session. Either uploader may be nil when the front
// end reads frames through OnFrame instead.
func NewSession(cfg Config, meshes MeshUploader, edges EdgeUploader) *Session {
	s := &Session{cfg: cfg, meshes: meshes, edges: edges}
	s.sched = schedule.NewScheduler(
		schedule.Options{Interval: cfg.ThrottleInterval, Quiet: cfg.WireframeDebounce, Clock: cfg.Clock},
		s.recompute,
		s.clipWireframe,
		s.commitWireframe,
	)
	s.extract = schedule.NewWorker(0, s.commitExtracted)
	return s
}

// Close stops pending work. The session must not be used afterwards.
func (s *Session) Close() {
	s.sched.Stop()
	s.extract.Cancel()
}

// OnFrame registers fn to be called after every published frame.
// fn runs outside the session lock and may be called from any goroutine.
func (s *Session) OnFrame(fn func(Frame)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Frame returns the current frame.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Bounds returns the current clip box.
func (s *Session) Bounds() slice.ClipBounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// ModelBounds returns the bounding box of the loaded mesh.
func (s *Session) ModelBounds() sdf.Box3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.box
}

// Model returns the loaded mesh, or nil.
func (s *Session) Model() *mesh.Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Load replaces the session's mesh. The clip box is reset to the mesh's
// bounding box and any background work for the previous mesh is dropped.
func (s *Session) Load(m *mesh.Mesh) {
	s.sched.Cancel()
	s.extract.Cancel()

	s.mu.Lock()
	s.model = m
	s.box = m.BoundingBox()
	s.tol = contour.Tolerance(s.box)
	s.bounds = slice.BoundsFromBox(s.box)
	s.wire = nil
	s.clipped = clippedWire{}
	tol := s.tol
	large := m.TriangleCount() > s.cfg.LargeMeshTriangles
	if !large {
		s.wire = wireframe.Extract(m.Triangles, tol)
	}
	b := s.bounds
	s.mu.Unlock()

	log.Printf("viewer: loaded %q: %d triangles, bounds %v", m.Name, m.TriangleCount(), b)

	if large {
		tris := m.Triangles
		s.extract.Submit(func(canceled func() bool) (extracted, bool) {
			segs := wireframe.Extract(tris, tol)
			return extracted{model: m, segs: segs}, !canceled()
		})
	}
	s.sched.Flush(b)
}

// LoadSource loads a mesh file or sample by name.
func (s *Session) LoadSource(source string) error {
	m, err := meshio.Open(source, s.cfg.SampleCells)
	if err != nil {
		return err
	}
	s.Load(m)
	return nil
}

// BoundsChanged moves one side of the clip box, as a slider drag does.
// The value is clamped against the opposite side. Recomputes are
// throttled.
func (s *Session) BoundsChanged(axis mesh.Axis, isMin bool, value float64) {
	s.mu.Lock()
	if s.model == nil {
		s.mu.Unlock()
		return
	}
	s.bounds = s.bounds.Set(axis, isMin, value)
	b := s.bounds
	s.mu.Unlock()
	s.sched.Changed(b)
}

// SetBounds replaces the whole clip box and recomputes at once.
func (s *Session) SetBounds(b slice.ClipBounds) {
	s.update(func() { s.bounds = b })
}

// ResetBounds restores the clip box to the model's bounding box.
func (s *Session) ResetBounds() {
	s.update(func() { s.bounds = slice.BoundsFromBox(s.box) })
}

// SetSlicing turns slicing on or off. Off shows the mesh unmodified.
func (s *Session) SetSlicing(on bool) {
	s.update(func() { s.opts.SlicingActive = on })
}

// SetFill turns cross-section caps on or off.
func (s *Session) SetFill(on bool) {
	s.update(func() { s.opts.FillCrossSections = on })
}

// SetWireframe shows or hides the wireframe overlay.
func (s *Session) SetWireframe(on bool) {
	s.update(func() { s.showWire = on })
}

// update applies a discrete change and recomputes without throttling.
func (s *Session) update(change func()) {
	s.mu.Lock()
	change()
	b, loaded := s.bounds, s.model != nil
	s.mu.Unlock()
	if loaded {
		s.sched.Flush(b)
	}
}

// ApplyPreset applies an evaluated preset script: it loads the named
// model if any, replays the bounds edits and sets the toggles.
func (s *Session) ApplyPreset(p *engine.Preset) error {
	if p.Model != "" {
		cells := s.cfg.SampleCells
		if p.Cells > 0 {
			cells = p.Cells
		}
		m, err := meshio.Open(p.Model, cells)
		if err != nil {
			return fmt.Errorf("preset: %w", err)
		}
		s.Load(m)
	}

	s.mu.Lock()
	if s.model == nil {
		s.mu.Unlock()
		return ErrNoModel
	}
	s.mu.Unlock()

	s.update(func() {
		s.bounds = p.Apply(s.bounds, s.box)
		if p.Slicing != nil {
			s.opts.SlicingActive = *p.Slicing
		}
		if p.Fill != nil {
			s.opts.FillCrossSections = *p.Fill
		}
		if p.Wireframe != nil {
			s.showWire = *p.Wireframe
		}
	})
	log.Printf("viewer: applied preset with %d bounds edit(s)", len(p.Ops))
	return nil
}

// ExportSTL writes the sliced mesh, with cross-section caps, to path.
func (s *Session) ExportSTL(path string) error {
	s.mu.Lock()
	if s.model == nil {
		s.mu.Unlock()
		return ErrNoModel
	}
	opts := Options{SlicingActive: s.opts.SlicingActive, FillCrossSections: true}
	out := Compute(s.model.Triangles, s.bounds, s.tol, opts)
	s.mu.Unlock()

	tris := make([]mesh.Triangle, 0, len(out.Triangles)+len(out.Fill))
	tris = append(append(tris, out.Triangles...), out.Fill...)
	if err := meshio.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	log.Printf("viewer: exported %d triangles to %s", len(tris), path)
	return nil
}

// recompute is the throttled foreground step. It always works from the
// session's current bounds, so a deferred run that lost a race with a
// newer one still shows the newest state.
func (s *Session) recompute(slice.ClipBounds) {
	s.mu.Lock()
	if s.model == nil {
		s.mu.Unlock()
		return
	}
	b := s.bounds
	out := Compute(s.model.Triangles, b, s.tol, s.opts)
	if s.cfg.LogStats {
		log.Printf("viewer: kept %d, discarded %d, clipped %d, %d cut edges, %d contours",
			out.Stats.Kept, out.Stats.Discarded, out.Stats.Clipped, out.CutEdgeCount(), len(out.Contours))
	}

	f := s.frame
	f.Bounds = b
	f.Options = s.opts
	f.Output = out
	f.ShowWireframe = s.showWire
	switch {
	case !s.opts.SlicingActive:
		f.Wireframe, f.WireframeClipped = s.wire, true
	case s.clipped.model == s.model && s.clipped.bounds == b:
		f.Wireframe, f.WireframeClipped = s.clipped.segs, true
	default:
		// The unclipped wireframe stands in until the background clip
		// lands.
		f.Wireframe, f.WireframeClipped = s.wire, false
	}
	s.uploadGeometry(&f)
	s.uploadWireframe(&f)
	fire := s.publish(f)
	s.mu.Unlock()
	fire()
}

// clipWireframe is the background step. It runs without the lock; the
// unclipped edge list is never mutated once published.
func (s *Session) clipWireframe(b slice.ClipBounds, canceled func() bool) (clippedWire, bool) {
	s.mu.Lock()
	m, segs := s.model, s.wire
	active := s.opts.SlicingActive && s.showWire
	s.mu.Unlock()
	if !active || segs == nil {
		return clippedWire{}, false
	}
	clipped := wireframe.Clip(segs, b, canceled)
	if clipped == nil && canceled() {
		return clippedWire{}, false
	}
	return clippedWire{model: m, bounds: b, segs: clipped}, true
}

func (s *Session) commitWireframe(w clippedWire) {
	s.mu.Lock()
	if w.model != s.model || w.bounds != s.bounds || !s.opts.SlicingActive {
		s.mu.Unlock()
		return
	}
	s.clipped = w
	f := s.frame
	f.Wireframe = w.segs
	f.WireframeClipped = true
	s.uploadWireframe(&f)
	fire := s.publish(f)
	s.mu.Unlock()
	fire()
}

func (s *Session) commitExtracted(e extracted) {
	s.mu.Lock()
	if e.model != s.model {
		s.mu.Unlock()
		return
	}
	s.wire = e.segs
	b := s.bounds
	s.mu.Unlock()
	s.sched.Flush(b)
}

// uploadGeometry pushes the mesh, fill and cut layers. Caller holds mu.
func (s *Session) uploadGeometry(f *Frame) {
	if s.meshes != nil {
		f.Handles.Mesh = s.meshes.UploadMesh(LayerMesh, f.Triangles)
		f.Handles.Fill = s.meshes.UploadMesh(LayerFill, f.Fill)
	}
	if s.edges != nil {
		for _, a := range []mesh.Axis{mesh.AxisX, mesh.AxisY, mesh.AxisZ} {
			segs := wireframe.FromCutEdges(f.CutEdges[a])
			f.Handles.Cuts[a] = s.edges.UploadEdges(CutLayer(a), segs, s.cfg.EdgeThickness)
		}
	}
}

// uploadWireframe pushes the wireframe layer, empty when hidden. Caller
// holds mu.
func (s *Session) uploadWireframe(f *Frame) {
	if s.edges == nil {
		return
	}
	var segs []wireframe.Segment
	if f.ShowWireframe {
		segs = f.Wireframe
	}
	f.Handles.Wireframe = s.edges.UploadEdges(LayerWireframe, segs, s.cfg.WireframeThickness)
}

// publish stores f as the current frame and returns a func that notifies
// listeners; call it after releasing mu. Caller holds mu.
func (s *Session) publish(f Frame) func() {
	f.Seq = s.frame.Seq + 1
	s.frame = f
	listeners := append([]func(Frame){}, s.listeners...)
	return func() {
		for _, fn := range listeners {
			fn(f)
		}
	}
}

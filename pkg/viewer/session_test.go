package viewer

import (
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/chazu/stlslice/pkg/engine"
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/meshio"
	"github.com/chazu/stlslice/pkg/slice"
	"github.com/chazu/stlslice/pkg/wireframe"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// stubRenderer records the last upload per layer.
type stubRenderer struct {
	mu     sync.Mutex
	n      int
	meshes map[Layer][]mesh.Triangle
	edges  map[Layer][]wireframe.Segment
	thick  map[Layer]float32
}

var (
	_ MeshUploader = (*stubRenderer)(nil)
	_ EdgeUploader = (*stubRenderer)(nil)
)

func newStubRenderer() *stubRenderer {
	return &stubRenderer{
		meshes: make(map[Layer][]mesh.Triangle),
		edges:  make(map[Layer][]wireframe.Segment),
		thick:  make(map[Layer]float32),
	}
}

func (r *stubRenderer) UploadMesh(layer Layer, tris []mesh.Triangle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	r.meshes[layer] = tris
	return Handle(fmt.Sprintf("%s#%d", layer, r.n))
}

func (r *stubRenderer) UploadEdges(layer Layer, segs []wireframe.Segment, thickness float32) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	r.edges[layer] = segs
	r.thick[layer] = thickness
	return Handle(fmt.Sprintf("%s#%d", layer, r.n))
}

func (r *stubRenderer) mesh(layer Layer) []mesh.Triangle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meshes[layer]
}

func (r *stubRenderer) lines(layer Layer) []wireframe.Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edges[layer]
}

type harness struct {
	*Session
	r      *stubRenderer
	frames chan Frame
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ThrottleInterval = 0
	cfg.WireframeDebounce = time.Millisecond
	return cfg
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	r := newStubRenderer()
	h := &harness{Session: NewSession(cfg, r, r), r: r, frames: make(chan Frame, 256)}
	h.OnFrame(func(f Frame) {
		select {
		case h.frames <- f:
		default:
		}
	})
	t.Cleanup(h.Close)
	return h
}

// waitFrame returns the first frame, current or future, that satisfies ok.
func (h *harness) waitFrame(t *testing.T, ok func(Frame) bool) Frame {
	t.Helper()
	if f := h.Frame(); ok(f) {
		return f
	}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-h.frames:
			if ok(f) {
				return f
			}
		case <-deadline:
			t.Fatalf("timed out waiting for frame; last %+v", h.Frame().Stats)
			return Frame{}
		}
	}
}

func cubeMesh() *mesh.Mesh {
	return &mesh.Mesh{Name: "cube", Triangles: mesh.UnitCube()}
}

func TestSessionLoad(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())

	b := h.Bounds()
	if b.Min.X != -0.5 || b.Max.Z != 0.5 {
		t.Errorf("bounds not taken from the mesh: %v", b)
	}
	f := h.Frame()
	if f.Seq == 0 {
		t.Fatal("expected a frame after load")
	}
	if len(f.Triangles) != 12 {
		t.Errorf("expected 12 triangles, got %d", len(f.Triangles))
	}
	if len(f.Wireframe) != 18 {
		t.Errorf("expected 18 wireframe edges, got %d", len(f.Wireframe))
	}
	if got := len(h.r.mesh(LayerMesh)); got != 12 {
		t.Errorf("uploaded %d triangles, want 12", got)
	}
	if f.Handles.Mesh == "" || f.Handles.Cuts[mesh.AxisX] == "" {
		t.Errorf("missing handles: %+v", f.Handles)
	}
}

func TestSessionPassthroughWhenSlicingOff(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())
	h.BoundsChanged(mesh.AxisX, false, 0.25)

	f := h.Frame()
	if len(f.Triangles) != 12 {
		t.Errorf("expected the mesh unmodified, got %d triangles", len(f.Triangles))
	}
	if f.CutEdgeCount() != 0 || len(f.Fill) != 0 {
		t.Errorf("expected no cuts or fill, got %d / %d", f.CutEdgeCount(), len(f.Fill))
	}
	if f.Bounds.Max.X != 0.25 {
		t.Errorf("bounds change not recorded: %v", f.Bounds)
	}
}

func TestSessionSingleAxisCut(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())
	h.SetSlicing(true)
	h.BoundsChanged(mesh.AxisX, false, 0.25)

	f := h.Frame()
	if f.Stats != (slice.Stats{Kept: 2, Discarded: 2, Clipped: 8}) {
		t.Fatalf("unexpected routing %+v", f.Stats)
	}
	if got := len(f.CutEdges[mesh.AxisX]); got != 8 {
		t.Errorf("expected 8 x cut edges, got %d", got)
	}
	if got := len(h.r.lines(CutLayer(mesh.AxisX))); got != 8 {
		t.Errorf("uploaded %d x cut segments, want 8", got)
	}
	if got := len(h.r.lines(CutLayer(mesh.AxisY))); got != 0 {
		t.Errorf("uploaded %d y cut segments, want 0", got)
	}
	if len(f.Contours) != 1 || f.Contours[0].Len() != 4 {
		t.Errorf("expected one 4-point contour, got %+v", f.Contours)
	}
	if len(f.Fill) != 0 {
		t.Errorf("fill is off, got %d fill triangles", len(f.Fill))
	}
	for _, tri := range f.Triangles {
		for _, v := range tri.V {
			if v.X > 0.25 {
				t.Fatalf("vertex beyond the clip plane: %+v", v)
			}
		}
	}

	h.SetFill(true)
	f = h.Frame()
	if len(f.Fill) != 2 {
		t.Fatalf("expected 2 fill triangles, got %d", len(f.Fill))
	}
	if got := len(h.r.mesh(LayerFill)); got != 2 {
		t.Errorf("uploaded %d fill triangles, want 2", got)
	}
	for _, tri := range f.Fill {
		if tri.Normal.X != 1 {
			t.Errorf("fill should face +x, got %+v", tri.Normal)
		}
	}
}

func TestSessionDegenerateBounds(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())
	h.SetSlicing(true)
	h.BoundsChanged(mesh.AxisX, true, 0)
	h.BoundsChanged(mesh.AxisX, false, 0)

	f := h.Frame()
	if len(f.Triangles) != 0 {
		t.Errorf("expected an empty slab, got %d triangles", len(f.Triangles))
	}
	for _, e := range f.CutEdges[mesh.AxisX] {
		if e.A.X != 0 || e.B.X != 0 {
			t.Errorf("cut edge off the slab plane: %+v", e)
		}
	}
}

func TestSessionBoundsClamp(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())

	h.BoundsChanged(mesh.AxisY, false, 0.1)
	h.BoundsChanged(mesh.AxisY, true, 0.3)
	lo, hi := h.Bounds().Range(mesh.AxisY)
	if lo != 0.1 || hi != 0.1 {
		t.Errorf("min should clamp to max: got [%g, %g]", lo, hi)
	}

	h.BoundsChanged(mesh.AxisY, true, math.NaN())
	if lo, _ := h.Bounds().Range(mesh.AxisY); lo != 0.1 {
		t.Errorf("NaN should be ignored, got %g", lo)
	}

	h.ResetBounds()
	if b := h.Bounds(); b != slice.BoundsFromBox(h.ModelBounds()) {
		t.Errorf("reset gave %v", b)
	}
}

func TestSessionNoModel(t *testing.T) {
	h := newHarness(t, testConfig())
	h.BoundsChanged(mesh.AxisX, true, 0)
	h.SetSlicing(true)
	if h.Frame().Seq != 0 {
		t.Error("no frame should be published without a model")
	}
	if err := h.ExportSTL(filepath.Join(t.TempDir(), "x.stl")); err != ErrNoModel {
		t.Errorf("expected ErrNoModel, got %v", err)
	}
	if err := h.ApplyPreset(&engine.Preset{}); err != ErrNoModel {
		t.Errorf("expected ErrNoModel, got %v", err)
	}
}

func TestSessionWireframeClippedInBackground(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())
	h.SetWireframe(true)
	h.SetSlicing(true)
	h.BoundsChanged(mesh.AxisX, false, 0.25)

	f := h.waitFrame(t, func(f Frame) bool {
		return f.WireframeClipped && f.Bounds.Max.X == 0.25
	})
	// 5 edges on the -X face, 4 edges along X and 4 side diagonals.
	if len(f.Wireframe) != 13 {
		t.Fatalf("expected 13 clipped edges, got %d", len(f.Wireframe))
	}
	for _, s := range f.Wireframe {
		if s.A.X > 0.25 || s.B.X > 0.25 {
			t.Errorf("segment beyond the clip plane: %+v", s)
		}
	}
	if got := len(h.r.lines(LayerWireframe)); got != 13 {
		t.Errorf("uploaded %d wireframe segments, want 13", got)
	}

	// A toggle with unchanged bounds reuses the clipped wireframe.
	h.SetFill(true)
	if f := h.Frame(); !f.WireframeClipped || len(f.Wireframe) != 13 {
		t.Errorf("expected the clipped wireframe to carry over, got %d clipped=%v", len(f.Wireframe), f.WireframeClipped)
	}
}

func TestSessionHiddenWireframeUploadsNothing(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())
	if got := len(h.r.lines(LayerWireframe)); got != 0 {
		t.Errorf("hidden wireframe uploaded %d segments", got)
	}
	h.SetWireframe(true)
	if got := len(h.r.lines(LayerWireframe)); got != 18 {
		t.Errorf("expected 18 segments, got %d", got)
	}
}

func TestSessionLargeMeshExtractsInBackground(t *testing.T) {
	cfg := testConfig()
	cfg.LargeMeshTriangles = 1
	h := newHarness(t, cfg)
	h.Load(cubeMesh())

	f := h.waitFrame(t, func(f Frame) bool { return len(f.Wireframe) > 0 })
	if len(f.Wireframe) != 18 {
		t.Errorf("expected 18 edges, got %d", len(f.Wireframe))
	}
}

func TestSessionReloadDropsOldWireframe(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())
	h.Load(&mesh.Mesh{Name: "slab", Triangles: mesh.Box(v3.Vec{}, v3.Vec{X: 2, Y: 1, Z: 1})})

	f := h.Frame()
	if f.Bounds.Max.X != 2 {
		t.Errorf("bounds not reset for the new mesh: %v", f.Bounds)
	}
	if len(f.Wireframe) != 18 {
		t.Errorf("expected 18 edges, got %d", len(f.Wireframe))
	}
	for _, s := range f.Wireframe {
		if s.A.X < 0 || s.B.X < 0 {
			t.Fatalf("edge from the previous mesh: %+v", s)
		}
	}
}

func TestSessionApplyPreset(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())

	res, err := engine.NewEngine().Evaluate(`
(clip :x -0.5 0.25)
(slicing :on)
(fill :on)
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", res.Errors)
	}
	if err := h.ApplyPreset(res.Preset); err != nil {
		t.Fatal(err)
	}

	f := h.Frame()
	if !f.SlicingActive || !f.FillCrossSections {
		t.Errorf("toggles not applied: %+v", f.Options)
	}
	if f.Stats.Clipped != 8 || len(f.Fill) != 2 {
		t.Errorf("unexpected result: stats %+v, %d fill", f.Stats, len(f.Fill))
	}
}

func TestSessionApplyPresetLoadsSample(t *testing.T) {
	cfg := testConfig()
	cfg.SampleCells = 16
	h := newHarness(t, cfg)

	err := h.ApplyPreset(&engine.Preset{Model: "ball", Slicing: boolPtr(true)})
	if err != nil {
		t.Fatal(err)
	}
	if m := h.Model(); m == nil || m.IsEmpty() {
		t.Fatal("expected the sample to be loaded")
	}
	if !h.Frame().SlicingActive {
		t.Error("expected slicing on")
	}

	if err := h.ApplyPreset(&engine.Preset{Model: "no-such-model"}); err == nil {
		t.Error("expected an error for an unknown model")
	}
}

func TestSessionExportSTL(t *testing.T) {
	h := newHarness(t, testConfig())
	h.Load(cubeMesh())
	h.SetSlicing(true)
	h.BoundsChanged(mesh.AxisX, false, 0.25)

	path := filepath.Join(t.TempDir(), "cut.stl")
	if err := h.ExportSTL(path); err != nil {
		t.Fatal(err)
	}
	m, err := meshio.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Compute(mesh.UnitCube(), h.Bounds(), 1e-9, Options{SlicingActive: true, FillCrossSections: true})
	if m.TriangleCount() != len(want.Triangles)+len(want.Fill) {
		t.Errorf("exported %d triangles, want %d", m.TriangleCount(), len(want.Triangles)+len(want.Fill))
	}
	// Export forces caps on but leaves the session's fill setting alone.
	if h.Frame().FillCrossSections {
		t.Error("export changed the fill toggle")
	}
}

func boolPtr(b bool) *bool { return &b }

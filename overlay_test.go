package quill

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/phanxgames/quill/scene"
	"github.com/phanxgames/quill/trace"
)

type idleTracer struct{}

func (idleTracer) Ready() bool { return false }
func (idleTracer) Trace(context.Context, image.Image, trace.Options) (*scene.Item, error) {
	return nil, trace.ErrNotReady
}

// squareTracer returns a 10x10 square at overlay (2, 2) and counts calls.
type squareTracer struct {
	calls int
	err   error
}

func (s *squareTracer) tracer() trace.Func {
	return func(context.Context, image.Image, trace.Options) (*scene.Item, error) {
		s.calls++
		if s.err != nil {
			return nil, s.err
		}
		p := scene.NewPath(
			scene.Point{X: 2, Y: 2}, scene.Point{X: 12, Y: 2},
			scene.Point{X: 12, Y: 12}, scene.Point{X: 2, Y: 12},
		)
		p.Close()
		return scene.NewGroup(p), nil
	}
}

type overlayFixture struct {
	canvas  *Canvas
	project *scene.Project
	palette *Palette
	queue   *TaskQueue
	errs    []error
	changed int
	tracer  *squareTracer
}

func newOverlayFixture() *overlayFixture {
	return &overlayFixture{
		canvas:  NewCanvas(0, 0, 400, 200),
		project: scene.NewProject(),
		palette: NewPalette(scene.Color{R: 1, A: 1}, scene.Color{B: 1, A: 1}),
		queue:   &TaskQueue{},
		tracer:  &squareTracer{},
	}
}

func (f *overlayFixture) overlay(t *testing.T, scale float64, tr trace.Tracer) *Overlay {
	t.Helper()
	changed := &Signal[struct{}]{}
	changed.Connect(func(struct{}) { f.changed++ })
	if tr == nil {
		tr = f.tracer.tracer()
	}
	o, err := NewOverlay(OverlayConfig{
		Canvas:  f.canvas,
		Scale:   scale,
		Project: f.project,
		Palette: f.palette,
		Tracer:  tr,
		Queue:   f.queue,
		Report:  func(err error) { f.errs = append(f.errs, err) },
		Changed: changed,
	})
	if err != nil {
		t.Fatalf("NewOverlay: %v", err)
	}
	return o
}

// waitQueue drains until a task ran. The tracer runs on its own goroutine.
func waitQueue(t *testing.T, q *TaskQueue) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if q.Drain() > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("trace completion never posted")
}

func inked(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return true
		}
	}
	return false
}

func TestNewOverlayScale(t *testing.T) {
	for _, s := range []float64{0, -1, 1.5} {
		if _, err := NewOverlay(OverlayConfig{Canvas: NewCanvas(0, 0, 1, 1), Scale: s}); err == nil {
			t.Errorf("NewOverlay(scale %v) = nil error", s)
		}
	}
}

func TestOverlayCoordinates(t *testing.T) {
	f := newOverlayFixture()
	o := f.overlay(t, 0.25, nil)
	p := o.PaperToOverlay(scene.Point{X: 100, Y: 40})
	if p != (scene.Point{X: 25, Y: 10}) {
		t.Errorf("PaperToOverlay(100, 40) = %v, want (25, 10)", p)
	}
	if back := o.OverlayToPaper(p); back != (scene.Point{X: 100, Y: 40}) {
		t.Errorf("OverlayToPaper(%v) = %v, want (100, 40)", p, back)
	}
}

func TestOverlayCreateAndResize(t *testing.T) {
	f := newOverlayFixture()
	o := f.overlay(t, 0.3, nil)
	if o.State() != OverlayUninitialized {
		t.Fatalf("state = %v, want uninitialized", o.State())
	}
	if _, err := o.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w, h := o.Size(); w != 120 || h != 60 {
		t.Errorf("Size() = %dx%d, want 120x60", w, h)
	}
	f.canvas.SetBounds(0, 0, 101, 51)
	if w, h := o.Size(); w != 31 || h != 16 {
		t.Errorf("Size() after resize = %dx%d, want 31x16", w, h)
	}

	o.Destroy()
	o.Destroy()
	if o.State() != OverlayDestroyed {
		t.Errorf("state = %v, want destroyed", o.State())
	}
	if f.canvas.OnResize.Len() != 0 {
		t.Error("destroyed overlay still follows canvas resizes")
	}
	if o.ImageData() != nil {
		t.Error("ImageData() non-nil after Destroy")
	}
}

func TestOverlayCreateWithoutCanvas(t *testing.T) {
	f := newOverlayFixture()
	f.canvas.Detach()
	o := f.overlay(t, 0.5, nil)
	_, err := o.Create()
	if !errors.Is(err, ErrCanvasMissing) {
		t.Fatalf("Create = %v, want ErrCanvasMissing", err)
	}
	if o.State() != OverlayUninitialized {
		t.Errorf("state = %v, want uninitialized", o.State())
	}
	if len(f.errs) != 1 {
		t.Errorf("reported %d errors, want 1", len(f.errs))
	}
}

func TestBrushPaints(t *testing.T) {
	f := newOverlayFixture()
	o := f.overlay(t, 0.5, nil)
	b, _ := o.Create()

	b.Dab(50, 50, 5, scene.Black)
	img := o.ImageData()
	if img.RGBAAt(50, 50).A == 0 {
		t.Fatal("Dab left the center transparent")
	}
	if img.RGBAAt(70, 50).A != 0 {
		t.Error("Dab painted outside its radius")
	}

	b.Line(10, 10, 40, 10, 4, scene.Black)
	if o.ImageData().RGBAAt(25, 10).A == 0 {
		t.Error("Line left its midpoint transparent")
	}

	b.Erase(50, 50, 8)
	if o.ImageData().RGBAAt(50, 50).A != 0 {
		t.Error("Erase left paint behind")
	}

	o.Destroy()
	if b.Live() {
		t.Error("brush live after Destroy")
	}
	b.Dab(50, 50, 5, scene.Black)
}

func TestTraceImportsScaledAndColored(t *testing.T) {
	f := newOverlayFixture()
	o := f.overlay(t, 0.5, nil)
	b, _ := o.Create()
	b.Dab(7, 7, 5, scene.Black)

	var got *scene.Item
	o.TraceToPaper(context.Background(), func(item *scene.Item, err error) {
		if err != nil {
			t.Errorf("done err = %v", err)
		}
		got = item
	})
	waitQueue(t, f.queue)

	if got == nil {
		t.Fatal("done not called with an item")
	}
	if f.project.CountPathLike() != 1 {
		t.Fatalf("project paths = %d, want 1", f.project.CountPathLike())
	}
	r, _ := got.Bounds()
	if r != (scene.Rect{X: 4, Y: 4, Width: 20, Height: 20}) {
		t.Errorf("imported bounds = %+v, want 4,4 20x20", r)
	}
	got.EachPathLike(func(it *scene.Item) {
		if *it.StrokeColor != f.palette.Primary() || *it.FillColor != f.palette.Secondary() {
			t.Errorf("paint = %v/%v, want palette", *it.StrokeColor, *it.FillColor)
		}
	})
	if inked(o.ImageData()) {
		t.Error("overlay not cleared after trace")
	}
	if f.changed != 1 {
		t.Errorf("changed = %d, want 1", f.changed)
	}
}

func TestTraceAlwaysClears(t *testing.T) {
	tests := []struct {
		name    string
		tracer  func(f *overlayFixture) trace.Tracer
		detach  bool
		wantErr error
		async   bool
	}{
		{"tracer error", func(f *overlayFixture) trace.Tracer {
			f.tracer.err = errors.New("potrace exploded")
			return f.tracer.tracer()
		}, false, nil, true},
		{"tracer not ready", func(*overlayFixture) trace.Tracer { return idleTracer{} }, false, ErrTracerNotReady, false},
		{"canvas missing", func(f *overlayFixture) trace.Tracer { return f.tracer.tracer() }, true, ErrCanvasMissing, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOverlayFixture()
			o := f.overlay(t, 0.5, tt.tracer(f))
			b, _ := o.Create()
			b.Dab(20, 20, 6, scene.Black)
			if tt.detach {
				f.canvas.Detach()
			}

			var doneErr error
			called := false
			o.TraceToPaper(context.Background(), func(item *scene.Item, err error) {
				called = true
				doneErr = err
				if item != nil {
					t.Error("failed trace produced an item")
				}
			})
			if tt.async {
				waitQueue(t, f.queue)
			}
			if !called {
				t.Fatal("done not called")
			}
			if doneErr == nil {
				t.Fatal("done err = nil, want failure")
			}
			if tt.wantErr != nil && !errors.Is(doneErr, tt.wantErr) {
				t.Errorf("done err = %v, want %v", doneErr, tt.wantErr)
			}
			if k, _ := KindOf(doneErr); k != KindTrace {
				t.Errorf("kind = %v, want trace", k)
			}
			if inked(o.ImageData()) {
				t.Error("overlay not cleared after failed trace")
			}
			if len(f.errs) != 1 {
				t.Errorf("reported %d errors, want 1", len(f.errs))
			}
			if f.project.CountPathLike() != 0 {
				t.Error("failed trace imported paths")
			}
		})
	}
}

func TestTraceNotCreated(t *testing.T) {
	f := newOverlayFixture()
	o := f.overlay(t, 0.5, nil)
	var err error
	o.TraceToPaper(context.Background(), func(_ *scene.Item, e error) { err = e })
	if !errors.Is(err, ErrOverlayNotCreated) {
		t.Errorf("err = %v, want ErrOverlayNotCreated", err)
	}
	if f.tracer.calls != 0 {
		t.Error("tracer ran for an uncreated overlay")
	}
}

func TestTraceDiscardedAfterDestroy(t *testing.T) {
	f := newOverlayFixture()
	o := f.overlay(t, 0.5, nil)
	o.Create()

	var err error
	o.TraceToPaper(context.Background(), func(_ *scene.Item, e error) { err = e })
	o.Destroy()
	waitQueue(t, f.queue)

	if !errors.Is(err, ErrStaleOverlay) {
		t.Errorf("err = %v, want ErrStaleOverlay", err)
	}
	if f.project.CountPathLike() != 0 {
		t.Error("stale trace imported paths")
	}
	if f.changed != 0 {
		t.Error("stale trace signalled a change")
	}
}

func TestTraceDiscardedAfterRecreate(t *testing.T) {
	f := newOverlayFixture()
	o := f.overlay(t, 0.5, nil)
	o.Create()

	var err error
	o.TraceToPaper(context.Background(), func(_ *scene.Item, e error) { err = e })
	o.Destroy()
	b, cerr := o.Create()
	if cerr != nil {
		t.Fatalf("Create: %v", cerr)
	}
	b.Dab(20, 20, 5, scene.Black)
	waitQueue(t, f.queue)

	if !errors.Is(err, ErrStaleOverlay) {
		t.Errorf("err = %v, want ErrStaleOverlay", err)
	}
	if f.project.CountPathLike() != 0 {
		t.Error("stale trace imported paths")
	}
	if !inked(o.ImageData()) {
		t.Error("stale trace cleared the new surface")
	}
}

func TestTraceSynchronousWithoutQueue(t *testing.T) {
	f := newOverlayFixture()
	f.queue = nil
	o, err := NewOverlay(OverlayConfig{
		Canvas:  f.canvas,
		Scale:   1,
		Project: f.project,
		Tracer:  f.tracer.tracer(),
	})
	if err != nil {
		t.Fatal(err)
	}
	o.Create()
	var got *scene.Item
	o.TraceToPaper(context.Background(), func(item *scene.Item, _ error) { got = item })
	if got == nil {
		t.Fatal("synchronous trace did not complete before returning")
	}
	// No palette: black stroke on white fill.
	got.EachPathLike(func(it *scene.Item) {
		if *it.StrokeColor != scene.Black || *it.FillColor != scene.White {
			t.Errorf("paint = %v/%v, want black/white", *it.StrokeColor, *it.FillColor)
		}
	})
}

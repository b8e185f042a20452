package quill

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/image/vector"

	"github.com/phanxgames/quill/scene"
	"github.com/phanxgames/quill/telemetry"
	"github.com/phanxgames/quill/trace"
)

// OverlayState is the lifecycle state of an Overlay.
type OverlayState uint8

const (
	OverlayUninitialized OverlayState = iota // constructed, no surface yet
	OverlayCreated                           // surface allocated and tracking canvas size
	OverlayDestroyed                         // surface released
)

// String returns the lower-case state name.
func (s OverlayState) String() string {
	switch s {
	case OverlayUninitialized:
		return "uninitialized"
	case OverlayCreated:
		return "created"
	case OverlayDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// OverlayConfig wires an Overlay to the canvas, project and tracer.
type OverlayConfig struct {
	Canvas *Canvas
	// Scale is the overlay resolution as a fraction of the canvas size, in (0, 1].
	Scale   float64
	Project *scene.Project
	// Palette supplies stroke (primary) and fill (secondary) for traced
	// shapes. Nil uses black on white.
	Palette      *Palette
	Tracer       trace.Tracer
	TraceOptions trace.Options
	// Queue receives trace completions, and the tracer runs on its own
	// goroutine. Nil traces synchronously on the caller's goroutine.
	Queue *TaskQueue
	// Report receives recovered errors. Nil drops them after logging.
	Report func(error)
	// Changed is emitted after a successful import.
	Changed *Signal[struct{}]
	Metrics *telemetry.Metrics
}

// Overlay is a low-resolution raster scratch surface laid over the canvas.
// A tool creates it on activation, paints into it through a Brush, and hands
// the pixels to the tracer to turn them into vector paths.
type Overlay struct {
	cfg   OverlayConfig
	state OverlayState
	// gen identifies the current Created period. Trace results carrying a
	// different generation are discarded.
	gen string

	buf    *image.RGBA
	tex    *ebiten.Image
	dirty  bool
	resize CallbackHandle
}

// NewOverlay returns an uninitialized overlay. The scale must be in (0, 1].
func NewOverlay(cfg OverlayConfig) (*Overlay, error) {
	if !(cfg.Scale > 0 && cfg.Scale <= 1) {
		return nil, &Error{Kind: KindValidation, Op: "overlay", Err: fmt.Errorf("resolution scale %v not in (0, 1]", cfg.Scale)}
	}
	return &Overlay{cfg: cfg}, nil
}

// State returns the lifecycle state.
func (o *Overlay) State() OverlayState {
	return o.state
}

// Scale returns the resolution scale.
func (o *Overlay) Scale() float64 {
	return o.cfg.Scale
}

// Size returns the pixel buffer size, or zeros when not created.
func (o *Overlay) Size() (w, h int) {
	if o.buf == nil {
		return 0, 0
	}
	return o.buf.Rect.Dx(), o.buf.Rect.Dy()
}

// Create allocates the pixel surface at the canvas's displayed size times the
// scale and starts following canvas resizes. It fails with ErrCanvasMissing
// when there is no attached canvas. Calling Create while created returns a
// new brush for the existing surface.
func (o *Overlay) Create() (*Brush, error) {
	if o.state == OverlayCreated {
		return &Brush{o: o, gen: o.gen}, nil
	}
	if !o.cfg.Canvas.Attached() {
		err := &Error{Kind: KindTrace, Op: "overlay create", Err: ErrCanvasMissing}
		o.report(err)
		return nil, err
	}
	o.gen = uuid.NewString()
	o.state = OverlayCreated
	o.updateSize(o.cfg.Canvas.Size())
	o.resize = o.cfg.Canvas.OnResize.Connect(o.updateSize)
	Logger().Debug("overlay created",
		slog.String("gen", o.gen),
		slog.Int("width", o.buf.Rect.Dx()),
		slog.Int("height", o.buf.Rect.Dy()))
	return &Brush{o: o, gen: o.gen}, nil
}

// updateSize re-allocates the buffer for a new canvas size. Contents are
// dropped.
func (o *Overlay) updateSize(sz CanvasSize) {
	if o.state != OverlayCreated {
		return
	}
	w := int(math.Ceil(sz.Width * o.cfg.Scale))
	h := int(math.Ceil(sz.Height * o.cfg.Scale))
	o.buf = image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	o.disposeTexture()
	o.dirty = true
}

// PaperToOverlay maps a project point to overlay pixels.
func (o *Overlay) PaperToOverlay(p scene.Point) scene.Point {
	return p.Mul(o.cfg.Scale)
}

// OverlayToPaper maps overlay pixels back to project coordinates.
func (o *Overlay) OverlayToPaper(p scene.Point) scene.Point {
	return p.Mul(1 / o.cfg.Scale)
}

// Clear erases the pixel buffer, keeping the surface.
func (o *Overlay) Clear() {
	if o.buf == nil {
		return
	}
	clear(o.buf.Pix)
	o.dirty = true
}

// ImageData returns a copy of the pixel buffer, or nil when not created.
func (o *Overlay) ImageData() *image.RGBA {
	if o.buf == nil {
		return nil
	}
	cp := image.NewRGBA(o.buf.Rect)
	copy(cp.Pix, o.buf.Pix)
	return cp
}

// TraceToPaper traces the current pixels into vector paths and imports them
// into the project's active layer, scaled back to project units and painted
// with the palette colors. With a task queue the tracer runs on its own
// goroutine and done runs from the queue. The overlay is cleared after every
// attempt.
// Results are discarded when the overlay was destroyed or re-created while
// tracing. On failure done receives a nil item and the error.
func (o *Overlay) TraceToPaper(ctx context.Context, done func(*scene.Item, error)) {
	if done == nil {
		done = func(*scene.Item, error) {}
	}
	if o.state != OverlayCreated {
		done(nil, o.traceFailed(ErrOverlayNotCreated))
		return
	}
	if !o.cfg.Canvas.Attached() {
		o.Clear()
		done(nil, o.traceFailed(ErrCanvasMissing))
		return
	}
	tr := o.cfg.Tracer
	if tr == nil || !tr.Ready() {
		o.Clear()
		done(nil, o.traceFailed(ErrTracerNotReady))
		return
	}

	gen := o.gen
	pixels := o.ImageData()
	opts := o.cfg.TraceOptions
	ctx, span := telemetry.Tracer().Start(ctx, "quill.overlay.trace")
	span.SetAttributes(
		attribute.Int("overlay.width", pixels.Rect.Dx()),
		attribute.Int("overlay.height", pixels.Rect.Dy()),
	)
	start := time.Now()

	run := func() {
		item, err := safeTrace(ctx, tr, pixels, opts)
		finish := func() {
			o.cfg.Metrics.TraceFinished(ctx, time.Since(start), err == nil)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
			o.finishTrace(gen, item, err, done)
		}
		if o.cfg.Queue == nil {
			finish()
			return
		}
		o.cfg.Queue.Post(finish)
	}
	if o.cfg.Queue == nil {
		run()
		return
	}
	go run()
}

// safeTrace runs the tracer, converting a panic into an error.
func safeTrace(ctx context.Context, tr trace.Tracer, src image.Image, opts trace.Options) (item *scene.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tracer panicked: %v", r)
		}
	}()
	return tr.Trace(ctx, src, opts)
}

// finishTrace runs on the main loop once the tracer returns.
func (o *Overlay) finishTrace(gen string, item *scene.Item, err error, done func(*scene.Item, error)) {
	if o.state != OverlayCreated || o.gen != gen {
		done(nil, o.traceFailed(ErrStaleOverlay))
		return
	}
	defer o.Clear()

	if err != nil {
		done(nil, o.traceFailed(err))
		return
	}
	if item == nil {
		item = scene.NewGroup()
	}

	colors := Colors{Primary: scene.Black, Secondary: scene.White}
	if o.cfg.Palette != nil {
		colors = o.cfg.Palette.Colors()
	}
	s := 1 / o.cfg.Scale
	item.Scale(s, s, scene.Point{})
	item.EachPathLike(func(it *scene.Item) {
		it.SetStrokeColor(colors.Primary)
		it.SetFillColor(colors.Secondary)
	})
	if o.cfg.Project != nil {
		o.cfg.Project.Import(item)
	}
	if o.cfg.Changed != nil {
		o.cfg.Changed.Emit(struct{}{})
	}
	Logger().Debug("overlay traced", slog.String("gen", gen), slog.Int("children", item.NumChildren()))
	done(item, nil)
}

func (o *Overlay) traceFailed(err error) error {
	e := &Error{Kind: KindTrace, Op: "trace", Err: err}
	o.report(e)
	return e
}

func (o *Overlay) report(err error) {
	if o.cfg.Report != nil {
		o.cfg.Report(err)
		return
	}
	Logger().Warn("quill error", slog.Any("err", err))
}

// Destroy releases the surface and stops following canvas resizes. Safe to
// call in any state.
func (o *Overlay) Destroy() {
	if o.state != OverlayCreated {
		return
	}
	o.resize.Remove()
	o.resize = CallbackHandle{}
	o.buf = nil
	o.disposeTexture()
	o.gen = ""
	o.state = OverlayDestroyed
	Logger().Debug("overlay destroyed")
}

func (o *Overlay) disposeTexture() {
	if o.tex != nil {
		o.tex.Deallocate()
		o.tex = nil
	}
}

// Draw composites the overlay over the canvas on dst.
func (o *Overlay) Draw(dst *ebiten.Image) {
	if o.state != OverlayCreated || o.buf == nil || o.buf.Rect.Empty() {
		return
	}
	if o.tex == nil {
		o.tex = ebiten.NewImage(o.buf.Rect.Dx(), o.buf.Rect.Dy())
		o.dirty = true
	}
	if o.dirty {
		o.tex.WritePixels(o.buf.Pix)
		o.dirty = false
	}
	origin := o.cfg.Canvas.Origin()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(1/o.cfg.Scale, 1/o.cfg.Scale)
	op.GeoM.Translate(origin.X, origin.Y)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(o.tex, &op)
}

// --- Brush ---

// Brush paints into an overlay's pixel buffer in overlay pixel coordinates.
// A brush stops painting once its overlay is destroyed or re-created.
type Brush struct {
	o   *Overlay
	gen string
	z   *vector.Rasterizer
}

// Live reports whether the brush's overlay is still the one it was created for.
func (b *Brush) Live() bool {
	return b.o.state == OverlayCreated && b.o.gen == b.gen
}

// Dab paints a filled circle.
func (b *Brush) Dab(x, y, radius float64, c scene.Color) {
	b.fill(c, draw.Over, func(z *vector.Rasterizer) {
		circle(z, x, y, radius)
	})
}

// Line paints a segment of the given width with round caps.
func (b *Brush) Line(x0, y0, x1, y1, width float64, c scene.Color) {
	b.fill(c, draw.Over, func(z *vector.Rasterizer) {
		segment(z, x0, y0, x1, y1, width/2)
	})
}

// Erase clears a circle back to transparent.
func (b *Brush) Erase(x, y, radius float64) {
	b.fill(color.Transparent, draw.Src, func(z *vector.Rasterizer) {
		circle(z, x, y, radius)
	})
}

func (b *Brush) fill(c color.Color, op draw.Op, build func(z *vector.Rasterizer)) {
	if !b.Live() || b.o.buf == nil {
		return
	}
	buf := b.o.buf
	w, h := buf.Rect.Dx(), buf.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	if b.z == nil {
		b.z = vector.NewRasterizer(w, h)
	} else {
		b.z.Reset(w, h)
	}
	b.z.DrawOp = op
	build(b.z)
	b.z.Draw(buf, buf.Rect, image.NewUniform(c), image.Point{})
	b.o.dirty = true
}

// circle adds a polygonal circle, wound counter-clockwise in y-up terms so
// overlapping shapes accumulate rather than cancel.
func circle(z *vector.Rasterizer, cx, cy, r float64) {
	if r <= 0 {
		return
	}
	n := max(8, int(math.Ceil(2*math.Pi*r/2)))
	z.MoveTo(float32(cx+r), float32(cy))
	for i := 1; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		z.LineTo(float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a)))
	}
	z.ClosePath()
}

// segment adds a capsule from (x0, y0) to (x1, y1) with half-width hw.
func segment(z *vector.Rasterizer, x0, y0, x1, y1, hw float64) {
	if hw <= 0 {
		return
	}
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l > 0 {
		nx, ny := -dy/l*hw, dx/l*hw
		z.MoveTo(float32(x0-nx), float32(y0-ny))
		z.LineTo(float32(x1-nx), float32(y1-ny))
		z.LineTo(float32(x1+nx), float32(y1+ny))
		z.LineTo(float32(x0+nx), float32(y0+ny))
		z.ClosePath()
	}
	circle(z, x0, y0, hw)
	circle(z, x1, y1, hw)
}

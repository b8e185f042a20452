package quill

import (
	"log/slog"
	"math"

	"github.com/phanxgames/quill/scene"
)

// --- Hit shapes ---

// HitShape is a region in device coordinates used to mark non-canvas UI.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitPolygon is a convex polygon hit area.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []scene.Point
}

// Contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	var positive, negative bool
	for i := 0; i < n; i++ {
		x1 := p.Points[i].X
		y1 := p.Points[i].Y
		j := (i + 1) % n
		x2 := p.Points[j].X
		y2 := p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// --- UI region registry ---

type uiRegion struct {
	id    uint32
	name  string
	shape HitShape
}

type regionRegistry struct {
	regions []uiRegion
	nextID  uint32
}

func (g *regionRegistry) remove(id uint32) {
	for i := range g.regions {
		if g.regions[i].id == id {
			copy(g.regions[i:], g.regions[i+1:])
			g.regions[len(g.regions)-1] = uiRegion{}
			g.regions = g.regions[:len(g.regions)-1]
			return
		}
	}
}

// at returns the topmost (last added) region containing (x, y).
func (g *regionRegistry) at(x, y float64) (string, bool) {
	for i := len(g.regions) - 1; i >= 0; i-- {
		if g.regions[i].shape.Contains(x, y) {
			return g.regions[i].name, true
		}
	}
	return "", false
}

// --- Router ---

// ViewMapper converts canvas-relative view coordinates to project
// coordinates. *scene.View implements it.
type ViewMapper interface {
	ViewToProject(x, y float64) (float64, float64)
}

// RouterConfig wires a Router to its collaborators.
type RouterConfig struct {
	Canvas  *Canvas
	Tracker *SessionTracker
	Host    *ToolHost
	// View maps canvas coordinates to project coordinates. Nil uses
	// canvas coordinates verbatim.
	View ViewMapper
	// Changed receives the project-changed notification. Nil allocates a
	// signal owned by the router.
	Changed *Signal[struct{}]
}

// Router turns raw platform events into canonical events and routes them to
// the session tracker and the tool host.
type Router struct {
	canvas  *Canvas
	tracker *SessionTracker
	host    *ToolHost
	view    ViewMapper
	changed *Signal[struct{}]
	regions regionRegistry

	injectQueue []injectedEvent

	// OnSessionEnd receives each closed session, after the tracker releases
	// it and before the terminal event is dispatched.
	OnSessionEnd Signal[[]PointerEvent]
}

// NewRouter returns a router and suppresses the canvas context menu.
func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		canvas:  cfg.Canvas,
		tracker: cfg.Tracker,
		host:    cfg.Host,
		view:    cfg.View,
		changed: cfg.Changed,
	}
	if r.tracker == nil {
		r.tracker = NewSessionTracker()
	}
	if r.changed == nil {
		r.changed = &Signal[struct{}]{}
	}
	r.canvas.SuppressContextMenu()
	return r
}

// SetView sets the view used for coordinate mapping. Pass nil to use canvas
// coordinates verbatim.
func (r *Router) SetView(v ViewMapper) {
	r.view = v
}

// ProjectChanged returns the signal emitted after down and up events.
func (r *Router) ProjectChanged() *Signal[struct{}] {
	return r.changed
}

// Tracker returns the router's session tracker.
func (r *Router) Tracker() *SessionTracker {
	return r.tracker
}

// AddUIRegion marks shape (device coordinates) as non-canvas UI. Pointer
// events that start inside it are ignored.
func (r *Router) AddUIRegion(name string, shape HitShape) CallbackHandle {
	r.regions.nextID++
	id := r.regions.nextID
	r.regions.regions = append(r.regions.regions, uiRegion{id: id, name: name, shape: shape})
	return CallbackHandle{id: id, reg: &r.regions}
}

// UIRegionAt returns the name of the UI region at device point (x, y).
func (r *Router) UIRegionAt(x, y float64) (string, bool) {
	return r.regions.at(x, y)
}

// filtered reports whether raw must be dropped before normalization.
// Captured pointers belong to the canvas regardless of what they cross.
func (r *Router) filtered(raw RawPointerEvent) bool {
	if raw.Draggable {
		return true
	}
	if r.canvas.HasCapture(raw.PointerID) {
		return false
	}
	_, inUI := r.regions.at(raw.X, raw.Y)
	return inUI
}

// normalize converts raw to canonical form.
func (r *Router) normalize(raw RawPointerEvent) PointerEvent {
	x, y := r.canvas.ToCanvas(raw.X, raw.Y)
	if r.view != nil {
		x, y = r.view.ViewToProject(x, y)
	}
	pressure := DefaultPressure
	if raw.HasPressure {
		pressure = math.Max(0, math.Min(1, raw.Pressure))
	}
	return PointerEvent{
		Point:     scene.Point{X: x, Y: y},
		Pressure:  pressure,
		Buttons:   raw.Buttons,
		PointerID: raw.PointerID,
		Kind:      raw.Kind,
		TiltX:     raw.TiltX,
		TiltY:     raw.TiltY,
		Raw:       raw.Native,
	}
}

// HandlePointer filters, normalizes and routes one raw pointer event.
// Cancel events are routed as up events.
func (r *Router) HandlePointer(raw RawPointerEvent) {
	if r.filtered(raw) {
		return
	}
	typ := raw.Type.canonical()
	ev := r.normalize(raw)

	switch typ {
	case EventPointerDown:
		r.canvas.CapturePointer(ev.PointerID)
		r.tracker.Start(ev)
	case EventPointerMove:
		r.tracker.Move(ev)
	case EventPointerUp:
		r.canvas.ReleasePointer(ev.PointerID)
		if s, ok := r.tracker.End(ev); ok {
			r.OnSessionEnd.Emit(s)
			Logger().Debug("pointer session closed",
				slog.Int("pointer", int(ev.PointerID)),
				slog.Int("events", len(s)))
		}
	default:
		return
	}

	r.host.DispatchPointer(typ, ev)

	if typ != EventPointerMove {
		r.changed.Emit(struct{}{})
	}
}

// HandleKey normalizes and forwards one raw key event. Key events are never
// filtered.
func (r *Router) HandleKey(raw RawKeyEvent) {
	if raw.Type != EventKeyDown && raw.Type != EventKeyUp {
		return
	}
	r.host.DispatchKey(raw.Type, KeyEvent{
		Key:       raw.Key,
		Code:      raw.Code,
		Modifiers: raw.Modifiers,
		Raw:       raw.Native,
	})
}

package quill

import (
	"os"
	"path/filepath"

	"github.com/phanxgames/quill/scene"
)

// recorder builds tools that log every handler call as "tool:handler".
type recorder struct {
	calls []string
	downs []PointerEvent
	moves []PointerEvent
	ups   []PointerEvent
	keys  []KeyEvent
	color []Colors
}

func (r *recorder) tool(name string) *Tool {
	log := func(h string) { r.calls = append(r.calls, name+":"+h) }
	return &Tool{
		Name:         name,
		OnActivate:   func() error { log("activate"); return nil },
		OnDeactivate: func() error { log("deactivate"); return nil },
		OnPointerDown: func(ev PointerEvent) error {
			log("down")
			r.downs = append(r.downs, ev)
			return nil
		},
		OnPointerMove: func(ev PointerEvent) error {
			log("move")
			r.moves = append(r.moves, ev)
			return nil
		},
		OnPointerUp: func(ev PointerEvent) error {
			log("up")
			r.ups = append(r.ups, ev)
			return nil
		},
		OnKeyDown: func(ev KeyEvent) error {
			log("keydown")
			r.keys = append(r.keys, ev)
			return nil
		},
		OnKeyUp: func(ev KeyEvent) error {
			log("keyup")
			r.keys = append(r.keys, ev)
			return nil
		},
		OnColorChange: func(c Colors) error {
			log("color")
			r.color = append(r.color, c)
			return nil
		},
	}
}

func (r *recorder) reset() {
	*r = recorder{}
}

// errorLog collects everything emitted on a host's error channel.
type errorLog struct {
	errs []error
}

func collectErrors(h *ToolHost) *errorLog {
	l := &errorLog{}
	h.Errors.Connect(func(err error) { l.errs = append(l.errs, err) })
	return l
}

// routerFixture is a router over a 200x100 canvas at (10, 20) with one
// active recording tool named "rec".
type routerFixture struct {
	canvas  *Canvas
	host    *ToolHost
	router  *Router
	rec     *recorder
	changed int
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		canvas: NewCanvas(10, 20, 200, 100),
		host:   NewToolHost(nil),
		rec:    &recorder{},
	}
	f.router = NewRouter(RouterConfig{Canvas: f.canvas, Host: f.host})
	f.router.ProjectChanged().Connect(func(struct{}) { f.changed++ })
	_ = f.host.Register(f.rec.tool("rec"))
	_ = f.host.Activate("rec")
	f.rec.reset()
	return f
}

func rawPointer(typ EventType, x, y float64) RawPointerEvent {
	return RawPointerEvent{Type: typ, X: x, Y: y, Kind: PointerMouse, Buttons: ButtonPrimary}
}

func approxPoint(a, b scene.Point) bool {
	const eps = 1e-9
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx < eps && dx > -eps && dy < eps && dy > -eps
}

func writeFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

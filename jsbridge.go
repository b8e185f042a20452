package quill

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dop251/goja"

	"github.com/phanxgames/quill/scene"
)

// Handler names a tool object may define.
var handlerNames = []string{
	"onActivate", "onDeactivate",
	"onPointerDown", "onPointerMove", "onPointerUp",
	"onKeyDown", "onKeyUp",
	"onColorChange",
}

// toolWrapper is the function a tool's source becomes the body of.
const toolWrapperHead = "(function (paper, project, view, toolHost) {"

// prelude turns the native factories into functions usable with or without new.
const prelude = `(function (paper, native) {
	Object.keys(native).forEach(function (name) {
		var fn = native[name];
		paper[name] = function () { return fn.apply(null, arguments); };
	});
})`

var errInterrupted = errors.New("interrupted")

// env is what a tool's source can reach.
type env struct {
	project *scene.Project
	view    *scene.View
	host    *ToolHost
	palette *Palette
	overlay func(scale float64) (*Overlay, error)
	// post defers work to the main loop. Nil runs it immediately.
	post func(func())
}

// jsRuntime is one isolated goja runtime. Each loaded tool gets its own.
type jsRuntime struct {
	rt      *goja.Runtime
	timeout time.Duration
	name    string
	report  func(error)

	// depth counts nested guard calls. Rejections still unhandled when the
	// outermost call returns are reported.
	depth    int
	rejected []*goja.Promise
}

func newJSRuntime(name string, timeout time.Duration, report func(error)) *jsRuntime {
	rt := goja.New()
	rt.SetFieldNameMapper(goja.UncapFieldNameMapper())
	j := &jsRuntime{rt: rt, timeout: timeout, name: name, report: report}
	rt.SetPromiseRejectionTracker(func(p *goja.Promise, op goja.PromiseRejectionOperation) {
		switch op {
		case goja.PromiseRejectionReject:
			j.rejected = append(j.rejected, p)
		case goja.PromiseRejectionHandle:
			for i, q := range j.rejected {
				if q == p {
					j.rejected = append(j.rejected[:i], j.rejected[i+1:]...)
					break
				}
			}
		}
	})
	return j
}

// flushRejections reports promises rejected without a handler.
func (j *jsRuntime) flushRejections() {
	pending := j.rejected
	j.rejected = nil
	if j.report == nil {
		return
	}
	for _, p := range pending {
		// Errors raised by quill itself were reported when they happened.
		var qe *Error
		if errors.As(goError(p.Result()), &qe) {
			continue
		}
		j.report(&Error{Kind: KindHandler, Op: "promise", Tool: j.name, Err: fmt.Errorf("unhandled rejection: %v", p.Result())})
	}
}

// guard runs fn under the runtime's time budget. A Go panic raised by a
// binding becomes an error.
func (j *jsRuntime) guard(fn func() (goja.Value, error)) (v goja.Value, err error) {
	j.depth++
	defer func() {
		j.depth--
		if j.depth == 0 {
			j.flushRejections()
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	if j.timeout > 0 {
		fired := make(chan struct{})
		t := time.AfterFunc(j.timeout, func() {
			j.rt.Interrupt(errInterrupted)
			close(fired)
		})
		defer func() {
			if !t.Stop() {
				<-fired
				j.rt.ClearInterrupt()
			}
		}()
	}
	v, err = fn()
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		err = fmt.Errorf("%w (%s)", ErrToolTimeout, j.timeout)
	}
	return v, err
}

// evaluate compiles src as the body of the tool wrapper and calls it with the
// four bindings. It returns the value the source produced.
func (j *jsRuntime) evaluate(src string, e env) (goja.Value, error) {
	prog, err := goja.Compile(j.name, toolWrapperHead+src+"\n})", false)
	if err != nil {
		return nil, err
	}
	wrapper, err := j.guard(func() (goja.Value, error) { return j.rt.RunProgram(prog) })
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(wrapper)
	if !ok {
		return nil, fmt.Errorf("tool wrapper is not a function")
	}
	paper, err := j.paper(e)
	if err != nil {
		return nil, err
	}
	return j.guard(func() (goja.Value, error) {
		return fn(goja.Undefined(),
			paper,
			j.rt.ToValue(e.project),
			j.rt.ToValue(e.view),
			j.toolHost(e.host),
		)
	})
}

// toolObject returns v as a tool object and its name. Primitives and objects
// without a non-empty string name are not tools. Functions are rejected even
// though they carry a name property.
func toolObject(v goja.Value) (*goja.Object, string, bool) {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil {
		return nil, "", false
	}
	if _, isFn := goja.AssertFunction(obj); isFn {
		return nil, "", false
	}
	nv := obj.Get("name")
	if nv == nil {
		return nil, "", false
	}
	name, ok := nv.Export().(string)
	if !ok || name == "" {
		return nil, "", false
	}
	return obj, name, true
}

// handlers returns the handler functions obj defines, keyed by name.
func handlers(obj *goja.Object) map[string]goja.Callable {
	out := make(map[string]goja.Callable)
	for _, h := range handlerNames {
		v := obj.Get(h)
		if v == nil {
			continue
		}
		if fn, ok := goja.AssertFunction(v); ok {
			out[h] = fn
		}
	}
	return out
}

// tool builds a Tool whose handlers call into obj.
func (j *jsRuntime) tool(obj *goja.Object, name string) *Tool {
	hs := handlers(obj)
	t := &Tool{Name: name}
	call := func(fn goja.Callable, args ...goja.Value) error {
		_, err := j.guard(func() (goja.Value, error) { return fn(obj, args...) })
		return err
	}
	if fn, ok := hs["onActivate"]; ok {
		t.OnActivate = func() error { return call(fn) }
	}
	if fn, ok := hs["onDeactivate"]; ok {
		t.OnDeactivate = func() error { return call(fn) }
	}
	pointer := func(fn goja.Callable) func(PointerEvent) error {
		return func(ev PointerEvent) error { return call(fn, j.pointerEvent(ev)) }
	}
	if fn, ok := hs["onPointerDown"]; ok {
		t.OnPointerDown = pointer(fn)
	}
	if fn, ok := hs["onPointerMove"]; ok {
		t.OnPointerMove = pointer(fn)
	}
	if fn, ok := hs["onPointerUp"]; ok {
		t.OnPointerUp = pointer(fn)
	}
	key := func(fn goja.Callable) func(KeyEvent) error {
		return func(ev KeyEvent) error { return call(fn, j.keyEvent(ev)) }
	}
	if fn, ok := hs["onKeyDown"]; ok {
		t.OnKeyDown = key(fn)
	}
	if fn, ok := hs["onKeyUp"]; ok {
		t.OnKeyUp = key(fn)
	}
	if fn, ok := hs["onColorChange"]; ok {
		t.OnColorChange = func(c Colors) error { return call(fn, j.colorEvent(c)) }
	}
	return t
}

// --- Events ---

func (j *jsRuntime) pointerEvent(ev PointerEvent) goja.Value {
	o := j.rt.NewObject()
	_ = o.Set("point", ev.Point)
	_ = o.Set("pressure", ev.Pressure)
	_ = o.Set("buttons", int(ev.Buttons))
	_ = o.Set("pointerId", int(ev.PointerID))
	_ = o.Set("pointerType", ev.Kind.String())
	_ = o.Set("tiltX", ev.TiltX)
	_ = o.Set("tiltY", ev.TiltY)
	_ = o.Set("event", ev.Raw)
	return o
}

func (j *jsRuntime) keyEvent(ev KeyEvent) goja.Value {
	mods := j.rt.NewObject()
	_ = mods.Set("ctrl", ev.Modifiers.Ctrl())
	_ = mods.Set("shift", ev.Modifiers.Shift())
	_ = mods.Set("alt", ev.Modifiers.Alt())
	_ = mods.Set("meta", ev.Modifiers.Meta())

	o := j.rt.NewObject()
	_ = o.Set("key", ev.Key)
	_ = o.Set("code", ev.Code)
	_ = o.Set("modifiers", mods)
	_ = o.Set("event", ev.Raw)
	return o
}

func (j *jsRuntime) colorEvent(c Colors) goja.Value {
	o := j.rt.NewObject()
	_ = o.Set("primary", c.Primary)
	_ = o.Set("secondary", c.Secondary)
	return o
}

// --- Bindings ---

// paper builds the scene library binding.
func (j *jsRuntime) paper(e env) (*goja.Object, error) {
	native := j.rt.NewObject()
	set := func(name string, fn func(goja.FunctionCall) goja.Value) {
		_ = native.Set(name, fn)
	}

	set("Point", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 1 {
			if p, ok := j.toPoint(call.Argument(0)); ok {
				return j.rt.ToValue(p)
			}
		}
		return j.rt.ToValue(scene.Point{X: call.Argument(0).ToFloat(), Y: call.Argument(1).ToFloat()})
	})
	set("Color", func(call goja.FunctionCall) goja.Value {
		if s, ok := call.Argument(0).Export().(string); ok {
			c, err := scene.ParseHexColor(s)
			if err != nil {
				panic(j.rt.NewGoError(err))
			}
			return j.rt.ToValue(c)
		}
		a := 1.0
		if len(call.Arguments) > 3 {
			a = call.Argument(3).ToFloat()
		}
		return j.rt.ToValue(scene.Color{
			R: call.Argument(0).ToFloat(),
			G: call.Argument(1).ToFloat(),
			B: call.Argument(2).ToFloat(),
			A: a,
		})
	})
	set("Path", func(call goja.FunctionCall) goja.Value {
		var pts []scene.Point
		for _, v := range j.flatten(call.Arguments) {
			if p, ok := j.toPoint(v); ok {
				pts = append(pts, p)
			}
		}
		return j.rt.ToValue(j.insert(e, scene.NewPath(pts...)))
	})
	set("CompoundPath", func(call goja.FunctionCall) goja.Value {
		return j.rt.ToValue(j.insert(e, scene.NewCompoundPath(j.items(call.Arguments)...)))
	})
	set("Group", func(call goja.FunctionCall) goja.Value {
		return j.rt.ToValue(j.insert(e, scene.NewGroup(j.items(call.Arguments)...)))
	})
	set("Layer", func(call goja.FunctionCall) goja.Value {
		name := ""
		if len(call.Arguments) > 0 {
			name = call.Argument(0).String()
		}
		if e.project == nil {
			return j.rt.ToValue(scene.NewLayer(name))
		}
		return j.rt.ToValue(e.project.AddLayer(name))
	})
	set("Overlay", func(call goja.FunctionCall) goja.Value {
		scale := 1.0
		if len(call.Arguments) > 0 {
			scale = call.Argument(0).ToFloat()
		}
		if e.overlay == nil {
			panic(j.rt.NewTypeError("overlays are not available"))
		}
		o, err := e.overlay(scale)
		if err != nil {
			panic(j.rt.NewGoError(err))
		}
		return j.overlay(o, e.post)
	})

	paper := j.rt.NewObject()
	_ = paper.Set("palette", e.palette)

	v, err := j.rt.RunString(prelude)
	if err != nil {
		return nil, err
	}
	install, _ := goja.AssertFunction(v)
	if _, err := install(goja.Undefined(), paper, native); err != nil {
		return nil, err
	}
	return paper, nil
}

// insert adds item to the project's active layer when there is a project.
func (j *jsRuntime) insert(e env, item *scene.Item) *scene.Item {
	if e.project != nil {
		e.project.ActiveLayer().AddChild(item)
	}
	return item
}

// flatten expands array arguments into their elements.
func (j *jsRuntime) flatten(args []goja.Value) []goja.Value {
	var out []goja.Value
	for _, a := range args {
		obj, ok := a.(*goja.Object)
		if !ok || obj.ClassName() != "Array" {
			out = append(out, a)
			continue
		}
		n := int(obj.Get("length").ToInteger())
		for i := 0; i < n; i++ {
			out = append(out, obj.Get(strconv.Itoa(i)))
		}
	}
	return out
}

// items returns the scene items among args, expanding arrays.
func (j *jsRuntime) items(args []goja.Value) []*scene.Item {
	var out []*scene.Item
	for _, v := range j.flatten(args) {
		if it, ok := v.Export().(*scene.Item); ok && it != nil {
			out = append(out, it)
		}
	}
	return out
}

// toPoint accepts a wrapped scene.Point or any object with numeric x and y.
func (j *jsRuntime) toPoint(v goja.Value) (scene.Point, bool) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return scene.Point{}, false
	}
	switch p := v.Export().(type) {
	case scene.Point:
		return p, true
	case *scene.Point:
		if p != nil {
			return *p, true
		}
		return scene.Point{}, false
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return scene.Point{}, false
	}
	x, y := obj.Get("x"), obj.Get("y")
	if x == nil || y == nil {
		return scene.Point{}, false
	}
	return scene.Point{X: x.ToFloat(), Y: y.ToFloat()}, true
}

// toolHost exposes the host's registry and activation surface.
func (j *jsRuntime) toolHost(h *ToolHost) goja.Value {
	if h == nil {
		return goja.Null()
	}
	o := j.rt.NewObject()
	_ = o.Set("register", func(v goja.Value) {
		obj, name, ok := toolObject(v)
		if !ok {
			err := &Error{Kind: KindValidation, Op: "register", Err: ErrEmptyName}
			h.Report(err)
			panic(j.rt.NewGoError(err))
		}
		if err := h.Register(j.tool(obj, name)); err != nil {
			panic(j.rt.NewGoError(err))
		}
	})
	_ = o.Set("activate", func(name string) {
		if err := h.Activate(name); err != nil {
			panic(j.rt.NewGoError(err))
		}
	})
	_ = o.Set("deactivate", h.Deactivate)
	_ = o.Set("getActiveTool", func() goja.Value {
		t := h.ActiveTool()
		if t == nil {
			return goja.Null()
		}
		d := j.rt.NewObject()
		_ = d.Set("name", t.Name)
		return d
	})
	activeName := func() goja.Value {
		name, ok := h.ActiveToolName()
		if !ok {
			return goja.Null()
		}
		return j.rt.ToValue(name)
	}
	_ = o.Set("getActiveToolName", activeName)
	_ = o.Set("activeToolName", activeName)
	_ = o.Set("tools", h.Tools)
	return o
}

// overlay exposes o with promise-based tracing.
func (j *jsRuntime) overlay(o *Overlay, post func(func())) goja.Value {
	obj := j.rt.NewObject()
	_ = obj.Set("scale", o.Scale())
	_ = obj.Set("create", func() goja.Value {
		b, err := o.Create()
		if err != nil {
			return goja.Null()
		}
		return j.rt.ToValue(b)
	})
	_ = obj.Set("paperToOverlay", func(call goja.FunctionCall) goja.Value {
		p, _ := j.toPoint(call.Argument(0))
		return j.rt.ToValue(o.PaperToOverlay(p))
	})
	_ = obj.Set("overlayToPaper", func(call goja.FunctionCall) goja.Value {
		p, _ := j.toPoint(call.Argument(0))
		return j.rt.ToValue(o.OverlayToPaper(p))
	})
	_ = obj.Set("clear", o.Clear)
	_ = obj.Set("imageData", func() goja.Value {
		img := o.ImageData()
		if img == nil {
			return goja.Null()
		}
		d := j.rt.NewObject()
		_ = d.Set("width", img.Rect.Dx())
		_ = d.Set("height", img.Rect.Dy())
		_ = d.Set("data", j.rt.NewArrayBuffer(img.Pix))
		return d
	})
	_ = obj.Set("traceToPaper", func() goja.Value {
		promise, resolve, reject := j.newPromise()
		returned := false
		o.TraceToPaper(context.Background(), func(item *scene.Item, err error) {
			settle := func() {
				_, _ = j.guard(func() (goja.Value, error) {
					if err != nil {
						return reject(goja.Undefined(), j.rt.NewGoError(err))
					}
					return resolve(goja.Undefined(), j.rt.ToValue(item))
				})
			}
			// Settle after the caller had a chance to attach handlers.
			if !returned && post != nil {
				post(settle)
				return
			}
			settle()
		})
		returned = true
		return promise
	})
	_ = obj.Set("destroy", o.Destroy)
	_ = obj.Set("state", func() string { return o.State().String() })
	return obj
}

// newPromise creates a pending promise. Its resolving functions are called
// through the runtime so reaction jobs run as soon as they settle it.
func (j *jsRuntime) newPromise() (promise *goja.Object, resolve, reject goja.Callable) {
	executor := func(call goja.FunctionCall) goja.Value {
		resolve, _ = goja.AssertFunction(call.Argument(0))
		reject, _ = goja.AssertFunction(call.Argument(1))
		return goja.Undefined()
	}
	ctor, ok := goja.AssertConstructor(j.rt.Get("Promise"))
	if !ok {
		panic(j.rt.NewTypeError("Promise is not a constructor"))
	}
	promise, err := ctor(nil, j.rt.ToValue(executor))
	if err != nil {
		panic(err)
	}
	return promise, resolve, reject
}

// goError returns the Go error wrapped by a value created with NewGoError.
func goError(v goja.Value) error {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	inner := obj.Get("value")
	if inner == nil {
		return nil
	}
	err, _ := inner.Export().(error)
	return err
}

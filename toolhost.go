package quill

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/phanxgames/quill/telemetry"
)

// ToolHost owns the tool registry and the single active tool, and delivers
// events to it. It is either idle (no active tool) or active.
type ToolHost struct {
	tools  map[string]*Tool
	active *Tool

	// Errors is the user-visible error channel. Every error the host,
	// loader and overlays recover from is emitted here once.
	Errors Signal[error]

	metrics *telemetry.Metrics
}

// NewToolHost returns an idle host with an empty registry. metrics may be nil.
func NewToolHost(metrics *telemetry.Metrics) *ToolHost {
	return &ToolHost{
		tools:   make(map[string]*Tool),
		metrics: metrics,
	}
}

// Register adds t to the registry, replacing any tool with the same name.
// The active tool is not affected, even when it is the one being replaced.
func (h *ToolHost) Register(t *Tool) error {
	if t == nil || t.Name == "" {
		err := &Error{Kind: KindValidation, Op: "register", Err: ErrEmptyName}
		h.Report(err)
		return err
	}
	h.tools[t.Name] = t
	Logger().Debug("tool registered", slog.String("tool", t.Name))
	return nil
}

// Activate makes the named tool active. The previous tool's OnDeactivate runs
// first, then the new tool's OnActivate; failures in either are reported and
// do not stop the switch. An unknown name is reported and leaves the active
// tool unchanged.
func (h *ToolHost) Activate(name string) error {
	t, ok := h.tools[name]
	if !ok {
		err := &Error{Kind: KindActivation, Op: "activate", Tool: name, Err: ErrUnknownTool}
		h.Report(err)
		return err
	}
	if prev := h.active; prev != nil {
		h.call(prev, "deactivate", prev.OnDeactivate)
	}
	h.active = t
	Logger().Info("tool activated", slog.String("tool", name))
	h.call(t, "activate", t.OnActivate)
	return nil
}

// Deactivate returns the host to idle, running the active tool's
// OnDeactivate. No-op when idle.
func (h *ToolHost) Deactivate() {
	prev := h.active
	if prev == nil {
		return
	}
	h.active = nil
	h.call(prev, "deactivate", prev.OnDeactivate)
}

// ActiveTool returns the active tool, or nil when idle.
func (h *ToolHost) ActiveTool() *Tool {
	return h.active
}

// ActiveToolName returns the active tool's name. ok is false when idle.
func (h *ToolHost) ActiveToolName() (name string, ok bool) {
	if h.active == nil {
		return "", false
	}
	return h.active.Name, true
}

// Lookup returns the registered tool with the given name.
func (h *ToolHost) Lookup(name string) (*Tool, bool) {
	t, ok := h.tools[name]
	return t, ok
}

// Tools returns the registered tool names in sorted order.
func (h *ToolHost) Tools() []string {
	names := make([]string, 0, len(h.tools))
	for name := range h.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DispatchPointer delivers ev to the active tool's handler for typ. No-op when
// idle or when the tool has no such handler.
func (h *ToolHost) DispatchPointer(typ EventType, ev PointerEvent) {
	t := h.active
	if t == nil {
		return
	}
	typ = typ.canonical()
	h.metrics.Dispatch(t.Name, typ.String())
	fn := t.pointerHandler(typ)
	if fn == nil {
		return
	}
	h.call(t, typ.String(), func() error { return fn(ev) })
}

// DispatchKey delivers ev to the active tool's handler for typ.
func (h *ToolHost) DispatchKey(typ EventType, ev KeyEvent) {
	t := h.active
	if t == nil {
		return
	}
	h.metrics.Dispatch(t.Name, typ.String())
	fn := t.keyHandler(typ)
	if fn == nil {
		return
	}
	h.call(t, typ.String(), func() error { return fn(ev) })
}

// DispatchColorChange delivers c to the active tool if it implements the
// color-change capability.
func (h *ToolHost) DispatchColorChange(c Colors) {
	t := h.active
	if t == nil || t.OnColorChange == nil {
		return
	}
	h.metrics.Dispatch(t.Name, "colorchange")
	h.call(t, "colorchange", func() error { return t.OnColorChange(c) })
}

// Report emits err on the error channel and logs it. Nil errors are ignored.
func (h *ToolHost) Report(err error) {
	if err == nil {
		return
	}
	Logger().Warn("quill error", slog.Any("err", err))
	h.Errors.Emit(err)
}

// call runs fn for tool t, turning a returned error or a panic into a
// reported handler error.
func (h *ToolHost) call(t *Tool, op string, fn func() error) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.handlerFailed(t, op, fmt.Errorf("%w: %v", ErrHandlerPanic, r))
		}
	}()
	if err := fn(); err != nil {
		h.handlerFailed(t, op, err)
	}
}

func (h *ToolHost) handlerFailed(t *Tool, op string, err error) {
	h.metrics.HandlerError(t.Name, op)
	h.Report(&Error{Kind: KindHandler, Op: op, Tool: t.Name, Err: err})
}

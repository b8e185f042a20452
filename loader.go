package quill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/phanxgames/quill/scene"
	"github.com/phanxgames/quill/telemetry"
	"github.com/phanxgames/quill/trace"
)

// DefaultToolTimeout bounds each call into tool code when LoaderConfig.Timeout
// is zero.
const DefaultToolTimeout = 2 * time.Second

// LoaderConfig holds what loaded tools are given access to.
type LoaderConfig struct {
	Host    *ToolHost
	Project *scene.Project
	View    *scene.View
	Canvas  *Canvas
	Palette *Palette

	// Overlays created by tools trace with Tracer and post completions to
	// Queue.
	Tracer       trace.Tracer
	TraceOptions trace.Options
	Queue        *TaskQueue
	Changed      *Signal[struct{}]

	// Timeout bounds loading and every handler call. Zero selects
	// DefaultToolTimeout; negative disables the limit.
	Timeout time.Duration
	Metrics *telemetry.Metrics
}

// Loader compiles JavaScript tool source into tools. Each source runs in its
// own runtime and sees exactly four bindings: paper (the scene library),
// project, view and toolHost.
type Loader struct {
	cfg      LoaderConfig
	overlays []*Overlay
}

// NewLoader returns a loader registering into cfg.Host.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultToolTimeout
	}
	return &Loader{cfg: cfg}
}

func (l *Loader) env() env {
	e := env{
		project: l.cfg.Project,
		view:    l.cfg.View,
		host:    l.cfg.Host,
		palette: l.cfg.Palette,
		overlay: l.newOverlay,
	}
	if l.cfg.Queue != nil {
		e.post = l.cfg.Queue.Post
	}
	return e
}

// newOverlay creates an overlay for a tool and keeps track of it for drawing.
// Destroyed overlays are dropped from the list.
func (l *Loader) newOverlay(scale float64) (*Overlay, error) {
	o, err := NewOverlay(OverlayConfig{
		Canvas:       l.cfg.Canvas,
		Scale:        scale,
		Project:      l.cfg.Project,
		Palette:      l.cfg.Palette,
		Tracer:       l.cfg.Tracer,
		TraceOptions: l.cfg.TraceOptions,
		Queue:        l.cfg.Queue,
		Report:       l.cfg.Host.Report,
		Changed:      l.cfg.Changed,
		Metrics:      l.cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	live := l.overlays[:0]
	for _, x := range l.overlays {
		if x.State() != OverlayDestroyed {
			live = append(live, x)
		}
	}
	l.overlays = append(live, o)
	return o, nil
}

// Overlays returns the overlays tools have created. Destroyed overlays are
// pruned when the next one is created; drawing them is a no-op.
func (l *Loader) Overlays() []*Overlay {
	return l.overlays
}

// Load evaluates src. If it produces an object with a non-empty string name,
// that object becomes a tool which is registered, replacing any tool of the
// same name, and activated. Any other result is a no-op and returns a nil
// tool. Compile and runtime errors are reported as load errors and leave the
// active tool untouched. name labels the source in errors and stack traces.
func (l *Loader) Load(name, src string) (*Tool, error) {
	_, span := telemetry.Tracer().Start(context.Background(), "quill.tool.load")
	defer span.End()
	span.SetAttributes(attribute.String("tool.source", name))

	j := newJSRuntime(name, l.cfg.Timeout, l.cfg.Host.Report)
	v, err := j.evaluate(src, l.env())
	if err != nil {
		l.cfg.Metrics.ToolLoad("failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e := &Error{Kind: KindLoad, Op: "load", Tool: name, Err: err}
		l.cfg.Host.Report(e)
		return nil, e
	}

	obj, toolName, ok := toolObject(v)
	if !ok {
		l.cfg.Metrics.ToolLoad("empty")
		Logger().Info("source produced no tool", slog.String("source", name))
		return nil, nil
	}
	t := j.tool(obj, toolName)
	if err := l.cfg.Host.Register(t); err != nil {
		return nil, err
	}
	_ = l.cfg.Host.Activate(t.Name)
	l.cfg.Metrics.ToolLoad("ok")
	span.SetAttributes(attribute.String("tool.name", t.Name))
	Logger().Info("tool loaded", slog.String("tool", t.Name), slog.String("source", name))
	return t, nil
}

// LoadFile loads the tool source at path.
func (l *Loader) LoadFile(path string) (*Tool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		e := &Error{Kind: KindLoad, Op: "load", Tool: path, Err: err}
		l.cfg.Host.Report(e)
		return nil, e
	}
	return l.Load(path, string(src))
}

// LoadDir loads every *.js file in dir in lexical order. A failing file does
// not stop the others; the failures are joined in the returned error. The
// last tool loaded is left active.
func (l *Loader) LoadDir(dir string) ([]*Tool, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.js"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	var tools []*Tool
	var errs []error
	for _, p := range paths {
		t, err := l.LoadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if t != nil {
			tools = append(tools, t)
		}
	}
	return tools, errors.Join(errs...)
}

// ToolInfo describes a tool source without loading it into a host.
type ToolInfo struct {
	// Name is empty when the source produces no tool.
	Name     string
	Handlers []string
}

// String formats the info for display.
func (i ToolInfo) String() string {
	if i.Name == "" {
		return "no tool"
	}
	return fmt.Sprintf("%s [%s]", i.Name, strings.Join(i.Handlers, ", "))
}

// Check evaluates src against a scratch project and host and reports the tool
// it would produce. Nothing is registered in the loader's host.
func Check(name, src string, timeout time.Duration) (ToolInfo, error) {
	if timeout == 0 {
		timeout = DefaultToolTimeout
	}
	j := newJSRuntime(name, timeout, nil)
	v, err := j.evaluate(src, env{
		project: scene.NewProject(),
		view:    scene.NewView(800, 600),
		host:    NewToolHost(nil),
		palette: NewPalette(scene.Black, scene.White),
	})
	if err != nil {
		return ToolInfo{}, &Error{Kind: KindLoad, Op: "check", Tool: name, Err: err}
	}
	obj, toolName, ok := toolObject(v)
	if !ok {
		return ToolInfo{}, nil
	}
	info := ToolInfo{Name: toolName}
	hs := handlers(obj)
	for _, h := range handlerNames {
		if _, ok := hs[h]; ok {
			info.Handlers = append(info.Handlers, h)
		}
	}
	return info, nil
}

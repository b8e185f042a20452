package quill

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/quill/scene"
	"github.com/phanxgames/quill/telemetry"
	"github.com/phanxgames/quill/trace"
)

// AppConfig configures NewApp.
type AppConfig struct {
	// CanvasX, CanvasY, Width and Height place the canvas in the window.
	CanvasX, CanvasY float64
	Width, Height    float64

	Primary, Secondary scene.Color
	Background         scene.Color

	Tracer       trace.Tracer
	TraceOptions trace.Options
	// ToolTimeout bounds every call into tool code. See LoaderConfig.Timeout.
	ToolTimeout time.Duration
	Metrics     *telemetry.Metrics
}

// App wires the canvas, project, view, tool host, router and loader together
// and drives them from the ebiten game loop.
type App struct {
	Project *scene.Project
	View    *scene.View
	Canvas  *Canvas
	Palette *Palette
	Host    *ToolHost
	Router  *Router
	Loader  *Loader
	Tasks   *TaskQueue

	// Changed fires after any operation that may have changed the project.
	Changed Signal[struct{}]

	// ScreenshotDir is where Screenshot writes PNGs. Empty means
	// DefaultScreenshotDir.
	ScreenshotDir string
	screenshotQueue []string

	background scene.Color
	canvasImg  *ebiten.Image
	input      inputSource
	runner     *TestRunner
	debug      bool
	hud        hud
}

// inputSource feeds platform input into a router once per frame.
type inputSource interface {
	poll(r *Router)
}

// NewApp builds an app with an empty project and no tools.
func NewApp(cfg AppConfig) *App {
	if cfg.Primary == (scene.Color{}) && cfg.Secondary == (scene.Color{}) {
		cfg.Primary, cfg.Secondary = scene.Black, scene.White
	}
	if cfg.Background == (scene.Color{}) {
		cfg.Background = scene.White
	}

	a := &App{
		Project:    scene.NewProject(),
		View:       scene.NewView(cfg.Width, cfg.Height),
		Canvas:     NewCanvas(cfg.CanvasX, cfg.CanvasY, cfg.Width, cfg.Height),
		Palette:    NewPalette(cfg.Primary, cfg.Secondary),
		Host:       NewToolHost(cfg.Metrics),
		Tasks:      &TaskQueue{},
		background: cfg.Background,
	}
	a.Router = NewRouter(RouterConfig{
		Canvas:  a.Canvas,
		Host:    a.Host,
		View:    a.View,
		Changed: &a.Changed,
	})
	a.Loader = NewLoader(LoaderConfig{
		Host:         a.Host,
		Project:      a.Project,
		View:         a.View,
		Canvas:       a.Canvas,
		Palette:      a.Palette,
		Tracer:       cfg.Tracer,
		TraceOptions: cfg.TraceOptions,
		Queue:        a.Tasks,
		Changed:      &a.Changed,
		Timeout:      cfg.ToolTimeout,
		Metrics:      cfg.Metrics,
	})

	a.Palette.OnChange.Connect(a.Host.DispatchColorChange)
	a.Canvas.OnResize.Connect(func(sz CanvasSize) {
		a.View.SetViewSize(sz.Width, sz.Height)
	})
	return a
}

// SetTestRunner attaches a scripted input runner. Its steps run from Update
// before platform input is polled.
func (a *App) SetTestRunner(r *TestRunner) {
	a.runner = r
}

// SetDebugMode enables per-frame diagnostics at debug log level.
func (a *App) SetDebugMode(enabled bool) {
	a.debug = enabled
}

// Update advances one frame.
func (a *App) Update() {
	a.step(float32(1.0/float64(ebiten.TPS())), a.input)
}

// step drains completed background work, advances view animations, runs the
// test runner, then routes one injected event or the platform's input.
func (a *App) step(dt float32, in inputSource) {
	var stats frameStats
	stats.tasks = a.Tasks.Drain()
	a.View.Update(dt)
	if a.runner != nil {
		a.runner.step(a)
	}
	if a.Router.processInjected() {
		stats.injected = true
	} else if in != nil {
		in.poll(a.Router)
	}
	if a.debug {
		stats.sessions = a.Router.Tracker().Len()
		stats.tool, _ = a.Host.ActiveToolName()
		a.debugLog(stats)
		a.hud.update(float64(dt), stats)
	}
}

// Draw renders the project through the view onto the canvas area of screen,
// then any live overlays above it.
func (a *App) Draw(screen *ebiten.Image) {
	sz := a.Canvas.Size()
	w, h := int(sz.Width), int(sz.Height)
	if w <= 0 || h <= 0 {
		return
	}
	if a.canvasImg == nil || a.canvasImg.Bounds().Dx() != w || a.canvasImg.Bounds().Dy() != h {
		if a.canvasImg != nil {
			a.canvasImg.Deallocate()
		}
		a.canvasImg = ebiten.NewImage(w, h)
	}
	a.canvasImg.Fill(a.background)
	a.View.Draw(a.canvasImg, a.Project)

	origin := a.Canvas.Origin()
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(origin.X, origin.Y)
	screen.DrawImage(a.canvasImg, &op)

	for _, o := range a.Loader.Overlays() {
		o.Draw(screen)
	}
	if a.debug {
		a.hud.draw(screen)
	}
	a.flushScreenshots(screen)
}

// Close deactivates the active tool so it can release its overlay.
func (a *App) Close() {
	a.Host.Deactivate()
	a.Tasks.Drain()
}

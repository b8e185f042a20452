package quill

import "github.com/hajimehoshi/ebiten/v2"

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// FitCanvas resizes the canvas to fill the window from its origin
	// whenever the window size changes.
	FitCanvas bool
	Debug     bool
}

// game adapts an App to ebiten.Game.
type game struct {
	app *App
	cfg RunConfig
}

func (g *game) Update() error {
	g.app.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.app.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.cfg.FitCanvas {
		o := g.app.Canvas.Origin()
		g.app.Canvas.SetBounds(o.X, o.Y, float64(outsideWidth)-o.X, float64(outsideHeight)-o.Y)
	}
	return outsideWidth, outsideHeight
}

// Run opens a window and drives app until the window closes. The active tool
// is deactivated on exit.
func Run(app *App, cfg RunConfig) error {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	app.SetDebugMode(cfg.Debug)
	if app.input == nil {
		app.input = newEbitenInput()
	}
	defer app.Close()
	return ebiten.RunGame(&game{app: app, cfg: cfg})
}

package quill

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// frameStats holds per-frame counters. Only logged when debug mode is on.
type frameStats struct {
	tasks    int
	injected bool
	sessions int
	tool     string
}

// debugLog writes frame stats at debug level. Idle frames are skipped.
func (a *App) debugLog(stats frameStats) {
	if stats.tasks == 0 && !stats.injected && stats.sessions == 0 {
		return
	}
	Logger().Debug("frame",
		slog.Int("tasks", stats.tasks),
		slog.Bool("injected", stats.injected),
		slog.Int("sessions", stats.sessions),
		slog.String("tool", stats.tool),
	)
}

// hudRefresh is how often the debug HUD text is rebuilt, in seconds.
const hudRefresh = 0.5

// hud is the debug-mode status panel drawn in the window's top-left corner.
type hud struct {
	img     *ebiten.Image
	elapsed float64
	text    string
	stale   bool
}

func (h *hud) update(dt float64, stats frameStats) {
	h.elapsed += dt
	if h.text != "" && h.elapsed < hudRefresh {
		return
	}
	h.elapsed = 0
	tool := stats.tool
	if tool == "" {
		tool = "-"
	}
	h.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\ntool: %s\nsessions: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(), tool, stats.sessions)
	h.stale = true
}

func (h *hud) draw(screen *ebiten.Image) {
	if h.text == "" {
		return
	}
	if h.img == nil {
		// 160x64 fits four lines of the debug font.
		h.img = ebiten.NewImage(160, 64)
	}
	if h.stale {
		h.img.Clear()
		// Semi-transparent background for readability
		h.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(h.img, h.text)
		h.stale = false
	}
	screen.DrawImage(h.img, nil)
}

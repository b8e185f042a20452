package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phanxgames/quill"
	"github.com/phanxgames/quill/config"
	"github.com/phanxgames/quill/trace"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the drawing window",
		Args:  cobra.NoArgs,
		RunE:  runWindow,
	}
	cmd.Flags().String("tools", "", "Directory of *.js tools (overrides tools.dir)")
	cmd.Flags().String("tool", "", "Tool to activate on start (overrides tools.default)")
	cmd.Flags().String("script", "", "JSON test script to replay against the canvas")
	cmd.Flags().Bool("metrics", false, "Print metric totals on exit")
	return cmd
}

func runWindow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("tools"); dir != "" {
		cfg.Tools.Dir = dir
	}
	if name, _ := cmd.Flags().GetString("tool"); name != "" {
		cfg.Tools.Default = name
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tel, err := setupTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if printMetrics, _ := cmd.Flags().GetBool("metrics"); printMetrics {
			_ = tel.Summary(ctx, cmd.OutOrStdout())
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			quill.Logger().Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	app, err := buildApp(ctx, cfg, tel)
	if err != nil {
		return err
	}
	if script, _ := cmd.Flags().GetString("script"); script != "" {
		data, err := os.ReadFile(script)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		runner, err := quill.LoadTestScript(data)
		if err != nil {
			return err
		}
		app.SetTestRunner(runner)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	return quill.Run(app, quill.RunConfig{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		FitCanvas: cfg.Canvas.Fit,
		Debug:     verbose,
	})
}

// buildApp assembles an App from cfg: tracer, palette, UI regions and tools.
func buildApp(ctx context.Context, cfg config.Config, tel *telemetrySetup) (*quill.App, error) {
	timeout, err := cfg.ToolTimeout()
	if err != nil {
		return nil, err
	}
	primary, secondary, background := cfg.Colors()

	tracer := trace.NewPotrace(cfg.Trace.Binary)
	if err := tracer.Init(ctx); err != nil {
		// Tools still load; traceToPaper fails until a tracer is available.
		quill.Logger().Warn("tracer unavailable", slog.String("binary", cfg.Trace.Binary), slog.Any("error", err))
	}

	app := quill.NewApp(quill.AppConfig{
		CanvasX:      cfg.Canvas.X,
		CanvasY:      cfg.Canvas.Y,
		Width:        float64(cfg.Window.Width) - cfg.Canvas.X,
		Height:       float64(cfg.Window.Height) - cfg.Canvas.Y,
		Primary:      primary,
		Secondary:    secondary,
		Background:   background,
		Tracer:       tracer,
		TraceOptions: cfg.TraceOptions(),
		ToolTimeout:  timeout,
		Metrics:      tel.Metrics,
	})
	app.Host.Errors.Connect(func(err error) {
		fmt.Fprintln(os.Stderr, err)
	})

	for _, r := range cfg.UIRegions {
		app.Router.AddUIRegion(r.Name, quill.HitRect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
	}

	var loadErr error
	if cfg.Tools.Dir != "" {
		_, loadErr = app.Loader.LoadDir(cfg.Tools.Dir)
	} else {
		loadErr = loadBuiltinTools(app.Loader)
	}
	if loadErr != nil {
		quill.Logger().Warn("some tools failed to load", slog.Any("error", loadErr))
	}

	if cfg.Tools.Default != "" {
		if err := app.Host.Activate(cfg.Tools.Default); err != nil {
			return nil, err
		}
	}
	return app, nil
}

package main

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/quill/scene"
	"github.com/phanxgames/quill/trace"
)

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <image.png>",
		Short: "Trace a raster image to vector shapes and summarize the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrace,
	}
	cmd.Flags().Int("threshold", -1, "Alpha threshold 0-255 (overrides trace.threshold)")
	return cmd
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := cfg.TraceOptions()
	if th, _ := cmd.Flags().GetInt("threshold"); th >= 0 && th <= 255 {
		opts.Threshold = uint8(th)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tracer := trace.NewPotrace(cfg.Trace.Binary)
	if err := tracer.Init(ctx); err != nil {
		return err
	}
	item, err := tracer.Trace(ctx, img, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	paths, rings := 0, 0
	item.EachPathLike(func(it *scene.Item) {
		paths++
		if it.Type == scene.ItemCompoundPath {
			rings += it.NumChildren()
		} else {
			rings++
		}
	})
	fmt.Fprintf(out, "tracer:  %s\n", tracer.Version())
	fmt.Fprintf(out, "shapes:  %d\n", paths)
	fmt.Fprintf(out, "rings:   %d\n", rings)
	if b, ok := item.Bounds(); ok {
		fmt.Fprintf(out, "bounds:  %.1f,%.1f %.1fx%.1f\n", b.X, b.Y, b.Width, b.Height)
	}
	return nil
}

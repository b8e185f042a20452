package trace

import (
	"context"
	"errors"
	"image"

	"github.com/phanxgames/quill/scene"
)

// ErrNotReady is returned by Trace when the tracer has not been initialized.
var ErrNotReady = errors.New("trace: tracer not initialized")

// Options controls bitmap thresholding and curve fitting.
type Options struct {
	// Threshold is the minimum alpha (0-255) for a pixel to count as ink.
	Threshold uint8 `yaml:"threshold" toml:"threshold"`
	// TurdSize suppresses speckles of up to this many pixels.
	TurdSize int `yaml:"turd_size" toml:"turd_size"`
	// AlphaMax is the corner threshold; 0 gives sharp polygons, 1.3334 no corners.
	AlphaMax float64 `yaml:"alpha_max" toml:"alpha_max"`
	// OptTolerance is the curve optimization tolerance.
	OptTolerance float64 `yaml:"opt_tolerance" toml:"opt_tolerance"`
}

// DefaultOptions returns the potrace defaults with a mid alpha threshold.
func DefaultOptions() Options {
	return Options{
		Threshold:    128,
		TurdSize:     2,
		AlphaMax:     1.0,
		OptTolerance: 0.2,
	}
}

// Tracer converts a pixel source to a vector hierarchy in pixel units.
type Tracer interface {
	// Ready reports whether the tracer has been initialized.
	Ready() bool
	// Trace vectorizes src. The result's coordinates are src pixels with the
	// origin at the top-left.
	Trace(ctx context.Context, src image.Image, opts Options) (*scene.Item, error)
}

// Func adapts a function to the Tracer interface. It is always ready.
type Func func(ctx context.Context, src image.Image, opts Options) (*scene.Item, error)

// Ready always reports true.
func (f Func) Ready() bool { return true }

// Trace calls f.
func (f Func) Trace(ctx context.Context, src image.Image, opts Options) (*scene.Item, error) {
	return f(ctx, src, opts)
}

// Bitmap thresholds src by alpha into a black-on-white grayscale image: ink is
// 0, background 255. The result's origin is (0, 0).
func Bitmap(src image.Image, threshold uint8) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	limit := uint32(threshold) * 0x101
	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()]
		for x := range row {
			_, _, _, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a >= limit && a > 0 {
				row[x] = 0
			} else {
				row[x] = 0xff
			}
		}
	}
	return dst
}

// HasInk reports whether any pixel in the bitmap is ink.
func HasInk(bm *image.Gray) bool {
	for _, v := range bm.Pix {
		if v == 0 {
			return true
		}
	}
	return false
}

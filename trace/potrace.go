package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/image/bmp"

	"github.com/phanxgames/quill/scene"
)

// DefaultBinary is the potrace executable looked up on PATH.
const DefaultBinary = "potrace"

// Potrace traces bitmaps with the potrace command-line tool.
type Potrace struct {
	binary  string
	path    string
	version string
	ready   atomic.Bool
}

// NewPotrace returns an uninitialized tracer for the given executable name or
// path. An empty name selects DefaultBinary.
func NewPotrace(binary string) *Potrace {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Potrace{binary: binary}
}

// Init resolves the executable and probes its version. Safe to call again
// after a failure; a successful Init is sticky.
func (p *Potrace) Init(ctx context.Context) error {
	if p.ready.Load() {
		return nil
	}
	path, err := exec.LookPath(p.binary)
	if err != nil {
		return fmt.Errorf("trace: locate %s: %w", p.binary, err)
	}
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return fmt.Errorf("trace: probe %s: %w", path, err)
	}
	p.path = path
	p.version = strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	p.ready.Store(true)
	return nil
}

// Ready reports whether Init succeeded.
func (p *Potrace) Ready() bool {
	return p.ready.Load()
}

// Version returns the first line of `potrace --version`, or "" before Init.
func (p *Potrace) Version() string {
	return p.version
}

// Trace thresholds src, runs potrace with the GeoJSON backend and decodes the
// polygons. A bitmap without ink yields an empty group without running potrace.
func (p *Potrace) Trace(ctx context.Context, src image.Image, opts Options) (*scene.Item, error) {
	if !p.Ready() {
		return nil, ErrNotReady
	}
	bm := Bitmap(src, opts.Threshold)
	if !HasInk(bm) {
		return scene.NewGroup(), nil
	}

	var in bytes.Buffer
	if err := bmp.Encode(&in, bm); err != nil {
		return nil, fmt.Errorf("trace: encode bitmap: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.path, p.args(opts)...)
	cmd.Stdin = &in
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("trace: potrace: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("trace: potrace: %w", err)
	}
	return DecodeGeoJSON(stdout.Bytes(), float64(bm.Bounds().Dy()))
}

func (p *Potrace) args(opts Options) []string {
	args := []string{"--backend", "geojson", "--output", "-"}
	if opts.TurdSize > 0 {
		args = append(args, "--turdsize", strconv.Itoa(opts.TurdSize))
	}
	if opts.AlphaMax > 0 {
		args = append(args, "--alphamax", strconv.FormatFloat(opts.AlphaMax, 'f', -1, 64))
	}
	if opts.OptTolerance > 0 {
		args = append(args, "--opttolerance", strconv.FormatFloat(opts.OptTolerance, 'f', -1, 64))
	}
	return append(args, "-")
}

// --- GeoJSON ---

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// DecodeGeoJSON converts potrace GeoJSON output to a group of paths. potrace
// places the origin at the bottom-left; height flips it to top-left. Each
// polygon with holes becomes a compound path; a single ring becomes a path.
func DecodeGeoJSON(data []byte, height float64) (*scene.Item, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("trace: decode geojson: %w", err)
	}
	root := scene.NewGroup()
	for i, f := range fc.Features {
		var polys [][][][2]float64
		switch f.Geometry.Type {
		case "Polygon":
			var poly [][][2]float64
			if err := json.Unmarshal(f.Geometry.Coordinates, &poly); err != nil {
				return nil, fmt.Errorf("trace: feature %d: %w", i, err)
			}
			polys = append(polys, poly)
		case "MultiPolygon":
			if err := json.Unmarshal(f.Geometry.Coordinates, &polys); err != nil {
				return nil, fmt.Errorf("trace: feature %d: %w", i, err)
			}
		default:
			continue
		}
		for _, poly := range polys {
			if item := polygonItem(poly, height); item != nil {
				root.AddChild(item)
			}
		}
	}
	return root, nil
}

func polygonItem(rings [][][2]float64, height float64) *scene.Item {
	var paths []*scene.Item
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		// GeoJSON rings repeat the first point at the end.
		if ring[0] == ring[len(ring)-1] {
			ring = ring[:len(ring)-1]
		}
		p := scene.NewPath()
		for _, c := range ring {
			p.Add(scene.Point{X: c[0], Y: height - c[1]})
		}
		p.Close()
		paths = append(paths, p)
	}
	switch len(paths) {
	case 0:
		return nil
	case 1:
		return paths[0]
	default:
		return scene.NewCompoundPath(paths...)
	}
}

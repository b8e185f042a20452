// Package config loads quill's application settings from YAML or TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/quill/scene"
	"github.com/phanxgames/quill/trace"
)

// File names searched by Discover, in order.
var candidateNames = []string{"quill.yaml", "quill.yml", "quill.toml"}

// Config is the full application configuration.
type Config struct {
	Window    Window     `yaml:"window" toml:"window"`
	Canvas    Canvas     `yaml:"canvas" toml:"canvas"`
	Tools     Tools      `yaml:"tools" toml:"tools"`
	Palette   Palette    `yaml:"palette" toml:"palette"`
	Trace     Trace      `yaml:"trace" toml:"trace"`
	UIRegions []UIRegion `yaml:"ui_regions,omitempty" toml:"ui_regions,omitempty"`
	Telemetry Telemetry  `yaml:"telemetry" toml:"telemetry"`
}

// Window configures the OS window.
type Window struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
}

// Canvas places the drawing surface inside the window.
type Canvas struct {
	X float64 `yaml:"x" toml:"x"`
	Y float64 `yaml:"y" toml:"y"`
	// Fit resizes the canvas to fill the window from (X, Y).
	Fit        bool   `yaml:"fit" toml:"fit"`
	Background string `yaml:"background" toml:"background"`
}

// Tools configures tool loading.
type Tools struct {
	// Dir is searched for *.js tool sources. Empty loads the built-in tools.
	Dir string `yaml:"dir,omitempty" toml:"dir,omitempty"`
	// Default is activated after loading. Empty leaves the last loaded tool active.
	Default string `yaml:"default,omitempty" toml:"default,omitempty"`
	// Timeout bounds each call into tool code, as a Go duration string.
	Timeout string `yaml:"timeout" toml:"timeout"`
}

// Palette holds the initial colors as hex strings.
type Palette struct {
	Primary   string `yaml:"primary" toml:"primary"`
	Secondary string `yaml:"secondary" toml:"secondary"`
}

// Trace configures the potrace tracer.
type Trace struct {
	Binary        string `yaml:"binary" toml:"binary"`
	trace.Options `yaml:",inline"`
}

// UIRegion marks a window rectangle as non-canvas UI.
type UIRegion struct {
	Name   string  `yaml:"name" toml:"name"`
	X      float64 `yaml:"x" toml:"x"`
	Y      float64 `yaml:"y" toml:"y"`
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// Telemetry configures OpenTelemetry export. An empty endpoint disables it.
type Telemetry struct {
	Endpoint    string `yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	Insecure    bool   `yaml:"insecure,omitempty" toml:"insecure,omitempty"`
	ServiceName string `yaml:"service_name" toml:"service_name"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: Window{Title: "quill", Width: 1280, Height: 800},
		Canvas: Canvas{Fit: true, Background: "#ffffff"},
		Tools:  Tools{Timeout: "2s"},
		Palette: Palette{
			Primary:   "#000000",
			Secondary: "#ffffff",
		},
		Trace: Trace{
			Binary:  trace.DefaultBinary,
			Options: trace.DefaultOptions(),
		},
		Telemetry: Telemetry{ServiceName: "quill"},
	}
}

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor returns the format implied by path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("config: unsupported file extension %q", filepath.Ext(path))
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Decode(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses data over the defaults and validates the result. Keys absent
// from data keep their default values.
func Decode(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unknown format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg in the given format.
func Encode(cfg Config, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("config: unknown format %q", format)
	}
	return buf.Bytes(), nil
}

// Validate checks value ranges and parses every color and duration.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	for name, hex := range map[string]string{
		"canvas.background": c.Canvas.Background,
		"palette.primary":   c.Palette.Primary,
		"palette.secondary": c.Palette.Secondary,
	} {
		if _, err := scene.ParseHexColor(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if _, err := c.ToolTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.Trace.TurdSize < 0 {
		errs = append(errs, fmt.Errorf("trace.turd_size %d must not be negative", c.Trace.TurdSize))
	}
	if c.Trace.AlphaMax < 0 || c.Trace.AlphaMax > 1.3334 {
		errs = append(errs, fmt.Errorf("trace.alpha_max %v not in [0, 1.3334]", c.Trace.AlphaMax))
	}
	for i, r := range c.UIRegions {
		if r.Width <= 0 || r.Height <= 0 {
			errs = append(errs, fmt.Errorf("ui_regions[%d] %q: size must be positive", i, r.Name))
		}
	}
	return errors.Join(errs...)
}

// ToolTimeout parses Tools.Timeout. An empty string yields zero (the loader
// default); "0" or a negative duration disables the limit.
func (c Config) ToolTimeout() (time.Duration, error) {
	s := strings.TrimSpace(c.Tools.Timeout)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("tools.timeout: %w", err)
	}
	if d == 0 {
		return -1, nil
	}
	return d, nil
}

// TraceOptions returns the tracer options.
func (c Config) TraceOptions() trace.Options {
	return c.Trace.Options
}

// Colors returns the parsed primary, secondary and background colors.
// Call Validate first; unparsable colors come back as the zero Color.
func (c Config) Colors() (primary, secondary, background scene.Color) {
	primary, _ = scene.ParseHexColor(c.Palette.Primary)
	secondary, _ = scene.ParseHexColor(c.Palette.Secondary)
	background, _ = scene.ParseHexColor(c.Canvas.Background)
	return
}

// Discover resolves the config file: explicit when non-empty (it must
// exist), else the first candidate name in cwd, else config.toml under the
// user config dir. found is false when nothing exists.
func Discover(explicit, cwd, configDir string) (path string, found bool, err error) {
	var candidates []string
	if clean := strings.TrimSpace(explicit); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		for _, name := range candidateNames {
			candidates = append(candidates, filepath.Join(cwd, name))
		}
		if configDir != "" {
			candidates = append(candidates, filepath.Join(configDir, "quill", "config.toml"))
		}
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			if i == 0 && strings.TrimSpace(explicit) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

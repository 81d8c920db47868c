package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// SegmentMultiple is the granularity of the grid segment count: major lines
// fall every ten divisions counted from either edge.
const SegmentMultiple = 20

// Config is the on-disk application configuration.
type Config struct {
	Window   WindowConfig  `yaml:"window"`
	Grid     GridConfig    `yaml:"grid"`
	Display  DisplayConfig `yaml:"display"`
	Shaders  ShaderConfig  `yaml:"shaders"`
	LogLevel string        `yaml:"logLevel"`
	FPSLimit int           `yaml:"fpsLimit"`
	// FixedTimeStep, in seconds, runs updates at a fixed rate. Zero updates
	// once per frame.
	FixedTimeStep float64 `yaml:"fixedTimeStep"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// GridConfig holds the immutable grid parameters.
type GridConfig struct {
	OrientationDeg       float64 `yaml:"orientationDeg"`
	RevolutionsPerMinute float64 `yaml:"revolutionsPerMinute"`
	Size                 float32 `yaml:"size"`
	Segments             int     `yaml:"segments"`
	ThinLine             float32 `yaml:"thinLine"`
	ThickLine            float32 `yaml:"thickLine"`
}

type DisplayConfig struct {
	// Rotation of the panel in degrees: 0, 90, 180 or 270.
	Rotation int `yaml:"rotation"`
	// Background is an SVG colour name or #rrggbb.
	Background string `yaml:"background"`
}

type ShaderConfig struct {
	Dir      string `yaml:"dir"`
	Vertex   string `yaml:"vertex"`
	Geometry string `yaml:"geometry"`
	Pixel    string `yaml:"pixel"`
	// Watch rebuilds device resources when a shader file changes.
	Watch bool `yaml:"watch"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "mygrid",
			VSync:  true,
		},
		Grid: GridConfig{
			OrientationDeg:       45,
			RevolutionsPerMinute: 15,
			Size:                 20,
			Segments:             200,
			ThinLine:             3,
			ThickLine:            6,
		},
		Display: DisplayConfig{
			Rotation:   0,
			Background: "white",
		},
		Shaders: ShaderConfig{
			Dir:      "assets/shaders/grid",
			Vertex:   "grid.vert",
			Geometry: "grid.geom",
			Pixel:    "grid.frag",
		},
		LogLevel: "info",
		FPSLimit: 144,
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	def := Default()
	if c.Window.Width <= 0 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = def.Window.Height
	}
	if c.Window.Title == "" {
		c.Window.Title = def.Window.Title
	}
	if c.Display.Background == "" {
		c.Display.Background = def.Display.Background
	}
	if c.Shaders.Dir == "" {
		c.Shaders.Dir = def.Shaders.Dir
	}
	if c.Shaders.Vertex == "" {
		c.Shaders.Vertex = def.Shaders.Vertex
	}
	if c.Shaders.Geometry == "" {
		c.Shaders.Geometry = def.Shaders.Geometry
	}
	if c.Shaders.Pixel == "" {
		c.Shaders.Pixel = def.Shaders.Pixel
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if c.Grid.Segments <= 0 || c.Grid.Segments%SegmentMultiple != 0 {
		errs = append(errs, fmt.Errorf("grid.segments must be a positive multiple of %d, got %d", SegmentMultiple, c.Grid.Segments))
	}
	if c.Grid.Size <= 0 {
		errs = append(errs, fmt.Errorf("grid.size must be positive, got %g", c.Grid.Size))
	}
	if c.Grid.ThinLine <= 0 || c.Grid.ThickLine <= 0 {
		errs = append(errs, fmt.Errorf("grid line widths must be positive, got %g/%g", c.Grid.ThinLine, c.Grid.ThickLine))
	}
	switch c.Display.Rotation {
	case 0, 90, 180, 270:
	default:
		errs = append(errs, fmt.Errorf("display.rotation must be 0, 90, 180 or 270, got %d", c.Display.Rotation))
	}
	if _, err := ParseColor(c.Display.Background); err != nil {
		errs = append(errs, fmt.Errorf("display.background: %w", err))
	}
	if c.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("fpsLimit must not be negative, got %d", c.FPSLimit))
	}
	if c.FixedTimeStep < 0 {
		errs = append(errs, fmt.Errorf("fixedTimeStep must not be negative, got %g", c.FixedTimeStep))
	}
	return errors.Join(errs...)
}

// ParseColor turns an SVG colour name or #rrggbb into normalized RGBA.
func ParseColor(s string) ([4]float32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return [4]float32{
			float32(c.R) / 255,
			float32(c.G) / 255,
			float32(c.B) / 255,
			float32(c.A) / 255,
		}, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok && len(hex) == 6 {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			return [4]float32{
				float32(v>>16&0xff) / 255,
				float32(v>>8&0xff) / 255,
				float32(v&0xff) / 255,
				1,
			}, nil
		}
	}
	return [4]float32{}, fmt.Errorf("unknown colour %q", s)
}

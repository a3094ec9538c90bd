package app

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration, loadable from a TOML file.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Clock    ClockConfig    `toml:"clock"`
	Shaders  ShaderConfig   `toml:"shaders"`
}

type WindowConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	Resizable bool   `toml:"resizable"`
}

type RendererConfig struct {
	FramesInFlight int  `toml:"frames_in_flight"`
	Validation     bool `toml:"validation"`
}

type ClockConfig struct {
	// TargetFPS caps the frame rate. Zero disables the cap and leaves
	// pacing to the presentation mode.
	TargetFPS int `toml:"target_fps"`
}

type ShaderConfig struct {
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

// DefaultConfig is the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:     800,
			Height:    600,
			Title:     "embervk",
			Resizable: true,
		},
		Renderer: RendererConfig{
			FramesInFlight: 2,
		},
		Clock: ClockConfig{
			TargetFPS: 60,
		},
		Shaders: ShaderConfig{
			Vertex:   "shaders/triangle.vert.spv",
			Fragment: "shaders/triangle.frag.spv",
		},
	}
}

// LoadConfig reads a TOML config file, applying file values over the
// defaults. An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "app: read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "app: parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, errors.Wrapf(err, "app: config %s", path)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Newf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.FramesInFlight < 1 {
		return errors.Newf("frames_in_flight %d must be at least 1", c.Renderer.FramesInFlight)
	}
	if c.Shaders.Vertex == "" || c.Shaders.Fragment == "" {
		return errors.New("both shader paths are required")
	}
	return nil
}

package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"spincube/cube"
	"spincube/internal/logging"
)

const DefaultConfigPath = "spincube.yaml"

const (
	DriverGL   = "gl"
	DriverSoft = "soft"
)

type Config struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	TPS    int    `yaml:"tps"`
	// Driver selects the window host: gl (OpenGL via glfw) or soft (software driver in
	// an ebiten window).
	Driver string `yaml:"driver"`

	VertexShader   string `yaml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader"`
	Watch          bool   `yaml:"watch"`

	LogLevel string `yaml:"log_level"`

	Headless HeadlessConfig `yaml:"headless"`
}

type HeadlessConfig struct {
	Enabled bool `yaml:"enabled"`
	// Ticks stops the run after N ticks (0 = run until interrupted).
	Ticks    uint64  `yaml:"ticks"`
	CursorX  float64 `yaml:"cursor_x"`
	CursorY  float64 `yaml:"cursor_y"`
	Snapshot string  `yaml:"snapshot"`
}

func DefaultConfig() Config {
	return Config{
		Title:          "spincube",
		Width:          1680,
		Height:         1050,
		TPS:            60,
		Driver:         DriverGL,
		VertexShader:   cube.DefaultVertexShader,
		FragmentShader: cube.DefaultFragmentShader,
		LogLevel:       "info",
		Headless: HeadlessConfig{
			CursorX: 840,
		},
	}
}

// LoadConfig reads path over DefaultConfig. A missing file is only an error when path is
// not DefaultConfigPath.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if path == DefaultConfigPath && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Driver {
	case DriverGL, DriverSoft:
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverGL, DriverSoft)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("invalid tps %d", c.TPS)
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return errors.New("shader paths must not be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

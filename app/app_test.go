package app

import (
	"context"
	"flag"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spincube.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1680, cfg.Width)
	assert.Equal(t, 1050, cfg.Height)
	assert.Equal(t, 60, cfg.TPS)
	assert.Equal(t, DriverGL, cfg.Driver)
	assert.Equal(t, "vertex.glsl", cfg.VertexShader)
	assert.Equal(t, "fragment.glsl", cfg.FragmentShader)
	assert.False(t, cfg.Headless.Enabled)
}

func TestLoadConfigMissingDefaultFile(t *testing.T) {
	// The package directory has no spincube.yaml.
	cfg, err := LoadConfig(DefaultConfigPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
width: 800
driver: soft
watch: true
headless:
  enabled: true
  ticks: 3
  snapshot: out.png
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 1050, cfg.Height, "unset keys keep their defaults")
	assert.Equal(t, DriverSoft, cfg.Driver)
	assert.True(t, cfg.Watch)
	assert.True(t, cfg.Headless.Enabled)
	assert.Equal(t, uint64(3), cfg.Headless.Ticks)
	assert.Equal(t, "out.png", cfg.Headless.Snapshot)
	assert.Equal(t, 840.0, cfg.Headless.CursorX)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"driver":    "driver: vulkan\n",
		"size":      "width: 0\n",
		"tps":       "tps: -1\n",
		"log level": "log_level: loud\n",
		"yaml":      "width: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestFlagsApplyOnlySetFlags(t *testing.T) {
	set := flag.NewFlagSet("spincube", flag.ContinueOnError)
	f := RegisterFlags(set)
	require.NoError(t, set.Parse([]string{"-headless", "-ticks", "5", "-log-level", "debug"}))

	cfg := DefaultConfig()
	cfg.Driver = DriverSoft
	cfg.Watch = true
	f.Apply(&cfg)

	assert.Equal(t, DefaultConfigPath, f.ConfigPath)
	assert.True(t, cfg.Headless.Enabled)
	assert.Equal(t, uint64(5), cfg.Headless.Ticks)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DriverSoft, cfg.Driver, "driver flag not given")
	assert.True(t, cfg.Watch, "watch flag not given")
}

func TestRunHeadless(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "cube.png")
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 64, 48
	cfg.VertexShader = filepath.Join("..", "vertex.glsl")
	cfg.FragmentShader = filepath.Join("..", "fragment.glsl")
	cfg.Headless = HeadlessConfig{Enabled: true, Ticks: 3, CursorX: 32, Snapshot: snap}

	require.NoError(t, Run(context.Background(), cfg, nil))

	f, err := os.Open(snap)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	r, g, b, _ := img.At(32, 24).RGBA()
	assert.False(t, r == 0xffff && g == 0xffff && b == 0xffff, "center pixel is the cube, not the clear color")
}

func TestRunMissingShader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VertexShader = filepath.Join(t.TempDir(), "missing.glsl")
	cfg.Headless = HeadlessConfig{Enabled: true, Ticks: 1}
	err := Run(context.Background(), cfg, nil)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

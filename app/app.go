// Package app wires configuration, logging and the host layer around a cube session.
package app

import (
	"context"
	"log/slog"

	"spincube/cube"
	"spincube/hal"
	"spincube/internal/buildinfo"
	"spincube/internal/logging"
)

// Run builds a cube session from cfg and drives it on the selected host until the
// window closes, ctx is done, or the headless tick limit is reached.
func Run(ctx context.Context, cfg Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log = logging.OrDiscard(log)

	s := cube.New(cube.Options{
		VertexShader:   cfg.VertexShader,
		FragmentShader: cfg.FragmentShader,
		Watch:          cfg.Watch,
		Logger:         log.With("component", "cube"),
	})

	if cfg.Headless.Enabled {
		return hal.RunHeadless(ctx, s, hal.HeadlessConfig{
			Width:    cfg.Width,
			Height:   cfg.Height,
			Hz:       cfg.TPS,
			Ticks:    cfg.Headless.Ticks,
			CursorX:  cfg.Headless.CursorX,
			CursorY:  cfg.Headless.CursorY,
			Snapshot: cfg.Headless.Snapshot,
		}, log)
	}

	wc := hal.WindowConfig{Title: buildinfo.Title(cfg.Title), Width: cfg.Width, Height: cfg.Height, TPS: cfg.TPS}
	if cfg.Driver == DriverSoft {
		return hal.RunWindow(s, wc, log)
	}
	return hal.RunGLFW(s, wc, log)
}

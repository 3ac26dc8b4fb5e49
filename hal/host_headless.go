package hal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spincube/gfx"
	"spincube/gfx/soft"
	"spincube/internal/logging"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Width  int
	Height int
	Hz     int
	// Ticks stops the run after N ticks (0 = run until ctx is done).
	Ticks uint64
	// CursorX and CursorY are reported as the cursor position on every tick.
	CursorX float64
	CursorY float64
	// Snapshot, when set, is the PNG path the last frame is written to.
	Snapshot string
}

// RunHeadless drives app with the software driver and no window. Every tick advances
// exactly 1/Hz seconds so runs are reproducible.
func RunHeadless(ctx context.Context, app App, cfg HeadlessConfig, log *slog.Logger) error {
	log = logging.OrDiscard(log)
	if cfg.Width <= 0 {
		cfg.Width = 1680
	}
	if cfg.Height <= 0 {
		cfg.Height = 1050
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	fb := newHostFramebuffer(cfg.Width, cfg.Height)
	w := &headlessWindow{
		fb:  fb,
		drv: soft.New(fb, log.With("driver", "soft")),
		cx:  cfg.CursorX,
		cy:  cfg.CursorY,
	}
	log.Info("headless run", "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "hz", cfg.Hz, "ticks", cfg.Ticks)

	if err := app.Load(w); err != nil {
		app.Dispose()
		return err
	}
	err := runTicks(ctx, app, d, cfg.Ticks)
	if err == nil && cfg.Snapshot != "" {
		err = fb.writePNG(cfg.Snapshot)
		if err == nil {
			log.Info("snapshot written", "path", cfg.Snapshot, "frames", fb.frames)
		}
	}
	if derr := w.drv.Err(); derr != nil {
		log.Warn("software driver reported an error", "err", derr)
	}
	app.Dispose()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runTicks runs limit ticks back to back, or paces ticks at d until ctx is done when
// limit is 0.
func runTicks(ctx context.Context, app App, d time.Duration, limit uint64) error {
	var tickC <-chan time.Time
	if limit == 0 {
		t := time.NewTicker(d)
		defer t.Stop()
		tickC = t.C
	}

	var tick uint64
	for limit == 0 || tick < limit {
		if tickC != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tickC:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := app.Update(d.Seconds()); err != nil {
			return err
		}
		if err := app.Render(); err != nil {
			return err
		}
		tick++
	}
	return nil
}

type headlessWindow struct {
	fb     *hostFramebuffer
	drv    *soft.Driver
	cx, cy float64
}

func (w *headlessWindow) Driver() gfx.Driver         { return w.drv }
func (w *headlessWindow) Size() (int, int)           { return w.fb.Size() }
func (w *headlessWindow) Cursor() (float64, float64) { return w.cx, w.cy }
func (w *headlessWindow) Swap()                      { w.fb.present() }

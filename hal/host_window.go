//go:build cgo

package hal

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"spincube/gfx"
	"spincube/gfx/soft"
	"spincube/internal/buildinfo"
	"spincube/internal/logging"
)

// RunWindow opens a desktop window and shows the software driver's framebuffer in it.
// It blocks until the window closes or Escape is pressed.
func RunWindow(app App, cfg WindowConfig, log *slog.Logger) error {
	cfg = cfg.withDefaults()
	log = logging.OrDiscard(log)

	fb := newHostFramebuffer(cfg.Width, cfg.Height)
	g := &hostGame{
		app:   app,
		fb:    fb,
		drv:   soft.New(fb, log.With("driver", "soft")),
		clock: newHostClock(),
		hud:   true,
		log:   log,
	}
	if err := app.Load(g); err != nil {
		app.Dispose()
		return err
	}
	defer app.Dispose()

	title := cfg.Title
	if title == "" {
		title = buildinfo.Title("spincube")
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	log.Info("window open", "driver", "soft", "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "tps", cfg.TPS)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type hostGame struct {
	app   App
	fb    *hostFramebuffer
	drv   *soft.Driver
	clock *hostClock
	img   *ebiten.Image
	hud   bool
	log   *slog.Logger
}

func (g *hostGame) Driver() gfx.Driver { return g.drv }
func (g *hostGame) Size() (int, int)   { return g.fb.Size() }
func (g *hostGame) Swap()              { g.fb.present() }

func (g *hostGame) Cursor() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y)
}

// Update runs one app tick. The frame is rendered here so every Update is paired with
// exactly one Render regardless of how often ebiten calls Draw.
func (g *hostGame) Update() error {
	keys := pollKeys()
	if keys.quit {
		return ebiten.Termination
	}
	if keys.toggleHUD {
		g.hud = !g.hud
	}
	if err := g.app.Update(g.clock.step()); err != nil {
		return err
	}
	if err := g.app.Render(); err != nil {
		return err
	}
	if err := g.drv.Err(); err != nil {
		g.log.Warn("software driver reported an error", "err", err)
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	w, h := g.fb.Size()
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
	}
	g.img.WritePixels(g.fb.Img.Pix)
	screen.DrawImage(g.img, nil)

	if g.hud {
		st := g.drv.Stats()
		line := fmt.Sprintf("%s  %dx%d  tps %.0f  tris %d", buildinfo.Short(), w, h, ebiten.ActualTPS(), st.Triangles)
		text.Draw(screen, line, basicfont.Face7x13, 8, 18, color.Black)
	}
	g.drv.ResetStats()
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return g.fb.Size()
	}
	if g.fb.resize(outsideWidth, outsideHeight) {
		g.log.Debug("resize", "width", outsideWidth, "height", outsideHeight)
		g.app.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

//go:build cgo

package quad

import (
	"errors"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"spincube/internal/buildinfo"
	"spincube/internal/logging"
)

// Run opens a width x height window with the quad in it and blocks until the window
// closes or Escape is pressed.
func Run(width, height int, log *slog.Logger) error {
	log = logging.OrDiscard(log)
	g := &game{state: NewState(width, height), width: width, height: height, log: log}

	ebiten.SetWindowTitle(buildinfo.Title("quad"))
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	log.Info("window open", "width", width, "height", height)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type game struct {
	state         State
	width, height int
	log           *slog.Logger
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	x, y := ebiten.CursorPosition()
	g.state.Follow(float64(x), float64(y), g.width, g.height)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.White)
	x, y, size := g.state.Bounds()
	vector.DrawFilledRect(screen, x, y, size, size, g.state.Color, false)
	text.Draw(screen, g.state.String(), basicfont.Face7x13, 8, 18, color.Black)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != g.width || outsideHeight != g.height) {
		g.log.Debug("resize", "width", outsideWidth, "height", outsideHeight)
		g.width, g.height = outsideWidth, outsideHeight
	}
	return g.width, g.height
}

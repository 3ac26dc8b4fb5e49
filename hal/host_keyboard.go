//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type hostKeys struct {
	quit      bool
	toggleHUD bool
}

func pollKeys() hostKeys {
	return hostKeys{
		quit:      inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		toggleHUD: inpututil.IsKeyJustPressed(ebiten.KeyF1),
	}
}

// Package quad is a square that follows the cursor and takes its color from the cursor
// position.
package quad

import (
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
)

const DefaultSize = 64

// State is the quad of one window session.
type State struct {
	// X and Y are the quad center in window pixels.
	X, Y  float32
	Size  float32
	Color color.RGBA
}

func NewState(width, height int) State {
	s := State{Size: DefaultSize}
	s.Follow(float64(width)/2, float64(height)/2, width, height)
	return s
}

// Follow centers the quad on the cursor, clamped to the window, and sets the color to
// R = x/width, G = y/height, B = 1 - x/width.
func (s *State) Follow(cursorX, cursorY float64, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w, h := float32(width), float32(height)
	s.X = clamp(float32(cursorX), 0, w)
	s.Y = clamp(float32(cursorY), 0, h)
	fx, fy := s.X/w, s.Y/h
	s.Color = color.RGBA{R: unorm8(fx), G: unorm8(fy), B: unorm8(1 - fx), A: 0xff}
}

// Bounds returns the top-left corner and the size of the quad.
func (s State) Bounds() (x, y, size float32) {
	return s.X - s.Size/2, s.Y - s.Size/2, s.Size
}

func (s State) String() string {
	return fmt.Sprintf("x=%.0f y=%.0f rgb=(%d,%d,%d)", s.X, s.Y, s.Color.R, s.Color.G, s.Color.B)
}

func clamp(v, lo, hi float32) float32 { return math32.Max(lo, math32.Min(hi, v)) }

func unorm8(v float32) uint8 { return uint8(math32.Floor(clamp(v, 0, 1)*255 + 0.5)) }

package soft

import "github.com/chewxy/math32"

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 0xFF} }

// ColorF converts normalized channels (clamped to 0..1) to a Color.
func ColorF(r, g, b, a float32) Color {
	return Color{R: unorm8(r), G: unorm8(g), B: unorm8(b), A: unorm8(a)}
}

// MulScalar scales the color channels by s in 0..1, keeping alpha.
func (c Color) MulScalar(s float32) Color {
	t := uint32(clamp01(s) * 255)
	mul := func(ch uint8) uint8 {
		return uint8((uint32(ch) * t) / 255)
	}
	return Color{R: mul(c.R), G: mul(c.G), B: mul(c.B), A: c.A}
}

func unorm8(v float32) uint8 {
	return uint8(math32.Floor(clamp01(v)*255 + 0.5))
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

package soft

import "image"

// Target is a minimal pixel target for software rendering.
//
// Implementations should clip out-of-bounds coordinates.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Clear(c Color)
}

// ImageTarget renders into an *image.RGBA.
type ImageTarget struct {
	Img *image.RGBA
}

func NewImageTarget(w, h int) *ImageTarget {
	return &ImageTarget{Img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (t *ImageTarget) Size() (w, h int) {
	if t == nil || t.Img == nil {
		return 0, 0
	}
	b := t.Img.Bounds()
	return b.Dx(), b.Dy()
}

func (t *ImageTarget) Clear(c Color) {
	if t == nil || t.Img == nil {
		return
	}
	pix := t.Img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

func (t *ImageTarget) SetPixel(x, y int, c Color) {
	if t == nil || t.Img == nil {
		return
	}
	w, h := t.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	off := t.Img.PixOffset(x, y)
	t.Img.Pix[off+0] = c.R
	t.Img.Pix[off+1] = c.G
	t.Img.Pix[off+2] = c.B
	t.Img.Pix[off+3] = c.A
}

// At returns the color at x, y, or the zero Color outside the image.
func (t *ImageTarget) At(x, y int) Color {
	w, h := t.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return Color{}
	}
	off := t.Img.PixOffset(x, y)
	p := t.Img.Pix[off : off+4]
	return Color{R: p[0], G: p[1], B: p[2], A: p[3]}
}

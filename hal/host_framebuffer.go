package hal

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"spincube/gfx/soft"
)

// hostFramebuffer is the software driver's render target. It is only touched from the
// frame loop goroutine.
type hostFramebuffer struct {
	*soft.ImageTarget
	frames uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	return &hostFramebuffer{ImageTarget: soft.NewImageTarget(width, height)}
}

func (f *hostFramebuffer) resize(width, height int) bool {
	w, h := f.Size()
	if w == width && h == height {
		return false
	}
	f.Img = image.NewRGBA(image.Rect(0, 0, width, height))
	return true
}

func (f *hostFramebuffer) present() { f.frames++ }

func (f *hostFramebuffer) writePNG(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot %q: %w", path, err)
	}
	if err := png.Encode(out, f.Img); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode snapshot %q: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close snapshot %q: %w", path, err)
	}
	return nil
}

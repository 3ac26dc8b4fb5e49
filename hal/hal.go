// Package hal owns the window, the frame loop and the graphics driver, and drives an
// App through its callbacks.
//
// Three hosts exist: RunGLFW (OpenGL window), RunWindow (ebiten window showing the
// software driver's framebuffer) and RunHeadless (software driver, no window). All of
// them call the App from a single goroutine in the order
//
//	Load, (Update, Render)*, Dispose
//
// with Resize delivered between ticks whenever the drawable size changes.
package hal

import (
	"errors"

	"spincube/gfx"
)

var ErrNotImplemented = errors.New("not implemented")

// Window is the host side of a running session. It is valid from Load until Dispose.
type Window interface {
	Driver() gfx.Driver
	Size() (width, height int)
	Cursor() (x, y float64)
	// Swap presents the frame drawn since the previous Swap.
	Swap()
}

// App is a frame-driven program.
type App interface {
	Load(w Window) error
	Resize(width, height int)
	// Update advances the app by elapsed seconds. It always precedes the tick's Render.
	Update(elapsed float64) error
	Render() error
	Dispose()
}

// WindowConfig describes the desktop window.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	TPS    int
}

func (c WindowConfig) withDefaults() WindowConfig {
	if c.Width <= 0 {
		c.Width = 1680
	}
	if c.Height <= 0 {
		c.Height = 1050
	}
	if c.TPS <= 0 {
		c.TPS = 60
	}
	return c
}

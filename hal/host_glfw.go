//go:build cgo

package hal

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"spincube/gfx"
	"spincube/gfx/gldriver"
	"spincube/internal/buildinfo"
	"spincube/internal/logging"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

// RunGLFW opens an OpenGL 4.1 core window and drives app with the go-gl driver until
// the window closes or Escape is pressed. It must be called from the main goroutine.
func RunGLFW(app App, cfg WindowConfig, log *slog.Logger) error {
	cfg = cfg.withDefaults()
	log = logging.OrDiscard(log)

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	title := cfg.Title
	if title == "" {
		title = buildinfo.Title("spincube")
	}
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	drv, err := gldriver.New()
	if err != nil {
		return err
	}
	log.Info("window open", "driver", "gl", "version", gldriver.Version(), "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "tps", cfg.TPS)

	w := &glfwWindow{win: win, drv: drv}
	if err := app.Load(w); err != nil {
		app.Dispose()
		return err
	}
	defer app.Dispose()

	// Resize is deferred to the loop so it always lands between ticks.
	pending := false
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if width > 0 && height > 0 {
			pending = true
		}
	})
	win.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})

	clock := newHostClock()
	ticker := time.NewTicker(time.Second / time.Duration(cfg.TPS))
	defer ticker.Stop()
	for !win.ShouldClose() {
		<-ticker.C
		glfw.PollEvents()
		if pending {
			pending = false
			width, height := win.GetFramebufferSize()
			log.Debug("resize", "width", width, "height", height)
			app.Resize(width, height)
		}
		if err := app.Update(clock.step()); err != nil {
			return err
		}
		if err := app.Render(); err != nil {
			return err
		}
	}
	return nil
}

type glfwWindow struct {
	win *glfw.Window
	drv gfx.Driver
}

func (w *glfwWindow) Driver() gfx.Driver { return w.drv }
func (w *glfwWindow) Size() (int, int)   { return w.win.GetSize() }
func (w *glfwWindow) Swap()              { w.win.SwapBuffers() }

func (w *glfwWindow) Cursor() (float64, float64) { return w.win.GetCursorPos() }

// Package cube draws a unit cube that spins about its Y axis at a speed set by the
// cursor's horizontal position.
//
// A Session is a hal.App. The host calls Load once, then Update and Render every tick
// with Resize in between when the window changes size, and finally Dispose.
package cube

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"spincube/gfx"
	"spincube/hal"
	"spincube/internal/logging"
)

// Lifecycle errors returned by Update and Render.
var (
	ErrNotLoaded = errors.New("cube: session not loaded")
	ErrDisposed  = errors.New("cube: session disposed")
)

// Default shader paths, relative to the working directory.
const (
	DefaultVertexShader   = "vertex.glsl"
	DefaultFragmentShader = "fragment.glsl"
)

// Options configures a Session. Empty shader paths fall back to the defaults.
type Options struct {
	VertexShader   string
	FragmentShader string
	// Watch reloads the program when either shader file is written.
	Watch  bool
	Logger *slog.Logger
}

type state int

const (
	stateUninitialized state = iota
	stateLoaded
	stateDisposed
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateLoaded:
		return "loaded"
	case stateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the state of one cube window.
type Session struct {
	opts  Options
	log   *slog.Logger
	state state

	win       hal.Window
	drv       gfx.Driver
	pipeline  Pipeline
	transform Transform
	buffers   Buffers
	watcher   *shaderWatcher
}

var _ hal.App = (*Session)(nil)

// New returns an unloaded session.
func New(opts Options) *Session {
	if opts.VertexShader == "" {
		opts.VertexShader = DefaultVertexShader
	}
	if opts.FragmentShader == "" {
		opts.FragmentShader = DefaultFragmentShader
	}
	return &Session{opts: opts, log: logging.OrDiscard(opts.Logger)}
}

// Accessors for the loaded state, zero before Load.
func (s *Session) Pipeline() Pipeline   { return s.pipeline }
func (s *Session) Transform() Transform { return s.transform }
func (s *Session) Buffers() Buffers     { return s.buffers }

// Load reads both shader files, builds the pipeline, uploads the matrices and the
// geometry, and sets the fixed render state. A missing shader file fails before any
// driver call is made.
func (s *Session) Load(w hal.Window) error {
	switch s.state {
	case stateLoaded:
		return errors.New("cube: session already loaded")
	case stateDisposed:
		return ErrDisposed
	}
	vsrc, fsrc, err := s.readShaders()
	if err != nil {
		return err
	}

	s.win = w
	s.drv = w.Driver()
	width, height := w.Size()

	s.pipeline = NewPipeline(s.drv, vsrc, fsrc, s.log)
	s.transform = NewTransform(width, height)
	s.transform.Upload(s.drv, s.pipeline)

	s.buffers, err = NewBuffers(s.drv)
	if err != nil {
		s.buffers.Delete(s.drv)
		s.pipeline.Delete(s.drv)
		return err
	}

	s.drv.Enable(gfx.DepthTest)
	s.drv.ClearColor(1, 1, 1, 1)
	s.state = stateLoaded

	if s.opts.Watch {
		sw, err := watchShaders(s.log, s.opts.VertexShader, s.opts.FragmentShader)
		if err != nil {
			s.log.Warn("shader reload disabled", "err", err)
		} else {
			s.watcher = sw
		}
	}
	s.log.Info("cube loaded", "size", fmt.Sprintf("%dx%d", width, height),
		"compiled", s.pipeline.Compiled, "linked", s.pipeline.Linked, "watch", s.watcher != nil)
	return nil
}

func (s *Session) readShaders() (vertex, fragment string, err error) {
	vb, err := os.ReadFile(s.opts.VertexShader)
	if err != nil {
		return "", "", fmt.Errorf("read vertex shader: %w", err)
	}
	fb, err := os.ReadFile(s.opts.FragmentShader)
	if err != nil {
		return "", "", fmt.Errorf("read fragment shader: %w", err)
	}
	return string(vb), string(fb), nil
}

// Resize sets the viewport to the new drawable size. The projection keeps the aspect of
// the starting size.
func (s *Session) Resize(width, height int) {
	if s.state != stateLoaded {
		return
	}
	s.drv.Viewport(0, 0, int32(width), int32(height))
}

// Update applies any pending shader reload, then rotates the model-view by the angle for
// elapsed seconds at the current cursor position and uploads it.
func (s *Session) Update(elapsed float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if s.watcher != nil && s.watcher.changed() {
		s.reload()
	}
	x, _ := s.win.Cursor()
	s.transform.Step(elapsed, x)
	s.transform.UploadModelView(s.drv, s.pipeline)
	return nil
}

// Render clears, draws the 36 cube indices and swaps.
func (s *Session) Render() error {
	if err := s.ready(); err != nil {
		return err
	}
	s.drv.Clear(gfx.ColorBufferBit | gfx.DepthBufferBit)
	s.drv.BindVertexArray(s.buffers.VertexArray)
	s.drv.DrawElements(gfx.Triangles, int32(len(Indices)), gfx.UnsignedInt, 0)
	s.win.Swap()
	return nil
}

// Dispose deletes every GPU object the session created. Later calls do nothing.
func (s *Session) Dispose() {
	if s.state == stateDisposed {
		return
	}
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.log.Warn("close shader watcher", "err", err)
		}
		s.watcher = nil
	}
	if s.state == stateLoaded {
		s.buffers.Delete(s.drv)
		s.pipeline.Delete(s.drv)
		s.log.Info("cube disposed")
	}
	s.state = stateDisposed
}

func (s *Session) ready() error {
	switch s.state {
	case stateLoaded:
		return nil
	case stateDisposed:
		return ErrDisposed
	default:
		return ErrNotLoaded
	}
}

// reload rebuilds the pipeline from the shader files. A pipeline that fails to link is
// discarded and the current one stays active.
func (s *Session) reload() {
	vsrc, fsrc, err := s.readShaders()
	if err != nil {
		s.log.Warn("shader reload", "err", err)
		return
	}
	next := NewPipeline(s.drv, vsrc, fsrc, s.log)
	if !next.Linked {
		next.Delete(s.drv)
		s.drv.UseProgram(s.pipeline.Program)
		s.log.Warn("shader reload kept previous program", "program", s.pipeline.Program)
		return
	}
	s.pipeline.Delete(s.drv)
	s.pipeline = next
	s.transform.Upload(s.drv, s.pipeline)
	s.log.Info("shaders reloaded", "program", next.Program)
}

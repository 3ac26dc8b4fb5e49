//go:build !cgo

package hal

import (
	"fmt"
	"log/slog"
)

func RunWindow(_ App, _ WindowConfig, _ *slog.Logger) error {
	return fmt.Errorf("window mode requires cgo (build/run with CGO_ENABLED=1): %w", ErrNotImplemented)
}

func RunGLFW(_ App, _ WindowConfig, _ *slog.Logger) error {
	return fmt.Errorf("OpenGL mode requires cgo (build/run with CGO_ENABLED=1): %w", ErrNotImplemented)
}

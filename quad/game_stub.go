//go:build !cgo

package quad

import (
	"errors"
	"log/slog"
)

func Run(_, _ int, _ *slog.Logger) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}

//go:build !linux

package gpio

import (
	"errors"
	"log/slog"
)

// Open is only supported on Linux, where the GPIO character device exists.
func Open(_ string, _ int, _ *slog.Logger) (*Relay, error) {
	return nil, errors.New("gpio power relay requires linux")
}

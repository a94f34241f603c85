//go:build !pi

package ws281x

import (
	"errors"
	"log/slog"
)

// ErrUnsupported is returned by Open in builds without the pi tag.
var ErrUnsupported = errors.New("ws281x support not built in; rebuild with -tags pi")

// Open always fails outside Raspberry Pi builds.
func Open(_, _ int, _ *slog.Logger) (*Sink, error) {
	return nil, ErrUnsupported
}

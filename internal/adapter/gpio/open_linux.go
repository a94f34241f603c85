//go:build linux

package gpio

import (
	"fmt"
	"log/slog"

	"github.com/warthog618/go-gpiocdev"
)

// Open requests offset on chip as an output. The relay starts switched on.
func Open(chip string, offset int, logger *slog.Logger) (*Relay, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(1), gpiocdev.WithConsumer("ccal-led"))
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", chip, offset, err)
	}
	r := newRelay(l, logger.With("chip", chip, "line", offset))
	r.on = true
	return r, nil
}

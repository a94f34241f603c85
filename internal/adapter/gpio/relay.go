// Package gpio switches strip power through a relay on a GPIO line.
package gpio

import (
	"fmt"
	"log/slog"
	"sync"
)

// line is the output half of a requested GPIO line.
type line interface {
	SetValue(value int) error
	Close() error
}

// Relay implements scheduler.PowerSwitch. The line is driven high for on.
type Relay struct {
	mu     sync.Mutex
	line   line
	on     bool
	logger *slog.Logger
}

func newRelay(l line, logger *slog.Logger) *Relay {
	return &Relay{line: l, logger: logger}
}

// SetPower drives the relay. Repeating the current state does not touch the line.
func (r *Relay) SetPower(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if on == r.on {
		return nil
	}
	v := 0
	if on {
		v = 1
	}
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("set power relay %t: %w", on, err)
	}
	r.on = on
	r.logger.Info("strip power switched", "on", on)
	return nil
}

// Close turns the relay off and releases the line.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.on {
		if err := r.line.SetValue(0); err != nil {
			r.logger.Warn("power relay off failed", "error", err)
		}
		r.on = false
	}
	return r.line.Close()
}

// Package animation renders time-bounded light clips onto a display surface.
//
// A Clip draws one frame per Step as a function of the time elapsed since the
// clip started, and tells the Player how long to wait before the next frame.
// The Player owns the clock: it flushes after every step, sleeps between
// frames, stops at the deadline or when the clip reports it is done, and
// always finishes by turning every pixel off.
package animation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/ccal-led/internal/display"
	"github.com/couchcryptid/ccal-led/internal/observability"
)

// Clip is a parametric, time-bounded animation. Particle state lives on the
// clip value, so build a fresh clip for every invocation.
type Clip interface {
	// Name identifies the clip in logs and metrics.
	Name() string

	// Step draws the frame for elapsed and returns the delay before the next
	// frame. done reports that a finite clip has nothing left to draw.
	Step(c display.Canvas, elapsed time.Duration) (wait time.Duration, done bool)
}

// Player drives clips against a surface.
type Player struct {
	surface *display.Surface
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPlayer creates a Player. A nil clock means real time; nil metrics turns
// clip counting off.
func NewPlayer(surface *display.Surface, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Player {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Player{
		surface: surface,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// PlayFor plays clip for d. A non-positive d plays a finite clip until it
// reports done.
func (p *Player) PlayFor(ctx context.Context, clip Clip, d time.Duration) error {
	var deadline time.Time
	if d > 0 {
		deadline = p.clock.Now().Add(d)
	}
	return p.Play(ctx, clip, deadline)
}

// Play renders clip until deadline, until the clip is done, or until ctx is
// cancelled, then turns all pixels off. A zero deadline means no deadline.
// Only sink failures are returned.
func (p *Player) Play(ctx context.Context, clip Clip, deadline time.Time) error {
	if p.metrics != nil {
		p.metrics.ClipRuns.WithLabelValues(clip.Name()).Inc()
	}
	p.logger.Debug("clip started", "clip", clip.Name())

	start := p.clock.Now()
	frames := 0
	for ctx.Err() == nil {
		now := p.clock.Now()
		if !deadline.IsZero() && !now.Before(deadline) {
			break
		}

		var wait time.Duration
		var done bool
		err := p.surface.Draw(ctx, func(c display.Canvas) {
			wait, done = clip.Step(c, now.Sub(start))
		})
		if err != nil {
			return fmt.Errorf("play %s: %w", clip.Name(), err)
		}
		frames++
		if done {
			break
		}

		if !deadline.IsZero() {
			if remaining := deadline.Sub(now); wait > remaining {
				wait = remaining
			}
		}
		if !p.sleep(ctx, wait) {
			break
		}
	}

	p.logger.Debug("clip finished", "clip", clip.Name(), "frames", frames, "elapsed", p.clock.Since(start))
	if err := p.surface.AllOff(ctx); err != nil {
		return fmt.Errorf("play %s: %w", clip.Name(), err)
	}
	return nil
}

// Clear turns every pixel off.
func (p *Player) Clear(ctx context.Context) error {
	return p.surface.AllOff(ctx)
}

// sleep waits for d on the player clock. Returns false if ctx ends first.
func (p *Player) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := p.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.Chan():
		return true
	}
}

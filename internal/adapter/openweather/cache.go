package openweather

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/ccal-led/internal/domain"
	"github.com/couchcryptid/ccal-led/internal/observability"
)

// Cache wraps a WeatherSource so the provider is called at most once per TTL.
// When a refresh fails the last good reading is served, however old.
type Cache struct {
	inner   domain.WeatherSource
	ttl     time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu   sync.Mutex
	last domain.WeatherSnapshot
}

// NewCache creates a TTL cache decorator. A nil clock uses real time.
func NewCache(inner domain.WeatherSource, ttl time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Weather returns the cached reading while it is fresh and fetches otherwise.
func (c *Cache) Weather(ctx context.Context) (domain.WeatherSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.last.IsZero() && !c.last.Stale(c.clock.Now()) {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return c.last, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()
	return c.refreshLocked(ctx)
}

// Refresh fetches a new reading regardless of the TTL.
func (c *Cache) Refresh(ctx context.Context) (domain.WeatherSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Cache) refreshLocked(ctx context.Context) (domain.WeatherSnapshot, error) {
	snap, err := c.inner.Weather(ctx)
	if err != nil {
		if c.last.IsZero() {
			c.metrics.WeatherFetch.WithLabelValues("error").Inc()
			return domain.WeatherSnapshot{}, fmt.Errorf("%w: %w", domain.ErrNoWeather, err)
		}
		c.metrics.WeatherFetch.WithLabelValues("stale").Inc()
		c.logger.Warn("weather refresh failed, serving cached reading",
			"error", err,
			"age", c.clock.Since(c.last.FetchedAt),
		)
		return c.last, nil
	}

	snap.TTL = c.ttl
	snap.FetchedAt = c.clock.Now()
	c.last = snap
	c.metrics.WeatherFetch.WithLabelValues("success").Inc()
	c.logger.Debug("weather refreshed", "condition", snap.Condition)
	return snap, nil
}

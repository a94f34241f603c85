package render

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/ccal-led/internal/animation"
	"github.com/couchcryptid/ccal-led/internal/display"
	"github.com/couchcryptid/ccal-led/internal/domain"
)

// Temperature readout colors.
var (
	ColdColor     = domain.Color{G: 128, B: 255}
	HotColor      = domain.Color{R: 255}
	NeutralColor  = domain.White
	NegativeColor = domain.Color{G: 200, B: 255}
)

// Temperature thresholds in °C, inclusive.
const (
	ColdAtOrBelow = 5
	HotAtOrAbove  = 25
)

// Weather plays the clip for a weather condition and then shows the
// temperature.
type Weather struct {
	player  *animation.Player
	surface *display.Surface
	rng     *rand.Rand
	logger  *slog.Logger
}

// NewWeather creates a weather presenter. rng seeds the particle clips; nil
// uses a randomly seeded source.
func NewWeather(player *animation.Player, surface *display.Surface, rng *rand.Rand, logger *slog.Logger) *Weather {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Weather{
		player:  player,
		surface: surface,
		rng:     rng,
		logger:  logger,
	}
}

// Select returns a fresh clip for cond. Unknown conditions have no clip.
func (w *Weather) Select(cond domain.Condition, scale float64) (animation.Clip, bool) {
	switch cond {
	case domain.ConditionClear:
		return animation.NewSun(scale), true
	case domain.ConditionClouds:
		return animation.NewCloud(scale), true
	case domain.ConditionRain:
		return animation.NewRain(w.rng, 1, 0.9, scale), true
	case domain.ConditionDrizzle:
		return animation.NewDrizzle(w.rng, scale), true
	case domain.ConditionSnow:
		return animation.NewSnow(w.rng, scale), true
	case domain.ConditionThunderstorm:
		return animation.NewThunderstorm(w.rng, scale), true
	case domain.ConditionMist, domain.ConditionFog:
		return animation.NewFog(w.rng, scale), true
	default:
		return nil, false
	}
}

// Show plays the condition clip for d, clears the strip, then draws the
// temperature readout if the snapshot has one. Unknown conditions skip
// straight to the readout.
func (w *Weather) Show(ctx context.Context, snap domain.WeatherSnapshot, d time.Duration, scale float64) error {
	cond := domain.ParseCondition(snap.Condition)
	if clip, ok := w.Select(cond, scale); ok {
		if err := w.player.PlayFor(ctx, clip, d); err != nil {
			return err
		}
	} else {
		w.logger.Debug("no clip for weather condition", "condition", snap.Condition)
		if err := w.player.Clear(ctx); err != nil {
			return fmt.Errorf("clear before readout: %w", err)
		}
	}

	if snap.Temperature == nil {
		return nil
	}
	return w.ShowTemperature(ctx, *snap.Temperature, scale)
}

// ShowTemperature draws round(temp) as two digits and flushes once.
// Negative readings show their absolute value in NegativeColor.
func (w *Weather) ShowTemperature(ctx context.Context, temp float64, scale float64) error {
	n := int(math.Round(temp))
	color := TemperatureColor(temp)
	if n < 0 {
		n = -n
	}
	return DrawNumber(ctx, w.surface, n, color, scale)
}

// TemperatureColor picks the readout color for temp.
func TemperatureColor(temp float64) domain.Color {
	switch {
	case math.Round(temp) < 0:
		return NegativeColor
	case temp <= ColdAtOrBelow:
		return ColdColor
	case temp >= HotAtOrAbove:
		return HotColor
	default:
		return NeutralColor
	}
}

package domain

import (
	"context"
	"strings"
	"time"
)

// Condition is a normalized weather condition.
type Condition string

const (
	ConditionClear        Condition = "clear"
	ConditionClouds       Condition = "clouds"
	ConditionRain         Condition = "rain"
	ConditionDrizzle      Condition = "drizzle"
	ConditionSnow         Condition = "snow"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionMist         Condition = "mist"
	ConditionFog          Condition = "fog"
	ConditionUnknown      Condition = "unknown"
)

var knownConditions = map[string]Condition{
	"clear":        ConditionClear,
	"clouds":       ConditionClouds,
	"rain":         ConditionRain,
	"drizzle":      ConditionDrizzle,
	"snow":         ConditionSnow,
	"thunderstorm": ConditionThunderstorm,
	"mist":         ConditionMist,
	"fog":          ConditionFog,
}

// ParseCondition matches a provider condition string case-insensitively.
// Anything unrecognised maps to ConditionUnknown.
func ParseCondition(s string) Condition {
	if c, ok := knownConditions[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return ConditionUnknown
}

// WeatherSnapshot is the most recent reading from a weather provider.
type WeatherSnapshot struct {
	Condition   string        `json:"condition"`
	Temperature *float64      `json:"temperature,omitempty"` // °C
	FetchedAt   time.Time     `json:"fetched_at"`
	TTL         time.Duration `json:"ttl"`
}

// Stale reports whether the snapshot is older than its TTL at now.
// A zero FetchedAt is always stale.
func (w WeatherSnapshot) Stale(now time.Time) bool {
	if w.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(w.FetchedAt) > w.TTL
}

// IsZero reports whether the snapshot carries no reading at all.
func (w WeatherSnapshot) IsZero() bool {
	return w.Condition == "" && w.Temperature == nil && w.FetchedAt.IsZero()
}

// WeatherSource returns current weather.
type WeatherSource interface {
	Weather(ctx context.Context) (WeatherSnapshot, error)
}

// Float64 returns a pointer to v, for optional temperatures.
func Float64(v float64) *float64 {
	return &v
}

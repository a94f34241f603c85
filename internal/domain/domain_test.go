package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestParseCondition(t *testing.T) {
	tests := map[string]Condition{
		"Clear":        ConditionClear,
		"CLOUDS":       ConditionClouds,
		"rain":         ConditionRain,
		"Drizzle":      ConditionDrizzle,
		"snow":         ConditionSnow,
		"ThunderStorm": ConditionThunderstorm,
		" mist ":       ConditionMist,
		"Fog":          ConditionFog,
		"Haze":         ConditionUnknown,
		"":             ConditionUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseCondition(in), "ParseCondition(%q)", in)
	}
}

func TestWeatherSnapshot_Stale(t *testing.T) {
	now := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	snap := WeatherSnapshot{FetchedAt: now, TTL: 5 * time.Minute}

	assert.False(t, snap.Stale(now.Add(5*time.Minute)))
	assert.True(t, snap.Stale(now.Add(5*time.Minute+time.Second)))
	assert.True(t, WeatherSnapshot{}.Stale(now))
}

func TestTrackerSample_SumMax(t *testing.T) {
	s := TrackerSample{4, 0, 2}
	assert.Equal(t, 6, s.Sum())
	assert.Equal(t, 4, s.Max())
	assert.Equal(t, 0, TrackerSample{}.Max())
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2025, time.March, 3, 0, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysAgo(now, now.Add(-20*time.Minute)))
	assert.Equal(t, 1, DaysAgo(now, now.Add(-40*time.Minute)))
	assert.Equal(t, 27, DaysAgo(now, time.Date(2025, time.February, 4, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, DaysAgo(now, now.Add(24*time.Hour)))
}

func TestNewActivityReport_UsesClock(t *testing.T) {
	fixed := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	r := NewActivityReport("github", "cycle-1", TrackerSample{1, 2, 3})
	assert.Equal(t, fixed, r.PolledAt)
	assert.Equal(t, 6, r.Total)
	assert.Equal(t, "github", r.Tracker)
}

func TestIsFatal(t *testing.T) {
	hw := &HardwareWriteError{Op: "show", Err: errors.New("bus gone")}
	assert.True(t, IsFatal(hw))
	assert.True(t, IsFatal(fmt.Errorf("render: %w", hw)))
	assert.True(t, IsFatal(&ConfigError{Field: "NUM_LEDS", Reason: "must be positive"}))
	assert.False(t, IsFatal(&TrackerFetchError{Tracker: "github", Err: errors.New("503")}))
	assert.False(t, IsFatal(&WeatherFetchError{Err: ErrNoWeather}))
	assert.False(t, IsFatal(nil))
}

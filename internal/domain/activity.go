package domain

import (
	"context"
	"time"
)

// DefaultDays is the calendar window D: one pixel per day, most recent first.
const DefaultDays = 28

// TrackerSample holds per-day activity counts. Index 0 is today.
type TrackerSample []int

// Sum returns the total count across all days.
func (s TrackerSample) Sum() int {
	total := 0
	for _, c := range s {
		total += c
	}
	return total
}

// Max returns the largest daily count, or 0 for an empty sample.
func (s TrackerSample) Max() int {
	m := 0
	for _, c := range s {
		if c > m {
			m = c
		}
	}
	return m
}

// ColorPair is the palette a tracker renders with.
type ColorPair struct {
	Event    Color `json:"event" yaml:"event"`
	NoEvents Color `json:"no_events" yaml:"no_events"`
}

// Tracker is an external source of daily activity counts.
type Tracker interface {
	// Name identifies the tracker in logs and metrics.
	Name() string

	// Activity fetches a fresh sample. Length is at most the tracker's day window.
	Activity(ctx context.Context) (TrackerSample, error)

	// Colors returns the palette used to render this tracker's calendar.
	Colors() ColorPair
}

// ActivityReport is a tracker sample stamped with where and when it came from.
type ActivityReport struct {
	Tracker  string        `json:"tracker"`
	CycleID  string        `json:"cycle_id"`
	Counts   TrackerSample `json:"counts"`
	Total    int           `json:"total"`
	PolledAt time.Time     `json:"polled_at"`
}

// NewActivityReport stamps a sample with the package clock.
func NewActivityReport(tracker, cycleID string, counts TrackerSample) ActivityReport {
	return ActivityReport{
		Tracker:  tracker,
		CycleID:  cycleID,
		Counts:   counts,
		Total:    counts.Sum(),
		PolledAt: clock.Now().UTC(),
	}
}

// DaysAgo returns how many whole local calendar days separate t from now.
// Negative values mean t is in the future.
func DaysAgo(now, t time.Time) int {
	loc := now.Location()
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.In(loc).Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// Now returns the current time from the package clock.
func Now() time.Time {
	return clock.Now()
}

package scheduler

import (
	"time"

	"github.com/google/uuid"
)

// State is the scheduler's position within a cycle.
type State int32

const (
	StateIdle State = iota
	StatePollingTracker
	StateRenderingTracker
	StatePollingWeather
	StateRenderingWeather
	StateSleeping
	StateOff
	StateStopped
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StatePollingTracker:   "polling_tracker",
	StateRenderingTracker: "rendering_tracker",
	StatePollingWeather:   "polling_weather",
	StateRenderingWeather: "rendering_weather",
	StateSleeping:         "sleeping",
	StateOff:              "off",
	StateStopped:          "stopped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Cycle is one pass over every tracker and the weather. A new value is made
// for each iteration; nothing carries over.
type Cycle struct {
	ID       string
	Index    int
	Started  time.Time
	Slice    time.Duration
	Trackers int
}

// SliceDuration splits the poll budget evenly across n trackers. Zero
// trackers get the whole budget, which the cycle never spends because the
// tracker phase is skipped.
func SliceDuration(budget time.Duration, n int) time.Duration {
	return budget / time.Duration(max(1, n))
}

func newCycle(index int, started time.Time, budget time.Duration, trackers int) Cycle {
	return Cycle{
		ID:       uuid.NewString(),
		Index:    index,
		Started:  started,
		Slice:    SliceDuration(budget, trackers),
		Trackers: trackers,
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ccal"

// Metrics holds the Prometheus counters, histograms, and gauges for the display service.
type Metrics struct {
	CyclesTotal      prometheus.Counter
	CycleDuration    prometheus.Histogram
	SchedulerRunning prometheus.Gauge
	DisplayOn        prometheus.Gauge

	// Tracker polling metrics.
	TrackerPolls        *prometheus.CounterVec   // labels: tracker, outcome={success,error,empty}
	TrackerPollDuration *prometheus.HistogramVec // labels: tracker

	// Weather metrics.
	WeatherFetch *prometheus.CounterVec // labels: outcome={success,error,stale}
	WeatherCache *prometheus.CounterVec // labels: result={hit,miss}

	// Rendering metrics.
	FramesFlushed prometheus.Counter
	ClipRuns      *prometheus.CounterVec // labels: clip
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.SchedulerRunning,
		m.DisplayOn,
		m.TrackerPolls,
		m.TrackerPollDuration,
		m.WeatherFetch,
		m.WeatherCache,
		m.FramesFlushed,
		m.ClipRuns,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total completed scheduler cycles.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one tracker and weather cycle.",
			Buckets:   []float64{5, 10, 20, 30, 45, 60, 90, 120, 300},
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 while the scheduler loop is active, 0 when stopped.",
		}),
		DisplayOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "display_on",
			Help:      "1 inside the on-hours window, 0 while the display is off.",
		}),
		TrackerPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracker_polls_total",
			Help:      "Tracker polls by tracker and outcome.",
		}, []string{"tracker", "outcome"}),
		TrackerPollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tracker_poll_duration_seconds",
			Help:      "Tracker API poll duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"tracker"}),
		WeatherFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_fetch_total",
			Help:      "Weather provider requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		FramesFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_flushed_total",
			Help:      "Total frames pushed to the pixel sink.",
		}),
		ClipRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clip_runs_total",
			Help:      "Animation clip invocations by clip name.",
		}, []string{"clip"}),
	}
}

// Package scheduler runs the display loop: poll each tracker and render its
// calendar, then show the weather, then rest, for as long as the display is
// inside its on-hours window.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/ccal-led/internal/domain"
	"github.com/couchcryptid/ccal-led/internal/observability"
)

// CalendarRenderer draws one tracker's sample.
type CalendarRenderer interface {
	Render(ctx context.Context, counts domain.TrackerSample, colors domain.ColorPair, brightness float64) error
}

// WeatherPresenter plays a weather clip and the temperature readout.
type WeatherPresenter interface {
	Show(ctx context.Context, snap domain.WeatherSnapshot, d time.Duration, brightness float64) error
}

// Display blanks the strip.
type Display interface {
	AllOff(ctx context.Context) error
}

// Publisher receives every successful tracker poll.
type Publisher interface {
	Publish(ctx context.Context, report domain.ActivityReport) error
}

// PowerSwitch cuts strip power outside the on-hours window.
type PowerSwitch interface {
	SetPower(on bool) error
}

// Options configures a Scheduler. Trackers, Weather, Calendar, Presenter,
// and Display are required.
type Options struct {
	Trackers  []domain.Tracker
	Weather   domain.WeatherSource
	Calendar  CalendarRenderer
	Presenter WeatherPresenter
	Display   Display
	Publisher Publisher
	Power     PowerSwitch

	Clock   clockwork.Clock
	Logger  *slog.Logger
	Metrics *observability.Metrics

	Brightness         float64
	PollBudget         time.Duration
	WeatherDisplayTime time.Duration
	// Dwell is the rest at the end of every cycle, while the temperature
	// readout stays on the strip.
	Dwell        time.Duration
	ErrorBackoff time.Duration
	Window       Window
}

// Scheduler interleaves tracker polling, calendar rendering, and weather.
type Scheduler struct {
	opts    Options
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	state  atomic.Int32
	ready  atomic.Bool
	cycles int
	dark   bool
}

// New creates a Scheduler.
func New(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		opts:    opts,
		clock:   opts.Clock,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// CheckReadiness returns nil once a full cycle has completed.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("scheduler has not completed a cycle yet")
	}
	return nil
}

// Run executes cycles until ctx is cancelled or a fatal error occurs.
// Cancellation turns the strip off and returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"trackers", len(s.opts.Trackers),
		"poll_budget", s.opts.PollBudget,
		"on_hour", s.opts.Window.OnHour,
		"off_hour", s.opts.Window.OffHour,
	)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)
	defer s.setState(StateStopped)

	for {
		if ctx.Err() != nil {
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return s.allOff(context.WithoutCancel(ctx))
		}

		now := s.clock.Now()
		if !s.displayOn(now) {
			if err := s.goDark(ctx); err != nil {
				return err
			}
			wait := s.opts.Window.NextOn(now).Sub(now)
			s.logger.Info("display off, sleeping until on hours", "wake_in", wait)
			s.sleep(ctx, wait)
			continue
		}
		s.wake()

		err := s.runCycle(ctx)
		if err == nil {
			continue
		}
		if domain.IsFatal(err) {
			s.logger.Error("fatal display error, stopping", "error", err)
			return err
		}
		s.logger.Error("cycle failed, backing off", "error", err, "backoff", s.opts.ErrorBackoff)
		s.sleep(ctx, s.opts.ErrorBackoff)
	}
}

// runCycle runs one cycle and turns a panic that escaped the per-source
// guards into a non-fatal error, so Run backs off instead of crashing.
func (s *Scheduler) runCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()
	return s.RunCycle(ctx)
}

// displayOn reports whether the strip should be lit at now. Zero brightness
// counts as off unless the window is always on.
func (s *Scheduler) displayOn(now time.Time) bool {
	if s.opts.Window.AlwaysOn() {
		return true
	}
	return s.opts.Brightness > 0 && s.opts.Window.Active(now)
}

// RunCycle performs one pass over every tracker and the weather. Tracker and
// weather failures are logged and skipped; only fatal display errors are
// returned.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	c := newCycle(s.cycles, s.clock.Now(), s.opts.PollBudget, len(s.opts.Trackers))
	s.cycles++
	log := s.logger.With("cycle_id", c.ID, "cycle", c.Index)
	log.Debug("cycle started", "slice", c.Slice, "trackers", c.Trackers)

	for _, tr := range s.opts.Trackers {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.trackerSlice(ctx, log, c, tr); err != nil {
			return err
		}
		if !s.sleep(ctx, c.Slice) {
			return nil
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := s.weather(ctx, log); err != nil {
		return err
	}

	s.setState(StateSleeping)
	if !s.sleep(ctx, s.opts.Dwell) {
		return nil
	}
	s.setState(StateIdle)

	elapsed := s.clock.Since(c.Started)
	s.metrics.CyclesTotal.Inc()
	s.metrics.CycleDuration.Observe(elapsed.Seconds())
	s.ready.Store(true)
	log.Debug("cycle finished", "elapsed", elapsed)
	return nil
}

// trackerSlice polls one tracker and renders its calendar. Failures and
// panics inside the tracker are contained here.
func (s *Scheduler) trackerSlice(ctx context.Context, log *slog.Logger, c Cycle, tr domain.Tracker) (err error) {
	name := tr.Name()
	defer func() {
		if r := recover(); r != nil {
			ferr := &domain.TrackerFetchError{Tracker: name, Err: fmt.Errorf("panic: %v", r)}
			log.Error("tracker poll failed", "tracker", name, "error", ferr)
			s.metrics.TrackerPolls.WithLabelValues(name, "error").Inc()
			err = nil
		}
	}()

	s.setState(StatePollingTracker)
	start := s.clock.Now()
	counts, ferr := tr.Activity(ctx)
	s.metrics.TrackerPollDuration.WithLabelValues(name).Observe(s.clock.Since(start).Seconds())
	if ferr != nil {
		var tfe *domain.TrackerFetchError
		if !errors.As(ferr, &tfe) {
			ferr = &domain.TrackerFetchError{Tracker: name, Err: ferr}
		}
		log.Error("tracker poll failed", "tracker", name, "error", ferr)
		s.metrics.TrackerPolls.WithLabelValues(name, "error").Inc()
		return nil
	}

	if s.opts.Publisher != nil {
		report := domain.NewActivityReport(name, c.ID, counts)
		if perr := s.opts.Publisher.Publish(ctx, report); perr != nil {
			log.Warn("publish activity report failed", "tracker", name, "error", perr)
		}
	}

	if counts.Sum() == 0 {
		log.Debug("tracker has no activity, skipping render", "tracker", name)
		s.metrics.TrackerPolls.WithLabelValues(name, "empty").Inc()
		return nil
	}

	s.setState(StateRenderingTracker)
	if rerr := s.opts.Calendar.Render(ctx, counts, tr.Colors(), s.opts.Brightness); rerr != nil {
		if domain.IsFatal(rerr) {
			return fmt.Errorf("render %s calendar: %w", name, rerr)
		}
		log.Error("render calendar failed", "tracker", name, "error", rerr)
		return nil
	}
	s.metrics.TrackerPolls.WithLabelValues(name, "success").Inc()
	log.Debug("tracker rendered", "tracker", name, "total", counts.Sum())
	return nil
}

// weather fetches and shows the current conditions, skipping them on failure.
// Panics in the source or the presenter are contained here.
func (s *Scheduler) weather(ctx context.Context, log *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			werr := &domain.WeatherFetchError{Err: fmt.Errorf("panic: %v", r)}
			log.Error("weather segment failed", "error", werr)
			err = nil
		}
	}()

	s.setState(StatePollingWeather)
	snap, err := s.opts.Weather.Weather(ctx)
	if err != nil {
		log.Warn("weather unavailable, skipping", "error", err)
		return nil
	}

	s.setState(StateRenderingWeather)
	if err := s.opts.Presenter.Show(ctx, snap, s.opts.WeatherDisplayTime, s.opts.Brightness); err != nil {
		if domain.IsFatal(err) {
			return fmt.Errorf("show weather: %w", err)
		}
		log.Error("show weather failed", "error", err)
	}
	return nil
}

// goDark blanks the strip and cuts power the first time the display leaves
// its window.
func (s *Scheduler) goDark(ctx context.Context) error {
	s.setState(StateOff)
	if s.dark {
		return nil
	}
	if err := s.allOff(ctx); err != nil {
		return err
	}
	if s.opts.Power != nil {
		if err := s.opts.Power.SetPower(false); err != nil {
			s.logger.Warn("power off failed", "error", err)
		}
	}
	s.dark = true
	s.metrics.DisplayOn.Set(0)
	return nil
}

// wake restores power after an off period.
func (s *Scheduler) wake() {
	if s.dark {
		if s.opts.Power != nil {
			if err := s.opts.Power.SetPower(true); err != nil {
				s.logger.Warn("power on failed", "error", err)
			}
		}
		s.logger.Info("display on")
	}
	s.dark = false
	s.metrics.DisplayOn.Set(1)
}

func (s *Scheduler) allOff(ctx context.Context) error {
	if err := s.opts.Display.AllOff(ctx); err != nil {
		return fmt.Errorf("turn display off: %w", err)
	}
	return nil
}

func (s *Scheduler) setState(st State) {
	if prev := State(s.state.Swap(int32(st))); prev != st {
		s.logger.Debug("scheduler state", "from", prev, "to", st)
	}
}

// sleep waits for d on the scheduler clock. Returns false if ctx ends first.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := s.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.Chan():
		return true
	}
}

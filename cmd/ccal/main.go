package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/ccal-led/internal/adapter/filetracker"
	"github.com/couchcryptid/ccal-led/internal/adapter/github"
	"github.com/couchcryptid/ccal-led/internal/adapter/gpio"
	httpadapter "github.com/couchcryptid/ccal-led/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/ccal-led/internal/adapter/kafka"
	"github.com/couchcryptid/ccal-led/internal/adapter/opc"
	"github.com/couchcryptid/ccal-led/internal/adapter/openweather"
	"github.com/couchcryptid/ccal-led/internal/adapter/strava"
	"github.com/couchcryptid/ccal-led/internal/adapter/terminal"
	"github.com/couchcryptid/ccal-led/internal/adapter/ws281x"
	"github.com/couchcryptid/ccal-led/internal/animation"
	"github.com/couchcryptid/ccal-led/internal/config"
	"github.com/couchcryptid/ccal-led/internal/display"
	"github.com/couchcryptid/ccal-led/internal/domain"
	"github.com/couchcryptid/ccal-led/internal/observability"
	"github.com/couchcryptid/ccal-led/internal/render"
	"github.com/couchcryptid/ccal-led/internal/scheduler"
)

const (
	apiTimeout     = 10 * time.Second
	weatherTimeout = 10 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	sink, err := openSink(cfg, logger)
	if err != nil {
		logger.Error("failed to open pixel sink", "sink", cfg.Sink, "error", err)
		return 1
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Error("pixel sink close error", "error", err)
		}
	}()
	logger.Info("pixel sink ready", "sink", cfg.Sink, "leds", cfg.NumLEDs)

	surface := display.NewSurface(sink, cfg.NumLEDs, metrics)
	player := animation.NewPlayer(surface, nil, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if clip, d := animation.Startup(cfg.StartupAnimation, cfg.Brightness); clip != nil {
		logger.Info("playing startup animation", "clip", clip.Name())
		if err := player.PlayFor(ctx, clip, d); err != nil {
			logger.Error("startup animation failed", "error", err)
			return 1
		}
	}

	trackers, err := buildTrackers(cfg, logger)
	if err != nil {
		logger.Error("failed to configure trackers", "error", err)
		return 1
	}
	if len(trackers) == 0 {
		logger.Warn("no trackers configured, showing weather only")
	}

	client := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.WeatherLat, cfg.WeatherLon, weatherTimeout, logger)
	weather := openweather.NewCache(client, cfg.WeatherTTL, nil, logger, metrics)

	opts := scheduler.Options{
		Trackers:           trackers,
		Weather:            weather,
		Calendar:           render.NewCalendar(surface),
		Presenter:          render.NewWeather(player, surface, nil, logger),
		Display:            surface,
		Logger:             logger,
		Metrics:            metrics,
		Brightness:         cfg.Brightness,
		PollBudget:         cfg.PollTime,
		WeatherDisplayTime: cfg.WeatherDisplayTime,
		Dwell:              cfg.WeatherDisplayTime,
		ErrorBackoff:       cfg.ErrorBackoff,
		Window:             scheduler.Window{OnHour: cfg.OnHour, OffHour: cfg.OffHour},
	}

	// Activity report publishing (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	if cfg.KafkaEnabled {
		publisher := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		opts.Publisher = publisher
		logger.Info("activity publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	if cfg.PowerSwitchEnabled() {
		relay, err := gpio.Open(cfg.PowerGPIOChip, cfg.PowerGPIOLine, logger)
		if err != nil {
			logger.Error("failed to open power relay", "chip", cfg.PowerGPIOChip, "line", cfg.PowerGPIOLine, "error", err)
			return 1
		}
		defer func() {
			if err := relay.Close(); err != nil {
				logger.Error("power relay close error", "error", err)
			}
		}()
		opts.Power = relay
	}

	sched := scheduler.New(opts)
	srv := httpadapter.NewServer(cfg.HTTPAddr, sched, surface, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start display loop. A fatal hardware error ends the process.
	runErr := make(chan error, 1)
	go func() {
		err := sched.Run(ctx)
		if err != nil {
			logger.Error("scheduler error", "error", err)
			stop()
		}
		runErr <- err
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	exitCode := 0
	select {
	case err := <-runErr:
		if err != nil {
			exitCode = 1
		}
	case <-shutdownCtx.Done():
		logger.Warn("scheduler did not stop before shutdown timeout")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := surface.AllOff(shutdownCtx); err != nil {
		logger.Error("display off error", "error", err)
	}

	logger.Info("shutdown complete")
	return exitCode
}

func openSink(cfg *config.Config, logger *slog.Logger) (domain.PixelSink, error) {
	switch cfg.Sink {
	case config.SinkOPC:
		return opc.Dial(cfg.OPCAddr, cfg.OPCChannel, logger)
	case config.SinkWS281x:
		return ws281x.Open(cfg.WS281xPin, cfg.NumLEDs, logger)
	case config.SinkTerminal:
		return terminal.New(os.Stderr), nil
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
}

func buildTrackers(cfg *config.Config, logger *slog.Logger) ([]domain.Tracker, error) {
	var trackers []domain.Tracker

	if cfg.GitHubEnabled() {
		trackers = append(trackers, github.NewTracker(cfg.GitHubUsername, cfg.GitHubToken, cfg.NumDays, cfg.GitHubColors, apiTimeout, logger))
		logger.Info("github tracker enabled", "user", cfg.GitHubUsername)
	}

	if cfg.StravaEnabled() {
		creds := strava.Credentials{
			ClientID:     cfg.StravaClientID,
			ClientSecret: cfg.StravaClientSecret,
			RefreshToken: cfg.StravaRefreshToken,
		}
		trackers = append(trackers, strava.NewTracker(creds, cfg.NumDays, cfg.StravaColors, apiTimeout, logger))
		logger.Info("strava tracker enabled")
	}

	for _, path := range cfg.TrackerFiles {
		t, err := filetracker.Open(path, cfg.NumDays, logger)
		if err != nil {
			return nil, fmt.Errorf("tracker file %s: %w", path, err)
		}
		trackers = append(trackers, t)
		logger.Info("file tracker enabled", "name", t.Name(), "path", path)
	}

	return trackers, nil
}

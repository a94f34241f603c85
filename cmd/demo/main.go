// Command demo plays every animation clip and then counts from 0 to 99 on a
// pixel sink. It is meant for checking wiring and glyphs on new hardware.
//
// Usage:
//
//	go run ./cmd/demo -sink terminal
//	go run ./cmd/demo -sink opc -opc-addr fadecandy.local:7890 -clip-time 3s
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/ccal-led/internal/adapter/opc"
	"github.com/couchcryptid/ccal-led/internal/adapter/terminal"
	"github.com/couchcryptid/ccal-led/internal/adapter/ws281x"
	"github.com/couchcryptid/ccal-led/internal/animation"
	"github.com/couchcryptid/ccal-led/internal/config"
	"github.com/couchcryptid/ccal-led/internal/display"
	"github.com/couchcryptid/ccal-led/internal/domain"
	"github.com/couchcryptid/ccal-led/internal/observability"
	"github.com/couchcryptid/ccal-led/internal/render"
)

var conditions = []domain.Condition{
	domain.ConditionClear,
	domain.ConditionClouds,
	domain.ConditionRain,
	domain.ConditionDrizzle,
	domain.ConditionSnow,
	domain.ConditionThunderstorm,
	domain.ConditionFog,
}

var startupKinds = []int{
	animation.StartupWipe,
	animation.StartupChase,
	animation.StartupRainbow,
	animation.StartupFlash,
	-1, // default loop
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	sinkName := flag.String("sink", config.SinkTerminal, "pixel sink: terminal, opc, or ws281x")
	opcAddr := flag.String("opc-addr", "localhost:7890", "Open Pixel Control server address")
	opcChannel := flag.Uint("opc-channel", 0, "Open Pixel Control channel")
	pin := flag.Int("pin", 18, "WS281x data GPIO pin")
	leds := flag.Int("leds", 28, "number of pixels")
	brightness := flag.Float64("brightness", 0.8, "brightness scale 0..1")
	clipTime := flag.Duration("clip-time", 5*time.Second, "how long each weather clip plays")
	countDelay := flag.Duration("count-delay", 150*time.Millisecond, "delay between counter steps")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *opcChannel > 255 {
		return fmt.Errorf("opc-channel must be 0-255, got %d", *opcChannel)
	}

	logger := sharedobs.NewLogger(*logLevel, "text")
	metrics := observability.NewMetrics()

	var sink domain.PixelSink
	var err error
	switch *sinkName {
	case config.SinkTerminal:
		sink = terminal.New(os.Stderr)
	case config.SinkOPC:
		sink, err = opc.Dial(*opcAddr, uint8(*opcChannel), logger)
	case config.SinkWS281x:
		sink, err = ws281x.Open(*pin, *leds, logger)
	default:
		err = fmt.Errorf("unknown sink %q", *sinkName)
	}
	if err != nil {
		return err
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	surface := display.NewSurface(sink, *leds, metrics)
	player := animation.NewPlayer(surface, nil, logger, metrics)
	weather := render.NewWeather(player, surface, nil, logger)

	if err := playAll(ctx, player, weather, *brightness, *clipTime, logger); err != nil {
		return err
	}
	if err := count(ctx, surface, *brightness, *countDelay); err != nil {
		return err
	}
	return surface.AllOff(context.WithoutCancel(ctx))
}

func playAll(ctx context.Context, player *animation.Player, weather *render.Weather, scale float64, d time.Duration, logger *slog.Logger) error {
	for _, kind := range startupKinds {
		clip, limit := animation.Startup(kind, scale)
		logger.Info("playing", "clip", clip.Name())
		if err := player.PlayFor(ctx, clip, limit); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	for _, cond := range conditions {
		clip, _ := weather.Select(cond, scale)
		logger.Info("playing", "clip", clip.Name())
		if err := player.PlayFor(ctx, clip, d); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

func count(ctx context.Context, surface *display.Surface, scale float64, delay time.Duration) error {
	for n := range 100 {
		color := animation.Wheel(uint8(n * 255 / 99))
		if err := render.DrawNumber(ctx, surface, n, color, scale); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
	return nil
}

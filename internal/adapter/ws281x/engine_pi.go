//go:build pi

package ws281x

import (
	"fmt"
	"log/slog"

	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"
)

// Open initializes the strip on pin with n pixels. Channel brightness stays
// at full scale; the frame surface has already applied brightness.
func Open(pin, n int, logger *slog.Logger) (*Sink, error) {
	opt := ws2811.DefaultOptions
	opt.Channels[0].GpioPin = pin
	opt.Channels[0].LedCount = n
	opt.Channels[0].Brightness = 255

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, fmt.Errorf("create ws281x device: %w", err)
	}
	logger.Info("ws281x strip ready", "pin", pin, "leds", n)
	return newSink(dev, logger)
}

// Package ws281x drives a WS2811/WS2812 strip wired to a Raspberry Pi GPIO
// pin. The hardware engine is only compiled with the pi build tag.
package ws281x

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

// engine is the subset of the rpi-ws281x driver the sink uses.
type engine interface {
	Init() error
	Render() error
	Wait() error
	Fini()
	Leds(channel int) []uint32
}

// Sink implements domain.PixelSink on channel 0 of a ws281x engine.
type Sink struct {
	mu     sync.Mutex
	dev    engine
	logger *slog.Logger
}

func newSink(dev engine, logger *slog.Logger) (*Sink, error) {
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("init ws281x: %w", err)
	}
	return &Sink{dev: dev, logger: logger}, nil
}

// Write copies colors into the driver buffer as 0x00RRGGBB words. Pixels
// beyond the strip length are dropped.
func (s *Sink) Write(colors []domain.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	leds := s.dev.Leds(0)
	for i := range leds {
		if i < len(colors) {
			leds[i] = colors[i].Uint32()
		} else {
			leds[i] = 0
		}
	}
	return nil
}

// Show renders the buffer and waits for the DMA transfer to finish.
func (s *Sink) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.dev.Render(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := s.dev.Wait(); err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	return nil
}

// Close releases the driver.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dev.Fini()
	s.logger.Debug("ws281x released")
	return nil
}

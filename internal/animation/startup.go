package animation

import (
	"time"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

// Startup animation kinds, as configured by STARTUP_ANIMATION.
const (
	StartupNone    = 0
	StartupWipe    = 1
	StartupChase   = 2
	StartupRainbow = 3
	StartupFlash   = 4
)

// DefaultStartupDuration bounds the grey fallback loop.
const DefaultStartupDuration = 3 * time.Second

// Startup returns the boot feedback clip for kind and how long to play it.
// A zero duration means play until the clip finishes. StartupNone returns a
// nil clip; unrecognised kinds fall back to the grey loop.
func Startup(kind int, scale float64) (Clip, time.Duration) {
	switch kind {
	case StartupNone:
		return nil, 0
	case StartupWipe:
		return NewColorWipe(domain.White, 30*time.Millisecond, scale), 0
	case StartupChase:
		return NewTheaterChase(domain.Color{B: 255}, 50*time.Millisecond, scale), 0
	case StartupRainbow:
		if scale <= 0 {
			scale = 1
		}
		return NewRainbowCycle(10*time.Millisecond, scale), 0
	case StartupFlash:
		return NewFlash(scale), 0
	default:
		return NewDefault(scale), DefaultStartupDuration
	}
}

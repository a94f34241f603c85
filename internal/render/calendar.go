// Package render turns tracker samples and weather snapshots into frames.
package render

import (
	"context"

	"github.com/couchcryptid/ccal-led/internal/display"
	"github.com/couchcryptid/ccal-led/internal/domain"
)

// minEventBrightness lifts every active day above the no-event pixels.
const minEventBrightness = 0.05

// Calendar draws one tracker's per-day counts as a static frame.
type Calendar struct {
	surface *display.Surface
}

// NewCalendar creates a calendar renderer over surface.
func NewCalendar(surface *display.Surface) *Calendar {
	return &Calendar{surface: surface}
}

// Render lights pixel i for day i. Active days use the event color at
// count/max plus a small floor; idle days use the no-events color at
// brightness. A window with no activity at all is drawn at half brightness.
// The frame is flushed once. Empty samples are ignored.
func (c *Calendar) Render(ctx context.Context, counts domain.TrackerSample, colors domain.ColorPair, brightness float64) error {
	if len(counts) == 0 {
		return nil
	}

	return c.surface.Draw(ctx, func(cv display.Canvas) {
		n := min(cv.Len(), len(counts))
		peak := counts.Max()
		if peak == 0 {
			for day := range n {
				cv.SetPixel(day, colors.NoEvents, brightness*0.5)
			}
			return
		}

		for day := range n {
			if count := counts[day]; count > 0 {
				cv.SetPixel(day, colors.Event, float64(count)/float64(peak)+minEventBrightness)
			} else {
				cv.SetPixel(day, colors.NoEvents, brightness)
			}
		}
	})
}

package animation

import (
	"time"

	"github.com/couchcryptid/ccal-led/internal/display"
	"github.com/couchcryptid/ccal-led/internal/domain"
)

// ColorWipe lights the strip one pixel at a time.
type ColorWipe struct {
	color domain.Color
	wait  time.Duration
	scale float64
	next  int
}

// NewColorWipe creates a wipe that advances one pixel every wait.
func NewColorWipe(color domain.Color, wait time.Duration, scale float64) *ColorWipe {
	return &ColorWipe{color: color, wait: wait, scale: scale}
}

func (w *ColorWipe) Name() string { return "color_wipe" }

func (w *ColorWipe) Step(c display.Canvas, _ time.Duration) (time.Duration, bool) {
	if w.next >= c.Len() {
		return 0, true
	}
	c.SetPixel(w.next, w.color, w.scale)
	w.next++
	return w.wait, false
}

// TheaterChase marches every third pixel along the strip.
type TheaterChase struct {
	color domain.Color
	wait  time.Duration
	scale float64
	frame int
}

const (
	chaseSpacing = 3
	chaseCycles  = 15
)

// NewTheaterChase creates a chase with one frame every wait.
func NewTheaterChase(color domain.Color, wait time.Duration, scale float64) *TheaterChase {
	return &TheaterChase{color: color, wait: wait, scale: scale}
}

func (tc *TheaterChase) Name() string { return "theater_chase" }

func (tc *TheaterChase) Step(c display.Canvas, _ time.Duration) (time.Duration, bool) {
	if tc.frame >= chaseSpacing*chaseCycles {
		return 0, true
	}
	phase := tc.frame / chaseCycles
	for i := range c.Len() {
		if (i+phase)%chaseSpacing == 0 {
			c.SetPixel(i, tc.color, tc.scale)
		} else {
			c.SetPixel(i, domain.Black, tc.scale)
		}
	}
	tc.frame++
	return tc.wait, false
}

// Wheel maps a position 0–255 onto a red, green, blue hue ramp.
func Wheel(pos uint8) domain.Color {
	p := int(pos)
	switch {
	case p < 85:
		return domain.NewColor(p*3, 255-p*3, 0)
	case p < 170:
		p -= 85
		return domain.NewColor(255-p*3, 0, p*3)
	default:
		p -= 170
		return domain.NewColor(0, p*3, 255-p*3)
	}
}

// RainbowCycle spreads the color wheel across the strip and rotates it once.
type RainbowCycle struct {
	wait  time.Duration
	scale float64
	frame int
}

// NewRainbowCycle creates a rainbow that advances one wheel step every wait.
func NewRainbowCycle(wait time.Duration, scale float64) *RainbowCycle {
	return &RainbowCycle{wait: wait, scale: scale}
}

func (r *RainbowCycle) Name() string { return "rainbow_cycle" }

func (r *RainbowCycle) Step(c display.Canvas, _ time.Duration) (time.Duration, bool) {
	if r.frame >= 256 {
		return 0, true
	}
	n := c.Len()
	for i := range n {
		c.SetPixel(i, Wheel(uint8((i*256/n+r.frame)&255)), r.scale)
	}
	r.frame++
	return r.wait, false
}

var flashPastels = []domain.Color{
	{R: 255, G: 200, B: 200},
	{R: 200, G: 255, B: 200},
	{R: 200, G: 200, B: 255},
	{R: 255, G: 255, B: 200},
	{R: 200, G: 255, B: 255},
	{R: 255, G: 200, B: 255},
}

const (
	flashRows      = 4
	flashCols      = 7
	flashTailSteps = 4
)

type flashFrame struct {
	draw func(c display.Canvas)
	wait time.Duration
}

// Flash blinks white twice, then sweeps pastel comets along a 4×7
// serpentine, one row at a time.
type Flash struct {
	scale  float64
	frames []flashFrame
	next   int
}

// NewFlash creates the startup flash sequence.
func NewFlash(scale float64) *Flash {
	f := &Flash{scale: scale}
	f.frames = f.build()
	return f
}

func (f *Flash) Name() string { return "flash" }

func (f *Flash) Step(c display.Canvas, _ time.Duration) (time.Duration, bool) {
	if f.next >= len(f.frames) {
		return 0, true
	}
	fr := f.frames[f.next]
	f.next++
	fr.draw(c)
	return fr.wait, false
}

// flashRowIndices walks row r forward on even rows and backward on odd rows.
func flashRowIndices(r int) []int {
	out := make([]int, flashCols)
	for k := range flashCols {
		if r%2 == 0 {
			out[k] = r*flashCols + k
		} else {
			out[k] = (r+1)*flashCols - 1 - k
		}
	}
	return out
}

func (f *Flash) build() []flashFrame {
	var frames []flashFrame
	for range 2 {
		frames = append(frames,
			flashFrame{draw: func(c display.Canvas) { c.Fill(domain.White, f.scale) }, wait: 100 * time.Millisecond},
			flashFrame{draw: func(c display.Canvas) { c.Fill(domain.Black, 0) }, wait: 70 * time.Millisecond},
		)
	}

	for _, color := range flashPastels {
		for r := range flashRows {
			indices := flashRowIndices(r)
			for head := range indices {
				frames = append(frames, flashFrame{
					draw: func(c display.Canvas) {
						for tail := range flashTailSteps {
							at := head - tail
							if at < 0 {
								break
							}
							fade := max(0.15, 0.5-0.1*float64(tail))
							faded := domain.NewColor(
								int(float64(color.R)*fade),
								int(float64(color.G)*fade),
								int(float64(color.B)*fade),
							)
							c.SetPixel(indices[at], faded, f.scale)
						}
					},
					wait: 30 * time.Millisecond,
				})
			}
			frames = append(frames, flashFrame{
				draw: func(c display.Canvas) {
					for _, i := range indices {
						c.SetPixel(i, domain.Black, 0)
					}
				},
			})
		}
	}
	return frames
}

package animation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

// drain steps a finite clip until it reports done and returns the number of
// frames it drew.
func drain(t *testing.T, clip Clip, c *canvas) int {
	t.Helper()
	for frames := 0; frames < 10_000; frames++ {
		if _, done := clip.Step(c, 0); done {
			return frames
		}
	}
	t.Fatalf("%s never finished", clip.Name())
	return 0
}

func TestColorWipe(t *testing.T) {
	c := newCanvas(5)
	w := NewColorWipe(domain.White, 30*time.Millisecond, 1)

	wait, done := w.Step(c, 0)
	assert.Equal(t, 30*time.Millisecond, wait)
	assert.False(t, done)
	assert.Equal(t, []int{0}, c.lit())

	w.Step(c, 0)
	w.Step(c, 0)
	assert.Equal(t, []int{0, 1, 2}, c.lit())

	assert.Equal(t, 2, drain(t, w, c))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, c.lit())
}

func TestTheaterChase(t *testing.T) {
	blue := domain.Color{B: 255}
	c := newCanvas(7)
	tc := NewTheaterChase(blue, 50*time.Millisecond, 1)

	wait, _ := tc.Step(c, 0)
	assert.Equal(t, 50*time.Millisecond, wait)
	assert.Equal(t, []int{0, 3, 6}, c.lit())

	for range chaseCycles - 1 {
		tc.Step(c, 0)
	}
	tc.Step(c, 0)
	assert.Equal(t, []int{2, 5}, c.lit(), "second phase")

	for range chaseCycles {
		tc.Step(c, 0)
	}
	assert.Equal(t, []int{1, 4}, c.lit(), "third phase")

	assert.Equal(t, chaseSpacing*chaseCycles, drain(t, NewTheaterChase(blue, 0, 1), newCanvas(7)))
}

func TestWheel(t *testing.T) {
	tests := []struct {
		pos  uint8
		want domain.Color
	}{
		{0, domain.Color{G: 255}},
		{42, domain.Color{R: 126, G: 129}},
		{85, domain.Color{R: 255}},
		{127, domain.Color{R: 129, B: 126}},
		{170, domain.Color{B: 255}},
		{255, domain.Color{G: 255}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Wheel(tt.pos), "Wheel(%d)", tt.pos)
	}
}

func TestRainbowCycle(t *testing.T) {
	c := newCanvas(4)
	r := NewRainbowCycle(10*time.Millisecond, 0.5)

	wait, _ := r.Step(c, 0)
	assert.Equal(t, 10*time.Millisecond, wait)
	assert.Equal(t, cell{color: Wheel(0), brightness: 0.5}, c.cells[0])
	assert.Equal(t, cell{color: Wheel(64), brightness: 0.5}, c.cells[1])
	assert.Equal(t, cell{color: Wheel(192), brightness: 0.5}, c.cells[3])

	r.Step(c, 0)
	assert.Equal(t, Wheel(1), c.cells[0].color)

	assert.Equal(t, 254, drain(t, r, c))
}

func TestFlash_Sequence(t *testing.T) {
	c := newCanvas(28)
	f := NewFlash(1)

	wait, _ := f.Step(c, 0)
	assert.Equal(t, 100*time.Millisecond, wait)
	assert.Len(t, c.lit(), 28)

	wait, _ = f.Step(c, 0)
	assert.Equal(t, 70*time.Millisecond, wait)
	assert.Empty(t, c.lit())

	f.Step(c, 0)
	f.Step(c, 0)

	// First comet head on row 0 at half intensity.
	wait, _ = f.Step(c, 0)
	assert.Equal(t, 30*time.Millisecond, wait)
	assert.Equal(t, []int{0}, c.lit())
	assert.Equal(t, domain.Color{R: 127, G: 100, B: 100}, c.cells[0].color)

	f.Step(c, 0)
	f.Step(c, 0)
	f.Step(c, 0)
	f.Step(c, 0)
	// Head at pixel 4 with the tail fading behind it.
	assert.Equal(t, domain.Color{R: 127, G: 100, B: 100}, c.cells[4].color)
	assert.Equal(t, domain.Color{R: 102, G: 80, B: 80}, c.cells[3].color)
	assert.Equal(t, domain.Color{R: 76, G: 60, B: 60}, c.cells[2].color)
	assert.Equal(t, domain.Color{R: 50, G: 39, B: 39}, c.cells[1].color)

	total := 5 + 4 + drain(t, f, c)
	assert.Equal(t, 4+len(flashPastels)*flashRows*(flashCols+1), total)
	assert.Empty(t, c.lit())
}

func TestFlashRowIndices(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, flashRowIndices(0))
	assert.Equal(t, []int{13, 12, 11, 10, 9, 8, 7}, flashRowIndices(1))
	assert.Equal(t, []int{27, 26, 25, 24, 23, 22, 21}, flashRowIndices(3))
}

func TestStartup(t *testing.T) {
	tests := []struct {
		kind     int
		name     string
		duration time.Duration
	}{
		{StartupWipe, "color_wipe", 0},
		{StartupChase, "theater_chase", 0},
		{StartupRainbow, "rainbow_cycle", 0},
		{StartupFlash, "flash", 0},
		{9, "default", DefaultStartupDuration},
		{-1, "default", DefaultStartupDuration},
	}
	for _, tt := range tests {
		clip, d := Startup(tt.kind, 0.8)
		require.NotNil(t, clip, "kind %d", tt.kind)
		assert.Equal(t, tt.name, clip.Name())
		assert.Equal(t, tt.duration, d)
	}

	clip, _ := Startup(StartupNone, 0.8)
	assert.Nil(t, clip)
}

func TestStartup_RainbowDefaultsToFullBrightness(t *testing.T) {
	clip, _ := Startup(StartupRainbow, 0)
	c := newCanvas(3)
	clip.Step(c, 0)
	assert.InDelta(t, 1.0, c.cells[0].brightness, 0)
}

package render

import (
	"context"

	"github.com/couchcryptid/ccal-led/internal/display"
	"github.com/couchcryptid/ccal-led/internal/domain"
)

// digitGlyphs holds the pixel indexes that draw each digit in the tens
// position of the 4×7 grid. The ones digit reuses the same sets shifted four
// pixels left.
var digitGlyphs = [10][]int{
	0: {4, 5, 6, 11, 13, 18, 20, 25, 26, 27},
	1: {6, 5, 12, 19, 26, 27, 25},
	2: {4, 5, 6, 11, 19, 25, 26, 27},
	3: {4, 5, 6, 12, 18, 26, 27},
	4: {6, 4, 11, 13, 18, 25, 12},
	5: {6, 13, 5, 4, 18, 25, 26, 27},
	6: {6, 13, 20, 27, 12, 26, 11, 18, 25},
	7: {6, 5, 4, 11, 19, 27},
	8: {4, 5, 6, 11, 13, 18, 20, 25, 26, 27, 19},
	9: {6, 5, 4, 11, 18, 25, 19, 20, 13},
}

const onesShift = 4

// numberPixels returns the pixel indexes for the last two decimal digits of
// n, which must be non-negative. Indexes below zero are dropped.
func numberPixels(n int) []int {
	n %= 100
	tens, ones := n/10, n%10

	out := make([]int, 0, len(digitGlyphs[tens])+len(digitGlyphs[ones]))
	out = append(out, digitGlyphs[tens]...)
	for _, i := range digitGlyphs[ones] {
		if i-onesShift >= 0 {
			out = append(out, i-onesShift)
		}
	}
	return out
}

// DrawNumber clears the strip and draws the last two digits of n, which must
// be non-negative, in color. The frame is flushed once.
func DrawNumber(ctx context.Context, surface *display.Surface, n int, color domain.Color, scale float64) error {
	return surface.Draw(ctx, func(c display.Canvas) {
		c.Fill(domain.Black, 0)
		for _, i := range numberPixels(n) {
			c.SetPixel(i, color, scale)
		}
	})
}

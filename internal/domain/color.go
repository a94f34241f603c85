package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB triple with 0–255 channels.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// NewColor builds a Color, clamping each channel into 0–255.
func NewColor(r, g, b int) Color {
	return Color{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

// Scale returns the color with every channel multiplied by the clamped
// brightness and rounded to the nearest integer.
func (c Color) Scale(brightness float64) Color {
	b := ClampBrightness(brightness)
	return Color{
		R: scaleChannel(c.R, b),
		G: scaleChannel(c.G, b),
		B: scaleChannel(c.B, b),
	}
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Uint32 packs the color as 0x00RRGGBB.
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// ClampBrightness limits b to [0, 1]. NaN is treated as 0.
func ClampBrightness(b float64) float64 {
	switch {
	case math.IsNaN(b), b < 0:
		return 0
	case b > 1:
		return 1
	default:
		return b
	}
}

// ParseColor accepts "#rrggbb", "#rgb", or "r,g,b".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		if len(s) != 7 && len(s) != 4 {
			return Color{}, fmt.Errorf("parse color %q: want #rrggbb or #rgb", s)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return Color{R: r, G: g, B: b}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("parse color %q: want #rrggbb or r,g,b", s)
	}
	var ch [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		if v < 0 || v > 255 {
			return Color{}, fmt.Errorf("parse color %q: channel %d out of range", s, v)
		}
		ch[i] = v
	}
	return NewColor(ch[0], ch[1], ch[2]), nil
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func scaleChannel(c uint8, b float64) uint8 {
	v := math.Round(float64(c) * b)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

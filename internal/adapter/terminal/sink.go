// Package terminal paints the strip into a terminal, for development
// without LED hardware.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

const (
	rows   = 4
	litCh  = "██"
	darkCh = "░░"
)

var colorDim = lipgloss.Color("#303030")

// Sink implements domain.PixelSink by drawing the frame as a rows × cols grid
// of colored blocks, repainting in place on every Show.
type Sink struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	dark     lipgloss.Style

	mu      sync.Mutex
	pending []domain.Color
	painted int // lines drawn by the previous Show
}

// New creates a terminal sink writing to w.
func New(w io.Writer) *Sink {
	r := lipgloss.NewRenderer(w)
	return &Sink{
		w:        w,
		renderer: r,
		dark:     r.NewStyle().Foreground(colorDim),
	}
}

// Write stages a copy of colors for the next Show.
func (s *Sink) Write(colors []domain.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending[:0], colors...)
	return nil
}

// Show draws the staged frame over the previous one.
func (s *Sink) Show() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	if s.painted > 0 {
		fmt.Fprintf(&b, "\x1b[%dA", s.painted)
	}
	grid := s.render(s.pending)
	b.WriteString(grid)

	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return fmt.Errorf("paint terminal: %w", err)
	}
	s.painted = strings.Count(grid, "\n")
	return nil
}

// Close leaves the last frame on screen.
func (s *Sink) Close() error {
	return nil
}

func (s *Sink) render(colors []domain.Color) string {
	cols := (len(colors) + rows - 1) / rows
	var b strings.Builder
	for r := 0; r < rows && cols > 0; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			switch {
			case i >= len(colors):
				b.WriteString("  ")
			case colors[i] == domain.Black:
				b.WriteString(s.dark.Render(darkCh))
			default:
				b.WriteString(s.renderer.NewStyle().Foreground(lipgloss.Color(hex(colors[i]))).Render(litCh))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func hex(c domain.Color) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

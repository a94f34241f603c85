// Package display owns the in-memory frame and hands it to the pixel sink.
package display

import (
	"context"
	"sync"

	"github.com/couchcryptid/ccal-led/internal/domain"
	"github.com/couchcryptid/ccal-led/internal/observability"
)

// Pixel is one frame slot: the requested color and brightness, and the
// scaled color that will be sent to the strip.
type Pixel struct {
	Color      domain.Color `json:"color"`
	Brightness float64      `json:"brightness"`
	Out        domain.Color `json:"out"`
}

// Frame is a fixed-length pixel buffer.
type Frame []Pixel

// Colors returns the scaled output colors.
func (f Frame) Colors() []domain.Color {
	out := make([]domain.Color, len(f))
	for i, p := range f {
		out[i] = p.Out
	}
	return out
}

// Canvas is the drawing surface renderers and clips write into.
type Canvas interface {
	Len() int
	SetPixel(i int, c domain.Color, brightness float64)
	Fill(c domain.Color, brightness float64)
}

// Surface wraps a PixelSink with a clamped frame buffer. All mutation goes
// through one mutex, so at most one renderer writes at a time and a flush
// always sees a complete frame.
type Surface struct {
	sink    domain.PixelSink
	metrics *observability.Metrics

	mu    sync.Mutex
	frame Frame
}

// NewSurface creates a surface of n pixels, all off. Metrics may be nil.
func NewSurface(sink domain.PixelSink, n int, metrics *observability.Metrics) *Surface {
	if n < 0 {
		n = 0
	}
	return &Surface{
		sink:    sink,
		metrics: metrics,
		frame:   make(Frame, n),
	}
}

// Len returns the pixel count N.
func (s *Surface) Len() int {
	return len(s.frame)
}

// SetPixel writes one pixel. Indexes outside [0, N) are ignored.
func (s *Surface) SetPixel(i int, c domain.Color, brightness float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(i, c, brightness)
}

// Fill writes every pixel with the same color and brightness.
func (s *Surface) Fill(c domain.Color, brightness float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.frame {
		s.setLocked(i, c, brightness)
	}
}

// Flush pushes the whole frame to the sink in one write followed by a show.
func (s *Surface) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// AllOff blanks the frame and flushes it.
func (s *Surface) AllOff(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.frame {
		s.setLocked(i, domain.Black, 0)
	}
	return s.flushLocked()
}

// Draw runs fn with exclusive access to the frame and flushes once after it
// returns. Use it to compose a frame from several writes atomically.
func (s *Surface) Draw(_ context.Context, fn func(c Canvas)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(lockedCanvas{s})
	return s.flushLocked()
}

// Snapshot returns a copy of the current frame.
func (s *Surface) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(Frame, len(s.frame))
	copy(out, s.frame)
	return out
}

func (s *Surface) setLocked(i int, c domain.Color, brightness float64) {
	if i < 0 || i >= len(s.frame) {
		return
	}
	b := domain.ClampBrightness(brightness)
	s.frame[i] = Pixel{Color: c, Brightness: b, Out: c.Scale(b)}
}

func (s *Surface) flushLocked() error {
	if err := s.sink.Write(s.frame.Colors()); err != nil {
		return &domain.HardwareWriteError{Op: "write", Err: err}
	}
	if err := s.sink.Show(); err != nil {
		return &domain.HardwareWriteError{Op: "show", Err: err}
	}
	if s.metrics != nil {
		s.metrics.FramesFlushed.Inc()
	}
	return nil
}

// lockedCanvas draws into a surface whose mutex is already held.
type lockedCanvas struct {
	s *Surface
}

func (c lockedCanvas) Len() int { return len(c.s.frame) }

func (c lockedCanvas) SetPixel(i int, col domain.Color, brightness float64) {
	c.s.setLocked(i, col, brightness)
}

func (c lockedCanvas) Fill(col domain.Color, brightness float64) {
	for i := range c.s.frame {
		c.s.setLocked(i, col, brightness)
	}
}

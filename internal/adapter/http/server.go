package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/ccal-led/internal/display"
	"github.com/couchcryptid/ccal-led/internal/domain"
)

// FrameSource exposes a copy of what the strip currently shows.
type FrameSource interface {
	Snapshot() display.Frame
}

// Server exposes health, readiness, metrics, and a read-only frame view.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /frame routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, frames FrameSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /frame", handleFrame(frames))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type framePixel struct {
	Index      int     `json:"index"`
	Color      string  `json:"color"`
	Brightness float64 `json:"brightness"`
	Out        string  `json:"out"`
}

type frameResponse struct {
	LEDs   int          `json:"leds"`
	Lit    int          `json:"lit"`
	Pixels []framePixel `json:"pixels"`
}

func handleFrame(frames FrameSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		frame := frames.Snapshot()
		resp := frameResponse{LEDs: len(frame), Pixels: make([]framePixel, len(frame))}
		for i, px := range frame {
			resp.Pixels[i] = framePixel{
				Index:      i,
				Color:      px.Color.Hex(),
				Brightness: px.Brightness,
				Out:        px.Out.Hex(),
			}
			if px.Out != domain.Black {
				resp.Lit++
			}
		}
		sharedobs.WriteJSON(w, http.StatusOK, resp)
	}
}

// Package opc drives a pixel strip through an Open Pixel Control server such
// as a Fadecandy board or the gl_server simulator.
package opc

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	opc "github.com/kellydunn/go-opc"

	"github.com/couchcryptid/ccal-led/internal/domain"
)

// maxPixels is the most pixels one set-pixel-colors message can carry.
const maxPixels = opc.MAX_MESSAGE_SIZE / 3

// Sink implements domain.PixelSink over an OPC TCP connection. Write stages a
// set-pixel-colors message; Show sends it. opc.Client cannot be closed, so
// the sink owns the TCP connection and uses the library for message encoding.
type Sink struct {
	conn    net.Conn
	channel uint8
	logger  *slog.Logger

	mu      sync.Mutex
	pending *opc.Message
}

// Dial connects to the OPC server at addr.
func Dial(addr string, channel uint8, logger *slog.Logger) (*Sink, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to opc server %s: %w", addr, err)
	}
	logger.Info("connected to opc server", "addr", addr, "channel", channel)
	return &Sink{conn: conn, channel: channel, logger: logger}, nil
}

// Write encodes colors as one OPC message for the configured channel.
func (s *Sink) Write(colors []domain.Color) error {
	if len(colors) > maxPixels {
		return fmt.Errorf("frame of %d pixels exceeds opc limit of %d", len(colors), maxPixels)
	}
	m := opc.NewMessage(s.channel)
	m.SetLength(uint16(len(colors) * 3))
	for i, c := range colors {
		m.SetPixelColor(i, c.R, c.G, c.B)
	}

	s.mu.Lock()
	s.pending = m
	s.mu.Unlock()
	return nil
}

// Show sends the last written frame.
func (s *Sink) Show() error {
	s.mu.Lock()
	m := s.pending
	s.mu.Unlock()
	if m == nil {
		return nil
	}
	if _, err := s.conn.Write(m.ByteArray()); err != nil {
		return fmt.Errorf("send opc message: %w", err)
	}
	return nil
}

// Close drops the server connection.
func (s *Sink) Close() error {
	return s.conn.Close()
}

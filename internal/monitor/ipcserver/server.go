// Package ipcserver accepts proxy connections on the monitor's unix
// socket and fans their decoded events into a single bounded channel for
// the UI task to drain.
package ipcserver

import (
	"errors"
	"log/slog"

	"github.com/mcptrace/mcptrace/pkg/ipc"
	"github.com/mcptrace/mcptrace/pkg/ipc/transport"
)

// EventQueueCapacity is the bounded in-process channel capacity between
// reader tasks and the UI task (spec §5: capacity 100, backpressure on
// full, never dropped).
const EventQueueCapacity = 100

// Server accepts proxy connections and forwards their events onto a
// single fan-in channel.
type Server struct {
	listener *transport.Listener
	events   chan ipc.Event
	logger   *slog.Logger
}

// Bind creates the socket at path and returns a Server ready to Accept.
func Bind(path string, logger *slog.Logger) (*Server, error) {
	ln, err := transport.Bind(path)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: ln,
		events:   make(chan ipc.Event, EventQueueCapacity),
		logger:   logger,
	}, nil
}

// Events returns the fan-in channel the UI task drains.
func (s *Server) Events() <-chan ipc.Event { return s.events }

// Serve accepts connections until the listener is closed, spawning one
// reader goroutine per connection. It returns the listener's terminal
// error (nil after a clean Close).
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				return nil
			}
			return err
		}
		s.logger.Info("proxy connected")
		go s.readLoop(conn)
	}
}

// Close stops accepting and removes the socket file.
func (s *Server) Close() error {
	return s.listener.Close()
}

// readLoop forwards one connection's envelopes onto the fan-in channel,
// in order, until the connection closes or a malformed line arrives — at
// which point only this connection is terminated (spec §7).
func (s *Server) readLoop(conn *transport.Conn) {
	defer conn.Close()
	for {
		env, err := conn.Receive()
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				return
			}
			s.logger.Error("malformed ipc envelope, closing connection", "error", err)
			return
		}
		if env == nil {
			s.logger.Info("proxy disconnected")
			return
		}
		s.events <- env.Message
	}
}

// Package bufferedclient implements the proxy's reconnecting IPC client: a
// background worker that owns the connection to the monitor, buffers
// events while disconnected, and reconnects with exponential backoff.
package bufferedclient

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcptrace/mcptrace/pkg/ipc"
	"github.com/mcptrace/mcptrace/pkg/ipc/transport"
)

const (
	queueCapacity       = 1000
	maxOverflow         = 10_000
	initialDelay        = 1 * time.Second
	maxDelay            = 30 * time.Second
	backoffFactor       = 2
	reconnectTickPeriod = 100 * time.Millisecond
)

// Client is the handle the stdio bridge holds. Send is non-blocking; the
// background worker started by Run owns the connection exclusively. The
// overflow buffer is guarded by mu because, same as the original's
// Arc<Mutex<VecDeque>>, both the caller's Send (on a full queue) and the
// worker's own flush loop touch it.
type Client struct {
	socketPath string
	logger     *slog.Logger

	queue chan ipc.Event

	mu       sync.Mutex
	overflow []ipc.Event

	done chan struct{}
}

// New creates a Client. Call Run in its own goroutine to start the worker.
func New(socketPath string, logger *slog.Logger) *Client {
	return &Client{
		socketPath: socketPath,
		logger:     logger,
		queue:      make(chan ipc.Event, queueCapacity),
		done:       make(chan struct{}),
	}
}

// Send hands event to the in-process bounded queue without blocking the
// caller. If the queue is full, the event is pushed directly into the
// overflow buffer, dropped only once the overflow is itself at capacity.
func (c *Client) Send(event ipc.Event) {
	select {
	case c.queue <- event:
		return
	default:
	}
	c.pushOverflow(event)
}

func (c *Client) pushOverflow(event ipc.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.overflow) >= maxOverflow {
		c.logger.Warn("overflow buffer full, dropping event")
		return
	}
	c.overflow = append(c.overflow, event)
}

func (c *Client) overflowLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.overflow)
}

// Run drives the reconnect/flush state machine until ctx is cancelled.
// It is meant to be launched once, in its own goroutine.
func (c *Client) Run(ctx context.Context) {
	defer close(c.done)

	var conn *transport.Conn
	delay := initialDelay
	var lastAttempt time.Time

	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	ticker := time.NewTicker(reconnectTickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event := <-c.queue:
			// Anything already waiting must stay ahead of this event to
			// preserve FIFO order, so only an idle, connected worker may
			// attempt a direct send.
			if conn == nil || c.overflowLen() > 0 {
				c.pushOverflow(event)
				continue
			}
			if err := conn.Send(ipc.NewEnvelope(event)); err != nil {
				c.logger.Debug("send failed, buffering and reconnecting", "err", err)
				conn.Close()
				conn = nil
				delay = initialDelay
				c.pushOverflow(event)
			}

		case <-ticker.C:
			if conn != nil || time.Since(lastAttempt) < delay {
				continue
			}
			lastAttempt = time.Now()

			newConn, err := transport.Dial(c.socketPath)
			if err != nil {
				delay = minDuration(delay*backoffFactor, maxDelay)
				c.logger.Debug("reconnect attempt failed", "err", err, "next_delay", delay)
				continue
			}

			c.logger.Info("reconnected to monitor", "socket", c.socketPath)
			conn = newConn
			delay = initialDelay

			for {
				c.mu.Lock()
				if len(c.overflow) == 0 {
					c.mu.Unlock()
					break
				}
				event := c.overflow[0]
				c.mu.Unlock()

				if sendErr := conn.Send(ipc.NewEnvelope(event)); sendErr != nil {
					c.logger.Debug("flush send failed, re-buffering", "err", sendErr)
					conn.Close()
					conn = nil
					delay = initialDelay
					break
				}

				c.mu.Lock()
				c.overflow = c.overflow[1:]
				c.mu.Unlock()
			}
		}
	}
}

// Wait blocks until Run has returned.
func (c *Client) Wait() {
	<-c.done
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

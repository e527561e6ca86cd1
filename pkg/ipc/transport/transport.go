// Package transport implements the newline-delimited JSON framing used by
// the proxy and the monitor to exchange ipc.Envelope values over a unix
// domain socket: one Envelope per line, no embedded newlines.
package transport

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/mcptrace/mcptrace/pkg/ipc"
)

const initialReadBufferSize = 256 * 1024

// ErrClosed is returned by Conn.Send/Receive once the connection has been
// closed locally.
var ErrClosed = errors.New("transport: connection closed")

// ProtocolError wraps a line that failed to decode as an ipc.Envelope.
// Receive returns it without closing the connection — a caller decides
// whether one malformed line should end the session.
type ProtocolError struct {
	Line string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("transport: malformed envelope: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Listener accepts unix socket connections at a fixed path, removing any
// stale socket file left behind by a prior, uncleanly-terminated process.
type Listener struct {
	path string
	ln   *net.UnixListener
}

// Bind removes a pre-existing socket file at path (ignoring a missing
// file) and starts listening on it.
func Bind(path string) (*Listener, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("transport: remove stale socket %s: %w", path, err)
	}

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %s: %w", path, err)
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen on %s: %w", path, err)
	}
	return &Listener{path: path, ln: ln}, nil
}

// Accept blocks until a client connects, returning a framed Conn. Once
// the Listener has been closed, Accept returns ErrClosed.
func (l *Listener) Accept() (*Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("transport: accept: %w", err)
	}
	return newConn(c), nil
}

// Close stops accepting connections and removes the socket file.
func (l *Listener) Close() error {
	err := l.ln.Close()
	if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) {
		err = errors.Join(err, rmErr)
	}
	return err
}

// Dial connects to a Listener bound at path.
func Dial(path string) (*Conn, error) {
	c, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", path, err)
	}
	return newConn(c), nil
}

// Conn is one framed, newline-delimited connection carrying ipc.Envelope
// values. Send and Receive may be called concurrently from different
// goroutines; concurrent Sends are serialized by an internal mutex.
type Conn struct {
	conn net.Conn
	mu   sync.Mutex

	reader *bufio.Reader
}

func newConn(c net.Conn) *Conn {
	return &Conn{conn: c, reader: bufio.NewReaderSize(c, initialReadBufferSize)}
}

// Send encodes the envelope as one line of JSON and writes it, flushing
// immediately. A write on a locally closed connection returns ErrClosed
// itself; any other error comes back wrapped so network errors can be
// matched with errors.As.
func (c *Conn) Send(env ipc.Envelope) error {
	line, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("transport: encode envelope: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.conn.Write(append(line, '\n')); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// Receive reads the next line and decodes it as an ipc.Envelope. Line
// length is not bounded — a single record may be arbitrarily large, per
// the framing contract this package implements. It returns (nil, nil) on
// an orderly close (EOF with no partial line, matching the original's
// Ok(None) sentinel) and a *ProtocolError if the line does not parse,
// without tearing down the connection.
func (c *Conn) Receive() (*ipc.Envelope, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if len(line) == 0 {
				return nil, nil // orderly close
			}
			// fall through: decode the trailing unterminated line
		} else if errors.Is(err, net.ErrClosed) {
			return nil, ErrClosed
		} else {
			return nil, fmt.Errorf("transport: read: %w", err)
		}
	} else {
		line = line[:len(line)-1] // drop trailing '\n'
	}

	var env ipc.Envelope
	if jsonErr := json.Unmarshal(line, &env); jsonErr != nil {
		return nil, &ProtocolError{Line: string(line), Err: jsonErr}
	}
	return &env, nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

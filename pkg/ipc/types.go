// Package ipc defines the wire types shared between the proxy and the
// monitor: proxy/log identifiers, log levels, stats snapshots, and the
// envelope that frames one event per line on the unix socket transport.
package ipc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProxyID is a 128-bit random identifier assigned once per proxy start.
// It is never reused and serializes on the wire as a UUID string.
type ProxyID uuid.UUID

// NewProxyID generates a fresh random ProxyID.
func NewProxyID() ProxyID {
	return ProxyID(uuid.New())
}

// String returns the canonical UUID text form.
func (id ProxyID) String() string {
	return uuid.UUID(id).String()
}

// MarshalJSON renders the ProxyID as a UUID string.
func (id ProxyID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id).String())
}

// UnmarshalJSON parses a UUID string into a ProxyID.
func (id *ProxyID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("ipc: invalid proxy id: %w", err)
	}
	*id = ProxyID(parsed)
	return nil
}

// LogID is a 128-bit random identifier assigned once per log entry.
type LogID uuid.UUID

// NewLogID generates a fresh random LogID.
func NewLogID() LogID {
	return LogID(uuid.New())
}

func (id LogID) String() string {
	return uuid.UUID(id).String()
}

func (id LogID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id).String())
}

func (id *LogID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("ipc: invalid log id: %w", err)
	}
	*id = LogID(parsed)
	return nil
}

// LogLevel is the closed set of severities a LogEntry can carry.
type LogLevel string

const (
	LevelDebug    LogLevel = "debug"
	LevelInfo     LogLevel = "info"
	LevelWarning  LogLevel = "warning"
	LevelError    LogLevel = "error"
	LevelRequest  LogLevel = "request"
	LevelResponse LogLevel = "response"
)

// Duration wraps time.Duration so it marshals to the wire's {secs,nanos}
// shape instead of Go's default integer-nanosecond encoding.
type Duration time.Duration

// MarshalJSON renders the duration as {"secs": N, "nanos": N}.
func (d Duration) MarshalJSON() ([]byte, error) {
	td := time.Duration(d)
	return json.Marshal(struct {
		Secs  int64 `json:"secs"`
		Nanos int32 `json:"nanos"`
	}{
		Secs:  int64(td / time.Second),
		Nanos: int32(td % time.Second),
	})
}

// UnmarshalJSON parses the {"secs": N, "nanos": N} wire shape.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var wire struct {
		Secs  int64 `json:"secs"`
		Nanos int32 `json:"nanos"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*d = Duration(time.Duration(wire.Secs)*time.Second + time.Duration(wire.Nanos))
	return nil
}

// LogEntry is one immutable observation emitted by a proxy.
type LogEntry struct {
	ID        LogID           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     LogLevel        `json:"level"`
	Message   string          `json:"message"`
	ProxyID   ProxyID         `json:"proxy_id"`
	RequestID string          `json:"request_id,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// NewLogEntry builds a LogEntry with a fresh id and the current time.
func NewLogEntry(level LogLevel, message string, proxyID ProxyID) LogEntry {
	return LogEntry{
		ID:        NewLogID(),
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		ProxyID:   proxyID,
	}
}

// WithRequestID returns a copy of the entry carrying the given request id.
func (e LogEntry) WithRequestID(requestID string) LogEntry {
	e.RequestID = requestID
	return e
}

// WithMetadata returns a copy of the entry carrying the given raw metadata.
func (e LogEntry) WithMetadata(metadata json.RawMessage) LogEntry {
	e.Metadata = metadata
	return e
}

// ProxyStats is a wholesale-replaced snapshot of one proxy's counters.
// Counters are monotonic non-decreasing for the lifetime of the proxy.
type ProxyStats struct {
	ProxyID            ProxyID  `json:"proxy_id"`
	TotalRequests      uint64   `json:"total_requests"`
	SuccessfulRequests uint64   `json:"successful_requests"`
	FailedRequests     uint64   `json:"failed_requests"`
	ActiveConnections  uint32   `json:"active_connections"`
	Uptime             Duration `json:"uptime"`
	BytesTransferred   uint64   `json:"bytes_transferred"`
}

// ProxyStatus is the lifecycle state of a proxy as seen by the monitor.
type ProxyStatus struct {
	Kind    ProxyStatusKind `json:"kind"`
	Message string          `json:"message,omitempty"` // only set for StatusError
}

type ProxyStatusKind string

const (
	StatusStarting ProxyStatusKind = "starting"
	StatusRunning  ProxyStatusKind = "running"
	StatusStopped  ProxyStatusKind = "stopped"
	StatusError    ProxyStatusKind = "error"
)

// ProxyInfo describes a connected proxy and its last-known stats.
type ProxyInfo struct {
	ID             ProxyID     `json:"id"`
	Name           string      `json:"name"`
	ListenAddress  string      `json:"listen_address"`
	TargetCommand  []string    `json:"target_command"`
	Status         ProxyStatus `json:"status"`
	Stats          ProxyStats  `json:"stats"`
}

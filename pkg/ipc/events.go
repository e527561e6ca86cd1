package ipc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind tags which variant an Event carries. The wire encoding is
// externally tagged — an object with exactly one of these keys — so
// decoding is a plain type switch rather than virtual dispatch, matching
// the teacher's jsonrpc.Message decode-then-switch idiom.
type EventKind string

const (
	KindProxyStarted EventKind = "ProxyStarted"
	KindProxyStopped EventKind = "ProxyStopped"
	KindLogEntry     EventKind = "LogEntry"
	KindStatsUpdate  EventKind = "StatsUpdate"
	KindPing         EventKind = "Ping"
	KindPong         EventKind = "Pong"
	KindError        EventKind = "Error"
)

// ErrorPayload is the payload of the Error event variant.
type ErrorPayload struct {
	Message string   `json:"message"`
	ProxyID *ProxyID `json:"proxy_id"`
}

// Event is one IPC message. Exactly one of the payload fields is set,
// selected by Kind. Only the proxy -> monitor variants the spec names
// (ProxyStarted, ProxyStopped, LogEntry, StatsUpdate) carry meaningful
// payloads in this implementation; Ping/Pong/Error round-trip for the
// wire contract but the core does not originate them.
type Event struct {
	Kind EventKind

	ProxyStarted *ProxyInfo
	ProxyStopped *ProxyID
	LogEntry     *LogEntry
	StatsUpdate  *ProxyStats
	Error        *ErrorPayload
}

// NewProxyStartedEvent wraps a ProxyInfo in a ProxyStarted event.
func NewProxyStartedEvent(info ProxyInfo) Event {
	return Event{Kind: KindProxyStarted, ProxyStarted: &info}
}

// NewProxyStoppedEvent wraps a ProxyID in a ProxyStopped event.
func NewProxyStoppedEvent(id ProxyID) Event {
	return Event{Kind: KindProxyStopped, ProxyStopped: &id}
}

// NewLogEntryEvent wraps a LogEntry in a LogEntry event.
func NewLogEntryEvent(entry LogEntry) Event {
	return Event{Kind: KindLogEntry, LogEntry: &entry}
}

// NewStatsUpdateEvent wraps a ProxyStats in a StatsUpdate event.
func NewStatsUpdateEvent(stats ProxyStats) Event {
	return Event{Kind: KindStatsUpdate, StatsUpdate: &stats}
}

// NewPingEvent returns an empty Ping event.
func NewPingEvent() Event { return Event{Kind: KindPing} }

// NewPongEvent returns an empty Pong event.
func NewPongEvent() Event { return Event{Kind: KindPong} }

// MarshalJSON renders the event as an externally-tagged single-key object.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindProxyStarted:
		return json.Marshal(map[string]*ProxyInfo{string(e.Kind): e.ProxyStarted})
	case KindProxyStopped:
		return json.Marshal(map[string]*ProxyID{string(e.Kind): e.ProxyStopped})
	case KindLogEntry:
		return json.Marshal(map[string]*LogEntry{string(e.Kind): e.LogEntry})
	case KindStatsUpdate:
		return json.Marshal(map[string]*ProxyStats{string(e.Kind): e.StatsUpdate})
	case KindPing, KindPong:
		return json.Marshal(map[string]struct{}{string(e.Kind): {}})
	case KindError:
		return json.Marshal(map[string]*ErrorPayload{string(e.Kind): e.Error})
	default:
		return nil, fmt.Errorf("ipc: unknown event kind %q", e.Kind)
	}
}

// UnmarshalJSON parses the externally-tagged single-key object back into
// an Event, dispatching on whichever key is present.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ipc: event is not an object: %w", err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("ipc: event object must have exactly one key, got %d", len(raw))
	}

	for key, payload := range raw {
		kind := EventKind(key)
		switch kind {
		case KindProxyStarted:
			var info ProxyInfo
			if err := json.Unmarshal(payload, &info); err != nil {
				return fmt.Errorf("ipc: decode ProxyStarted: %w", err)
			}
			*e = Event{Kind: kind, ProxyStarted: &info}
		case KindProxyStopped:
			var id ProxyID
			if err := json.Unmarshal(payload, &id); err != nil {
				return fmt.Errorf("ipc: decode ProxyStopped: %w", err)
			}
			*e = Event{Kind: kind, ProxyStopped: &id}
		case KindLogEntry:
			var entry LogEntry
			if err := json.Unmarshal(payload, &entry); err != nil {
				return fmt.Errorf("ipc: decode LogEntry: %w", err)
			}
			*e = Event{Kind: kind, LogEntry: &entry}
		case KindStatsUpdate:
			var stats ProxyStats
			if err := json.Unmarshal(payload, &stats); err != nil {
				return fmt.Errorf("ipc: decode StatsUpdate: %w", err)
			}
			*e = Event{Kind: kind, StatsUpdate: &stats}
		case KindPing, KindPong:
			*e = Event{Kind: kind}
		case KindError:
			var errPayload ErrorPayload
			if err := json.Unmarshal(payload, &errPayload); err != nil {
				return fmt.Errorf("ipc: decode Error: %w", err)
			}
			*e = Event{Kind: kind, Error: &errPayload}
		default:
			return fmt.Errorf("ipc: unknown event kind %q", kind)
		}
		return nil
	}
	return nil // unreachable: len(raw) == 1 guarantees the loop body ran
}

// Envelope is the framing object written one-per-line on the wire: an
// event plus an emission timestamp and an optional correlation id.
type Envelope struct {
	Message       Event      `json:"message"`
	Timestamp     time.Time  `json:"timestamp"`
	CorrelationID *uuid.UUID `json:"correlation_id"`
}

// NewEnvelope wraps an event with the current UTC time and a fresh
// correlation id, matching the original IpcConnection.send_message.
func NewEnvelope(event Event) Envelope {
	id := uuid.New()
	return Envelope{
		Message:       event,
		Timestamp:     time.Now().UTC(),
		CorrelationID: &id,
	}
}

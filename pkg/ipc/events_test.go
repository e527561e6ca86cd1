package ipc

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEventRoundTrip(t *testing.T) {
	proxyID := NewProxyID()

	cases := []struct {
		name  string
		event Event
	}{
		{"ProxyStarted", NewProxyStartedEvent(ProxyInfo{
			ID:            proxyID,
			Name:          "mcp-proxy-ab12cd",
			ListenAddress: "/tmp/mcptrace.sock",
			TargetCommand: []string{"npx", "some-server"},
			Status:        ProxyStatus{Kind: StatusRunning},
			Stats:         ProxyStats{ProxyID: proxyID},
		})},
		{"ProxyStopped", NewProxyStoppedEvent(proxyID)},
		{"LogEntry", NewLogEntryEvent(NewLogEntry(LevelRequest, "→ {\"id\":1}", proxyID).WithRequestID("1"))},
		{"StatsUpdate", NewStatsUpdateEvent(ProxyStats{
			ProxyID:            proxyID,
			TotalRequests:      42,
			SuccessfulRequests: 40,
			FailedRequests:     2,
			ActiveConnections:  1,
			Uptime:             Duration(90 * time.Second),
			BytesTransferred:   1024,
		})},
		{"Ping", NewPingEvent()},
		{"Pong", NewPongEvent()},
		{"Error", Event{Kind: KindError, Error: &ErrorPayload{Message: "boom", ProxyID: &proxyID}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var raw map[string]json.RawMessage
			if err := json.Unmarshal(data, &raw); err != nil {
				t.Fatalf("not an object: %v", err)
			}
			if len(raw) != 1 {
				t.Fatalf("want exactly one key, got %d: %s", len(raw), data)
			}
			if _, ok := raw[string(tc.event.Kind)]; !ok {
				t.Fatalf("missing tag key %q in %s", tc.event.Kind, data)
			}

			var got Event
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Kind != tc.event.Kind {
				t.Fatalf("kind mismatch: got %v want %v", got.Kind, tc.event.Kind)
			}

			roundTripped, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("re-marshal: %v", err)
			}
			if string(roundTripped) != string(data) {
				t.Fatalf("round trip mismatch:\n got  %s\n want %s", roundTripped, data)
			}
		})
	}
}

func TestEventUnmarshalRejectsMultiKey(t *testing.T) {
	var e Event
	err := json.Unmarshal([]byte(`{"Ping":{},"Pong":{}}`), &e)
	if err == nil {
		t.Fatal("expected error for multi-key event object")
	}
}

func TestEventUnmarshalRejectsUnknownKind(t *testing.T) {
	var e Event
	err := json.Unmarshal([]byte(`{"Frobnicate":{}}`), &e)
	if err == nil {
		t.Fatal("expected error for unknown event kind")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	proxyID := NewProxyID()
	env := NewEnvelope(NewLogEntryEvent(NewLogEntry(LevelInfo, "hello", proxyID)))

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "\n") {
		t.Fatal("envelope json must not contain embedded newlines")
	}

	var got Envelope
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Message.Kind != KindLogEntry {
		t.Fatalf("kind mismatch: %v", got.Message.Kind)
	}
	if got.CorrelationID == nil || *got.CorrelationID != *env.CorrelationID {
		t.Fatal("correlation id not preserved")
	}
	if !got.Timestamp.Equal(env.Timestamp) {
		t.Fatalf("timestamp mismatch: got %v want %v", got.Timestamp, env.Timestamp)
	}
}

// TestLogEntryLargePayload exercises testable property 1 (round trip for
// records up to and beyond 1MiB) at the event-encoding layer; the
// transport-layer large-record test covers the same size over the wire.
func TestLogEntryLargePayload(t *testing.T) {
	proxyID := NewProxyID()
	big := strings.Repeat("x", 2*1024*1024)
	entry := NewLogEntry(LevelResponse, big, proxyID)

	data, err := json.Marshal(NewLogEntryEvent(entry))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.LogEntry == nil || got.LogEntry.Message != big {
		t.Fatal("large message did not round trip intact")
	}
}

func TestLogEntrySpecialCharacters(t *testing.T) {
	proxyID := NewProxyID()
	tricky := "line1\nline2\ttab \"quoted\" \\backslash\\ 🦀 emoji"
	entry := NewLogEntry(LevelDebug, tricky, proxyID)

	data, err := json.Marshal(NewLogEntryEvent(entry))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Count(string(data), "\n") != 0 {
		t.Fatal("encoded JSON must escape embedded newlines, not emit them raw")
	}

	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.LogEntry.Message != tricky {
		t.Fatalf("message mismatch: got %q want %q", got.LogEntry.Message, tricky)
	}
}

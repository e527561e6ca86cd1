package ipc

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProxyIDMarshalsAsUUIDString(t *testing.T) {
	id := NewProxyID()
	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("expected a JSON string, got %s: %v", data, err)
	}
	if s != id.String() {
		t.Fatalf("got %q want %q", s, id.String())
	}

	var got ProxyID
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != id {
		t.Fatalf("round trip mismatch: got %v want %v", got, id)
	}
}

func TestProxyIDUnmarshalRejectsInvalid(t *testing.T) {
	var id ProxyID
	if err := json.Unmarshal([]byte(`"not-a-uuid"`), &id); err == nil {
		t.Fatal("expected error for malformed uuid")
	}
}

func TestDurationWireShape(t *testing.T) {
	d := Duration(90*time.Second + 500*time.Millisecond)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire struct {
		Secs  int64 `json:"secs"`
		Nanos int32 `json:"nanos"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wire.Secs != 90 || wire.Nanos != 500_000_000 {
		t.Fatalf("got secs=%d nanos=%d", wire.Secs, wire.Nanos)
	}

	var got Duration
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal into Duration: %v", err)
	}
	if time.Duration(got) != time.Duration(d) {
		t.Fatalf("round trip mismatch: got %v want %v", time.Duration(got), time.Duration(d))
	}
}

func TestLogEntryBuilders(t *testing.T) {
	proxyID := NewProxyID()
	entry := NewLogEntry(LevelError, "boom", proxyID).
		WithRequestID("42").
		WithMetadata(json.RawMessage(`{"k":"v"}`))

	if entry.RequestID != "42" {
		t.Fatalf("request id not set: %q", entry.RequestID)
	}
	if string(entry.Metadata) != `{"k":"v"}` {
		t.Fatalf("metadata not set: %s", entry.Metadata)
	}
	if entry.ProxyID != proxyID {
		t.Fatal("proxy id not carried through builders")
	}
}

func TestProxyInfoRoundTrip(t *testing.T) {
	info := ProxyInfo{
		ID:            NewProxyID(),
		Name:          "mcp-proxy-xy9z12",
		ListenAddress: "/tmp/mcptrace.sock",
		TargetCommand: []string{"node", "server.js"},
		Status:        ProxyStatus{Kind: StatusError, Message: "spawn failed"},
		Stats:         ProxyStats{ProxyID: NewProxyID(), Uptime: Duration(5 * time.Minute)},
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got ProxyInfo
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != info.Name || got.Status.Kind != StatusError || got.Status.Message != "spawn failed" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

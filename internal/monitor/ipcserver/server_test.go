package ipcserver

import (
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcptrace/mcptrace/pkg/ipc"
	"github.com/mcptrace/mcptrace/pkg/ipc/transport"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerForwardsEventsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.sock")

	srv, err := Bind(path, testLogger())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	defer srv.Close()

	go srv.Serve()

	conn, err := transport.Dial(path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	proxyID := ipc.NewProxyID()
	events := []ipc.Event{
		ipc.NewProxyStartedEvent(ipc.ProxyInfo{ID: proxyID, Name: "p"}),
		ipc.NewLogEntryEvent(ipc.NewLogEntry(ipc.LevelRequest, "→ hello", proxyID)),
		ipc.NewProxyStoppedEvent(proxyID),
	}
	for _, e := range events {
		if err := conn.Send(ipc.NewEnvelope(e)); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	for i, want := range events {
		select {
		case got := <-srv.Events():
			if got.Kind != want.Kind {
				t.Fatalf("event %d kind = %v, want %v", i, got.Kind, want.Kind)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestServerMalformedLineClosesOnlyThatConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malformed.sock")

	srv, err := Bind(path, testLogger())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	defer srv.Close()

	go srv.Serve()

	bad, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial bad: %v", err)
	}
	defer bad.Close()
	if _, err := bad.Write([]byte("not json\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	good, err := transport.Dial(path)
	if err != nil {
		t.Fatalf("dial good: %v", err)
	}
	defer good.Close()

	proxyID := ipc.NewProxyID()
	event := ipc.NewProxyStartedEvent(ipc.ProxyInfo{ID: proxyID, Name: "ok"})
	if err := good.Send(ipc.NewEnvelope(event)); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case got := <-srv.Events():
		if got.Kind != event.Kind {
			t.Fatalf("kind = %v, want %v", got.Kind, event.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("good connection's event never arrived")
	}
}

package state

import (
	"strings"
	"testing"

	"github.com/mcptrace/mcptrace/pkg/ipc"
)

func TestDetailContentStripsPrefixAndPrettyPrintsJSON(t *testing.T) {
	proxyID := ipc.NewProxyID()
	entry := newInfoEntry(proxyID, ipc.LevelRequest, `→ {"jsonrpc":"2.0","id":1,"method":"ping"}`)

	got := DetailContent(entry)
	if strings.HasPrefix(got, "→") {
		t.Fatalf("content still has direction prefix: %q", got)
	}
	if !strings.Contains(got, "\"method\": \"ping\"") {
		t.Fatalf("content not pretty-printed: %q", got)
	}
}

func TestDetailContentFallsBackOnNonJSON(t *testing.T) {
	proxyID := ipc.NewProxyID()
	entry := newInfoEntry(proxyID, ipc.LevelResponse, "← plain text response")

	got := DetailContent(entry)
	if got != "plain text response" {
		t.Fatalf("content = %q, want %q", got, "plain text response")
	}
}

func TestDetailContentIncludesMetadata(t *testing.T) {
	proxyID := ipc.NewProxyID()
	entry := ipc.NewLogEntry(ipc.LevelRequest, "→ call", proxyID)
	entry.Metadata = []byte(`{"method":"tools/list"}`)

	got := DetailContent(entry)
	if !strings.Contains(got, "\"method\": \"tools/list\"") {
		t.Fatalf("content missing metadata: %q", got)
	}
	if !strings.Contains(got, "call") {
		t.Fatalf("content missing message: %q", got)
	}
}

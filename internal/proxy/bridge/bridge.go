// Package bridge multiplexes a client's stdio onto a spawned MCP server's
// stdio, observing the JSON-RPC traffic that passes through without
// parsing, validating, or transforming it.
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"

	"github.com/mcptrace/mcptrace/internal/proxy/spawn"
	"github.com/mcptrace/mcptrace/internal/proxy/stats"
	"github.com/mcptrace/mcptrace/pkg/ipc"
)

const (
	initialReadBufferSize = 256 * 1024
	maxReadBufferSize     = 1024 * 1024
)

// Sink receives every event the bridge wants to report to the monitor:
// LogEntry for each observed line, StatsUpdate on the stats tick. It must
// not block for long — the bridge's multiplex loop stalls while Sink runs.
type Sink func(ipc.Event)

// Bridge multiplexes a single client<->child stdio session.
type Bridge struct {
	proxyID       ipc.ProxyID
	child         *spawn.Child
	tracker       *stats.Tracker
	sink          Sink
	logger        *slog.Logger
	statsInterval time.Duration
}

// New builds a Bridge for one proxy session.
func New(proxyID ipc.ProxyID, child *spawn.Child, tracker *stats.Tracker, sink Sink, logger *slog.Logger, statsInterval time.Duration) *Bridge {
	return &Bridge{
		proxyID:       proxyID,
		child:         child,
		tracker:       tracker,
		sink:          sink,
		logger:        logger,
		statsInterval: statsInterval,
	}
}

// Run drives the five-source multiplex: client stdin, child stdout, child
// stderr, the stats ticker, and shutdown, plus a sixth arm watching for
// the child exiting on its own. It returns once the child exits or ctx is
// cancelled, in which case the child is killed before Run returns.
// clientErr receives a verbatim copy of every child stderr line, keeping
// the proxy's own stderr pass-through transparent alongside the
// LogEntry(Error) reported through sink.
func (b *Bridge) Run(ctx context.Context, clientIn io.Reader, clientOut, clientErr io.Writer) error {
	stdinLines := scanLines(clientIn)
	stdoutLines := scanLines(b.child.Stdout())
	stderrLines := scanLines(b.child.Stderr())

	childDone := make(chan error, 1)
	go func() { childDone <- b.child.Wait() }()

	ticker := time.NewTicker(b.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = b.child.Close()
			<-childDone
			return ctx.Err()

		case <-ticker.C:
			b.sink(ipc.NewStatsUpdateEvent(b.tracker.Snapshot()))

		case line, ok := <-stdinLines:
			if !ok {
				stdinLines = nil
				if err := b.child.Stdin().Close(); err != nil {
					b.logger.Warn("close child stdin", "err", err)
				}
				continue
			}
			if _, err := fmt.Fprintln(b.child.Stdin(), line); err != nil {
				b.logger.Error("forward to child stdin", "err", err)
				b.tracker.RecordFailure(len(line))
				continue
			}
			b.tracker.RecordRequest(len(line))
			b.sink(ipc.NewLogEntryEvent(b.logEntry(ipc.LevelRequest, "→ "+line, line)))

		case line, ok := <-stdoutLines:
			if !ok {
				stdoutLines = nil
				continue
			}
			if _, err := fmt.Fprintln(clientOut, line); err != nil {
				b.logger.Error("forward to client stdout", "err", err)
				b.tracker.RecordFailure(len(line))
				continue
			}
			b.tracker.RecordSuccess(len(line))
			b.sink(ipc.NewLogEntryEvent(b.logEntry(ipc.LevelResponse, "← "+line, line)))

		case line, ok := <-stderrLines:
			if !ok {
				stderrLines = nil
				continue
			}
			if _, err := fmt.Fprintln(clientErr, line); err != nil {
				b.logger.Error("forward to client stderr", "err", err)
			}
			b.sink(ipc.NewLogEntryEvent(ipc.NewLogEntry(ipc.LevelError, "stderr: "+line, b.proxyID)))

		case err := <-childDone:
			b.sink(ipc.NewStatsUpdateEvent(b.tracker.Snapshot()))
			return err
		}
	}
}

// logEntry builds a LogEntry at the given level and opportunistically
// attaches the JSON-RPC request id found in raw, mirroring the teacher's
// best-effort, never-fatal Message.RawID() inspection: a line that fails
// to parse is still logged, just without a request id.
func (b *Bridge) logEntry(level ipc.LogLevel, message string, raw string) ipc.LogEntry {
	entry := ipc.NewLogEntry(level, message, b.proxyID)

	if id := rawID(raw); id != "" {
		entry = entry.WithRequestID(id)
	}
	if method := rawMethod(raw); method != "" {
		entry = entry.WithMetadata(json.RawMessage(`{"method":"` + method + `"}`))
	}
	return entry
}

// rawID extracts a JSON-RPC "id" field without validating the rest of the
// message, so malformed or non-JSON-RPC lines still pass through untouched.
func rawID(raw string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return ""
	}
	id, ok := fields["id"]
	if !ok {
		return ""
	}
	return string(id)
}

// rawMethod opportunistically decodes a line as a JSON-RPC request to
// surface its method name in the log. Decode failures are swallowed: the
// bridge never rejects or alters traffic based on this.
func rawMethod(raw string) string {
	msg, err := jsonrpc.DecodeMessage([]byte(raw))
	if err != nil {
		return ""
	}
	req, ok := msg.(*jsonrpc.Request)
	if !ok {
		return ""
	}
	return req.Method
}

// scanLines starts a goroutine reading newline-delimited lines from r and
// returns a channel that is closed when r reaches EOF or errors.
func scanLines(r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		buf := make([]byte, 0, initialReadBufferSize)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(buf, maxReadBufferSize)
		for scanner.Scan() {
			out <- scanner.Text()
		}
	}()
	return out
}

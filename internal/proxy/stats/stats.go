// Package stats tracks the running counters a proxy reports to the
// monitor as ipc.ProxyStats snapshots.
package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcptrace/mcptrace/pkg/ipc"
)

// Tracker accumulates one proxy's counters. The scalar counters are
// lock-free atomics; activeConnections and bytesTransferred follow the
// same pattern. Snapshot takes a brief lock only to read the start time
// consistently alongside the atomics.
type Tracker struct {
	proxyID ipc.ProxyID
	start   time.Time

	totalRequests      atomic.Uint64
	successfulRequests atomic.Uint64
	failedRequests     atomic.Uint64
	activeConnections  atomic.Int64
	bytesTransferred   atomic.Uint64

	mu sync.Mutex
}

// New creates a Tracker for the given proxy, starting its uptime clock now.
func New(proxyID ipc.ProxyID) *Tracker {
	return &Tracker{proxyID: proxyID, start: time.Now()}
}

// RecordRequest counts one request observed on the stdin->child direction.
func (t *Tracker) RecordRequest(bytes int) {
	t.totalRequests.Add(1)
	t.bytesTransferred.Add(uint64(bytes))
}

// RecordSuccess counts one successful response observed on the
// child->stdout direction.
func (t *Tracker) RecordSuccess(bytes int) {
	t.successfulRequests.Add(1)
	t.bytesTransferred.Add(uint64(bytes))
}

// RecordFailure counts one failed response, or a line the bridge could
// not forward.
func (t *Tracker) RecordFailure(bytes int) {
	t.failedRequests.Add(1)
	t.bytesTransferred.Add(uint64(bytes))
}

// ConnectionOpened increments the active-connection gauge.
func (t *Tracker) ConnectionOpened() {
	t.activeConnections.Add(1)
}

// ConnectionClosed decrements the active-connection gauge.
func (t *Tracker) ConnectionClosed() {
	t.activeConnections.Add(-1)
}

// Snapshot returns a wholesale copy of the current counters as a
// ProxyStats ready to wrap in a StatsUpdate event.
func (t *Tracker) Snapshot() ipc.ProxyStats {
	t.mu.Lock()
	uptime := time.Since(t.start)
	t.mu.Unlock()

	return ipc.ProxyStats{
		ProxyID:            t.proxyID,
		TotalRequests:      t.totalRequests.Load(),
		SuccessfulRequests: t.successfulRequests.Load(),
		FailedRequests:     t.failedRequests.Load(),
		ActiveConnections:  uint32(t.activeConnections.Load()),
		Uptime:             ipc.Duration(uptime),
		BytesTransferred:   t.bytesTransferred.Load(),
	}
}

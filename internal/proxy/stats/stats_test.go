package stats

import (
	"sync"
	"testing"

	"github.com/mcptrace/mcptrace/pkg/ipc"
)

func TestTrackerRecordAndSnapshot(t *testing.T) {
	tr := New(ipc.NewProxyID())

	tr.RecordRequest(10)
	tr.RecordRequest(10)
	tr.RecordSuccess(20)
	tr.RecordFailure(5)
	tr.ConnectionOpened()
	tr.ConnectionOpened()
	tr.ConnectionClosed()

	snap := tr.Snapshot()
	if snap.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", snap.TotalRequests)
	}
	if snap.SuccessfulRequests != 1 {
		t.Errorf("SuccessfulRequests = %d, want 1", snap.SuccessfulRequests)
	}
	if snap.FailedRequests != 1 {
		t.Errorf("FailedRequests = %d, want 1", snap.FailedRequests)
	}
	if snap.ActiveConnections != 1 {
		t.Errorf("ActiveConnections = %d, want 1", snap.ActiveConnections)
	}
	if snap.BytesTransferred != 35 {
		t.Errorf("BytesTransferred = %d, want 35", snap.BytesTransferred)
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := New(ipc.NewProxyID())

	const goroutines = 50
	const opsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				tr.RecordRequest(1)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				tr.RecordSuccess(1)
			}
		}()
	}

	wg.Wait()

	snap := tr.Snapshot()
	want := uint64(goroutines * opsPerGoroutine)
	if snap.TotalRequests != want {
		t.Errorf("TotalRequests = %d, want %d", snap.TotalRequests, want)
	}
	if snap.SuccessfulRequests != want {
		t.Errorf("SuccessfulRequests = %d, want %d", snap.SuccessfulRequests, want)
	}
}

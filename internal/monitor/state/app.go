// Package state holds the monitor's single-threaded state machine: the
// known proxies, the rolling log sequence, and the per-tab view/selection
// state the render driver reads and the input driver mutates. No package
// in this tree performs I/O; App is pure data plus pure transitions.
package state

import (
	"sort"

	"github.com/mcptrace/mcptrace/pkg/ipc"
)

// MaxLogs is the hard cap on the retained log sequence (spec's MAX_LOGS).
const MaxLogs = 10_000

// App is the monitor's entire mutable state. It is owned exclusively by
// the UI task; nothing here is safe for concurrent use from multiple
// goroutines without an external lock.
type App struct {
	maxLogs int

	proxies map[ipc.ProxyID]ipc.ProxyInfo
	logs    []ipc.LogEntry

	tabs      map[TabType]*ListState
	activeTab TabType

	focus              FocusArea
	selectedProxyID    *ipc.ProxyID
	proxySelectedIndex int

	searchQuery   string
	searchCursor  int
	searchResults []int

	selectedLogIndex   *int
	detailOpen         bool
	detailScrollOffset uint16
	detailWordWrap     bool
}

// New creates an empty App with the default 10,000-entry log cap and
// Messages as the startup tab.
func New() *App {
	return NewWithCap(MaxLogs)
}

// NewWithCap creates an empty App with a custom log cap, primarily so
// tests can exercise eviction without pushing ten thousand entries.
func NewWithCap(maxLogs int) *App {
	a := &App{
		maxLogs:   maxLogs,
		proxies:   make(map[ipc.ProxyID]ipc.ProxyInfo),
		tabs:      make(map[TabType]*ListState, len(allTabs)),
		activeTab: TabMessages,
		focus:     FocusLogView,
	}
	for _, t := range allTabs {
		a.tabs[t] = &ListState{Mode: ModeFollow}
	}
	return a
}

// HandleProxyStarted inserts or replaces a ProxyInfo in the map.
func (a *App) HandleProxyStarted(info ipc.ProxyInfo) {
	a.proxies[info.ID] = info
}

// HandleProxyStopped removes a proxy, clearing the selected-proxy filter
// if it pointed at the removed id.
func (a *App) HandleProxyStopped(id ipc.ProxyID) {
	delete(a.proxies, id)
	if a.selectedProxyID != nil && *a.selectedProxyID == id {
		a.selectedProxyID = nil
	}
}

// HandleStatsUpdate replaces a known proxy's stats field. Unknown proxies
// are ignored.
func (a *App) HandleStatsUpdate(stats ipc.ProxyStats) {
	info, ok := a.proxies[stats.ProxyID]
	if !ok {
		return
	}
	info.Stats = stats
	a.proxies[stats.ProxyID] = info
}

// HandleNewLogEntry appends entry, evicting the oldest entries past the
// cap and shifting every saved per-tab index down by the evicted count.
// If the active tab is in Follow mode, its selection snaps to the new
// last element of its filtered view.
func (a *App) HandleNewLogEntry(entry ipc.LogEntry) {
	a.logs = append(a.logs, entry)

	if over := len(a.logs) - a.maxLogs; over > 0 {
		a.logs = a.logs[over:]
		for _, ts := range a.tabs {
			ts.SelectedIndex = saturatingSub(ts.SelectedIndex, over)
			ts.ViewportOffset = saturatingSub(ts.ViewportOffset, over)
		}
		if a.selectedLogIndex != nil {
			idx := saturatingSub(*a.selectedLogIndex, over)
			a.selectedLogIndex = &idx
		}
	}

	active := a.tabs[a.activeTab]
	if active.Mode == ModeFollow {
		filtered := a.FilteredLogIndices(a.activeTab)
		active.SelectedIndex = len(filtered) - 1
		if active.SelectedIndex < 0 {
			active.SelectedIndex = 0
		}
	}
}

// TotalStats sums per-proxy counters across every known proxy. Uptime is
// per-proxy and is not meaningfully aggregated, so it is left zero.
func (a *App) TotalStats() ipc.ProxyStats {
	var total ipc.ProxyStats
	for _, info := range a.proxies {
		total.TotalRequests += info.Stats.TotalRequests
		total.SuccessfulRequests += info.Stats.SuccessfulRequests
		total.FailedRequests += info.Stats.FailedRequests
		total.ActiveConnections += info.Stats.ActiveConnections
		total.BytesTransferred += info.Stats.BytesTransferred
	}
	return total
}

// Proxies returns the known proxies sorted alphabetically by name, the
// order the proxy-list panel and ProxyList-focus navigation use.
func (a *App) Proxies() []ipc.ProxyInfo {
	out := make([]ipc.ProxyInfo, 0, len(a.proxies))
	for _, info := range a.proxies {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ProxyName resolves an id to a display name, falling back to "unknown"
// for a proxy the log list still references after it was removed — the
// log sequence never stores a reference into the proxy map (spec §9).
func (a *App) ProxyName(id ipc.ProxyID) string {
	if info, ok := a.proxies[id]; ok {
		return info.Name
	}
	return "unknown"
}

// Logs returns the full retained log sequence, oldest first.
func (a *App) Logs() []ipc.LogEntry { return a.logs }

// ActiveTab returns the currently selected tab.
func (a *App) ActiveTab() TabType { return a.activeTab }

// Focus returns the currently focused panel.
func (a *App) Focus() FocusArea { return a.focus }

// SelectedProxy returns the id of the proxy the log view is filtered to,
// or nil if no proxy filter is active.
func (a *App) SelectedProxy() *ipc.ProxyID { return a.selectedProxyID }

// ListStateFor returns the saved ListState for a tab.
func (a *App) ListStateFor(t TabType) *ListState { return a.tabs[t] }

func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}

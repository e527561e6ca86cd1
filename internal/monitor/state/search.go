package state

import (
	"strings"

	"github.com/mcptrace/mcptrace/pkg/ipc"
)

// recomputeSearch re-runs the substring matcher against the query,
// intersected with the active tab's level filter and the current proxy
// filter (testable property 5). Matching is case-insensitive against the
// entry's message, its proxy's display name, and the level's string form.
func (a *App) recomputeSearch() {
	a.searchResults = nil

	query := strings.ToLower(a.searchQuery)
	if query == "" {
		return
	}

	tab := a.activeTab
	for i, entry := range a.logs {
		if a.selectedProxyID != nil && entry.ProxyID != *a.selectedProxyID {
			continue
		}
		if !tab.Admits(entry.Level) {
			continue
		}
		if matchesQuery(entry, a.ProxyName(entry.ProxyID), query) {
			a.searchResults = append(a.searchResults, i)
		}
	}

	ts := a.activeState()
	if ts.SelectedIndex >= len(a.searchResults) {
		ts.SelectedIndex = len(a.searchResults) - 1
	}
	if ts.SelectedIndex < 0 {
		ts.SelectedIndex = 0
	}
}

func matchesQuery(entry ipc.LogEntry, proxyName, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(entry.Message), lowerQuery) {
		return true
	}
	if strings.Contains(strings.ToLower(proxyName), lowerQuery) {
		return true
	}
	if strings.Contains(strings.ToLower(string(entry.Level)), lowerQuery) {
		return true
	}
	return false
}

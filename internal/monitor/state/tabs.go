package state

import "github.com/mcptrace/mcptrace/pkg/ipc"

// TabType is a named level-category filter over the log sequence.
type TabType int

const (
	TabAll TabType = iota
	TabMessages
	TabErrors
	TabSystem
)

// allTabs is the fixed cycle order used by Tab/Shift+Tab and 1..4.
var allTabs = []TabType{TabAll, TabMessages, TabErrors, TabSystem}

// String renders the tab's display name.
func (t TabType) String() string {
	switch t {
	case TabAll:
		return "All"
	case TabMessages:
		return "Messages"
	case TabErrors:
		return "Errors"
	case TabSystem:
		return "System"
	default:
		return "Unknown"
	}
}

// Levels returns the closed set of LogLevels a tab admits.
func (t TabType) Levels() []ipc.LogLevel {
	switch t {
	case TabMessages:
		return []ipc.LogLevel{ipc.LevelRequest, ipc.LevelResponse}
	case TabErrors:
		return []ipc.LogLevel{ipc.LevelError, ipc.LevelWarning}
	case TabSystem:
		return []ipc.LogLevel{ipc.LevelInfo, ipc.LevelDebug}
	default: // TabAll
		return []ipc.LogLevel{
			ipc.LevelDebug, ipc.LevelInfo, ipc.LevelWarning,
			ipc.LevelError, ipc.LevelRequest, ipc.LevelResponse,
		}
	}
}

// Admits reports whether level belongs to this tab's category.
func (t TabType) Admits(level ipc.LogLevel) bool {
	for _, l := range t.Levels() {
		if l == level {
			return true
		}
	}
	return false
}

// NavigationMode is the log view's interaction mode.
type NavigationMode int

const (
	ModeFollow NavigationMode = iota
	ModeNavigate
	ModeSearch
	ModeSearchResults
)

// FocusArea is which panel receives directional input.
type FocusArea int

const (
	FocusProxyList FocusArea = iota
	FocusLogView
)

// ListState is the saved cursor/viewport/mode for one tab.
type ListState struct {
	SelectedIndex  int
	ViewportOffset int
	Mode           NavigationMode
}

// FilteredLogIndices returns the indices into App.logs admitted by tab and
// the current proxy filter, in insertion order (testable property 4).
func (a *App) FilteredLogIndices(tab TabType) []int {
	var out []int
	for i, entry := range a.logs {
		if a.selectedProxyID != nil && entry.ProxyID != *a.selectedProxyID {
			continue
		}
		if !tab.Admits(entry.Level) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// TabLogCount returns len(FilteredLogIndices(tab)) without allocating the
// index slice, used by the status bar / tab bar counters.
func (a *App) TabLogCount(tab TabType) int {
	count := 0
	for _, entry := range a.logs {
		if a.selectedProxyID != nil && entry.ProxyID != *a.selectedProxyID {
			continue
		}
		if tab.Admits(entry.Level) {
			count++
		}
	}
	return count
}

// SwitchTab saves the outgoing tab's ListState (already saved in place,
// since navigation mutates it directly) and activates the incoming tab,
// clamping its selection to the incoming tab's current filtered length.
func (a *App) SwitchTab(tab TabType) {
	a.activeTab = tab
	a.clampActiveSelection()
}

// CycleTabNext moves to the next tab with wraparound.
func (a *App) CycleTabNext() {
	a.SwitchTab(allTabs[(indexOf(a.activeTab)+1)%len(allTabs)])
}

// CycleTabPrev moves to the previous tab with wraparound.
func (a *App) CycleTabPrev() {
	n := len(allTabs)
	a.SwitchTab(allTabs[(indexOf(a.activeTab)-1+n)%n])
}

func indexOf(t TabType) int {
	for i, candidate := range allTabs {
		if candidate == t {
			return i
		}
	}
	return 0
}

// clampActiveSelection bounds the active tab's selected_index to
// [0, filtered_len-1], the clamp spec §4.4 mandates on every tab switch.
func (a *App) clampActiveSelection() {
	ts := a.tabs[a.activeTab]
	filteredLen := a.currentFilteredLen()
	if filteredLen == 0 {
		ts.SelectedIndex = 0
		return
	}
	if ts.SelectedIndex >= filteredLen {
		ts.SelectedIndex = filteredLen - 1
	}
	if ts.SelectedIndex < 0 {
		ts.SelectedIndex = 0
	}
}

// currentFilteredLen returns the length of whichever view is active: the
// search-results view while searching, otherwise the tab+proxy filter.
func (a *App) currentFilteredLen() int {
	mode := a.tabs[a.activeTab].Mode
	if mode == ModeSearch || mode == ModeSearchResults {
		return len(a.searchResults)
	}
	return len(a.FilteredLogIndices(a.activeTab))
}

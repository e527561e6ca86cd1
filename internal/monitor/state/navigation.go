package state

import "github.com/mcptrace/mcptrace/pkg/ipc"

const pageSize = 10

// activeState is a shorthand for the ListState of the currently active tab.
func (a *App) activeState() *ListState {
	return a.tabs[a.activeTab]
}

// MoveDown moves the selection one entry forward, clamped to the current
// filtered length, leaving Follow for Navigate on the first move.
func (a *App) MoveDown() {
	a.moveBy(1)
}

// MoveUp moves the selection one entry back.
func (a *App) MoveUp() {
	a.moveBy(-1)
}

// PageDown moves the selection forward by pageSize entries.
func (a *App) PageDown() {
	a.moveBy(pageSize)
}

// PageUp moves the selection back by pageSize entries.
func (a *App) PageUp() {
	a.moveBy(-pageSize)
}

// Home moves the selection to the first entry.
func (a *App) Home() {
	a.setSelection(0)
}

// End moves the selection to the last entry.
func (a *App) End() {
	a.setSelection(a.currentFilteredLen() - 1)
}

func (a *App) moveBy(delta int) {
	ts := a.activeState()
	a.setSelection(ts.SelectedIndex + delta)
}

func (a *App) setSelection(index int) {
	ts := a.activeState()
	filteredLen := a.currentFilteredLen()

	if index < 0 {
		index = 0
	}
	if filteredLen == 0 {
		index = 0
	} else if index >= filteredLen {
		index = filteredLen - 1
	}
	ts.SelectedIndex = index

	if ts.Mode == ModeFollow {
		ts.Mode = ModeNavigate
	}
}

// EscapeNavigate returns from Navigate to Follow, snapping to the last
// element of the current filtered view.
func (a *App) EscapeNavigate() {
	ts := a.activeState()
	ts.Mode = ModeFollow
	last := a.currentFilteredLen() - 1
	if last < 0 {
		last = 0
	}
	ts.SelectedIndex = last
}

// EnterSearch switches the active tab into Search mode with an empty query.
func (a *App) EnterSearch() {
	ts := a.activeState()
	ts.Mode = ModeSearch
	a.searchQuery = ""
	a.searchCursor = 0
	a.searchResults = nil
}

// TypeSearchRune appends a rune to the query at the cursor and re-runs
// the matcher.
func (a *App) TypeSearchRune(r rune) {
	runes := []rune(a.searchQuery)
	runes = append(runes, 0)
	copy(runes[a.searchCursor+1:], runes[a.searchCursor:])
	runes[a.searchCursor] = r
	a.searchQuery = string(runes)
	a.searchCursor++
	a.recomputeSearch()
}

// SearchBackspace removes the rune before the cursor, if any.
func (a *App) SearchBackspace() {
	if a.searchCursor == 0 {
		return
	}
	runes := []rune(a.searchQuery)
	runes = append(runes[:a.searchCursor-1], runes[a.searchCursor:]...)
	a.searchQuery = string(runes)
	a.searchCursor--
	a.recomputeSearch()
}

// SubmitSearch transitions Search -> SearchResults, keeping the filtered
// view and selection.
func (a *App) SubmitSearch() {
	ts := a.activeState()
	if ts.Mode == ModeSearch {
		ts.Mode = ModeSearchResults
	}
}

// EscapeSearch clears the query and returns to Navigate from either
// Search or SearchResults.
func (a *App) EscapeSearch() {
	ts := a.activeState()
	ts.Mode = ModeNavigate
	a.searchQuery = ""
	a.searchCursor = 0
	a.searchResults = nil
	a.clampActiveSelection()
}

// SearchQuery returns the current query text.
func (a *App) SearchQuery() string { return a.searchQuery }

// SearchResults returns the current match indices (into App.logs).
func (a *App) SearchResults() []int { return a.searchResults }

// SetFocus switches which panel receives directional input.
func (a *App) SetFocus(f FocusArea) { a.focus = f }

// MoveProxyUp/MoveProxyDown move the ProxyList-focus cursor over the
// alphabetically-sorted proxy list.
func (a *App) MoveProxyDown() {
	a.moveProxySelection(1)
}

func (a *App) MoveProxyUp() {
	a.moveProxySelection(-1)
}

func (a *App) moveProxySelection(delta int) {
	n := len(a.proxies)
	if n == 0 {
		a.proxySelectedIndex = 0
		return
	}
	idx := a.proxySelectedIndex + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	a.proxySelectedIndex = idx
}

// SelectProxy sets the selected-proxy filter to the proxy under the
// ProxyList cursor and resets the active tab's log selection to Follow
// at the last visible entry.
func (a *App) SelectProxy() {
	proxies := a.Proxies()
	if a.proxySelectedIndex >= len(proxies) {
		return
	}
	id := proxies[a.proxySelectedIndex].ID
	a.selectedProxyID = &id

	ts := a.activeState()
	ts.Mode = ModeFollow
	last := len(a.FilteredLogIndices(a.activeTab)) - 1
	if last < 0 {
		last = 0
	}
	ts.SelectedIndex = last
}

// ClearProxyFilter clears the selected-proxy filter (Esc in ProxyList focus).
func (a *App) ClearProxyFilter() {
	a.selectedProxyID = nil
}

// AdjustViewport applies the viewport-follows-selection formula for a
// viewport of height h against the active tab's saved ListState.
func (a *App) AdjustViewport(h int) {
	ts := a.activeState()
	filteredLen := a.currentFilteredLen()

	if ts.SelectedIndex < ts.ViewportOffset {
		ts.ViewportOffset = ts.SelectedIndex
	} else if h > 0 && ts.SelectedIndex >= ts.ViewportOffset+h {
		ts.ViewportOffset = ts.SelectedIndex - (h - 1)
	}

	maxOffset := filteredLen - 1
	if maxOffset < 0 {
		maxOffset = 0
	}
	if ts.ViewportOffset > maxOffset {
		ts.ViewportOffset = maxOffset
	}
	if ts.ViewportOffset < 0 {
		ts.ViewportOffset = 0
	}
}

// OpenDetail selects the log entry under the cursor and, only if it is a
// Request or Response, opens the detail overlay.
func (a *App) OpenDetail() bool {
	idx, ok := a.selectedAbsoluteIndex()
	if !ok {
		return false
	}
	entry := a.logs[idx]
	if entry.Level != ipc.LevelRequest && entry.Level != ipc.LevelResponse {
		return false
	}
	a.selectedLogIndex = &idx
	a.detailOpen = true
	a.detailScrollOffset = 0
	return true
}

// CloseDetail closes the overlay and resets its scroll state.
func (a *App) CloseDetail() {
	a.detailOpen = false
	a.selectedLogIndex = nil
	a.detailScrollOffset = 0
}

// DetailOpen reports whether the overlay is showing.
func (a *App) DetailOpen() bool { return a.detailOpen }

// SelectedLogEntry returns the entry behind the open overlay, if any.
func (a *App) SelectedLogEntry() (ipc.LogEntry, bool) {
	if a.selectedLogIndex == nil {
		var zero ipc.LogEntry
		return zero, false
	}
	return a.logs[*a.selectedLogIndex], true
}

// DetailScrollOffset returns the overlay's current scroll offset.
func (a *App) DetailScrollOffset() uint16 { return a.detailScrollOffset }

// DetailScrollDown advances the overlay's scroll offset by one line,
// saturating at the uint16 maximum.
func (a *App) DetailScrollDown() {
	if a.detailScrollOffset < ^uint16(0) {
		a.detailScrollOffset++
	}
}

// DetailScrollUp retreats the overlay's scroll offset by one line,
// saturating at zero.
func (a *App) DetailScrollUp() {
	if a.detailScrollOffset > 0 {
		a.detailScrollOffset--
	}
}

// DetailScrollToEnd sets the scroll offset to a large sentinel; the
// render driver clamps it against the overlay's actual content height.
func (a *App) DetailScrollToEnd() {
	a.detailScrollOffset = ^uint16(0)
}

// ToggleWordWrap flips the overlay's word-wrap flag.
func (a *App) ToggleWordWrap() {
	a.detailWordWrap = !a.detailWordWrap
}

// WordWrap reports the overlay's current word-wrap flag.
func (a *App) WordWrap() bool { return a.detailWordWrap }

// selectedAbsoluteIndex resolves the active tab's SelectedIndex (an
// offset into the current filtered/search view) to an index into
// App.logs.
func (a *App) selectedAbsoluteIndex() (int, bool) {
	ts := a.activeState()
	var view []int
	if ts.Mode == ModeSearch || ts.Mode == ModeSearchResults {
		view = a.searchResults
	} else {
		view = a.FilteredLogIndices(a.activeTab)
	}
	if ts.SelectedIndex < 0 || ts.SelectedIndex >= len(view) {
		return 0, false
	}
	return view[ts.SelectedIndex], true
}

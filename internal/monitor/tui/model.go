// Package tui is the monitor's bubbletea input/render driver: a single
// tea.Model wrapping the pure state.App core, translating terminal key
// events and inbound IPC events into state-core method calls.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcptrace/mcptrace/internal/monitor/state"
	"github.com/mcptrace/mcptrace/pkg/ipc"
)

// tickMsg drives the 250ms poll/redraw cadence spec §4.5 describes.
type tickMsg time.Time

// eventMsg wraps one drained ipc.Event for tea.Program's message loop.
type eventMsg ipc.Event

// Model is the monitor's top-level tea.Model.
type Model struct {
	app       *state.App
	events    <-chan ipc.Event
	tickRate  time.Duration
	width     int
	height    int
	quitting  bool
	statusMsg string
}

// New builds a Model reading events from the ipcserver's fan-in channel.
func New(app *state.App, events <-chan ipc.Event, tickRate time.Duration) Model {
	return Model{app: app, events: events, tickRate: tickRate}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.drainCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tickRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// drainCmd performs one non-blocking receive from the fan-in channel, per
// spec §4.5's "draining the in-process event queue (non-blocking)".
func (m Model) drainCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case e, ok := <-m.events:
			if !ok {
				return nil
			}
			return eventMsg(e)
		default:
			return nil
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.tickCmd(), m.drainCmd())

	case eventMsg:
		m.applyEvent(ipc.Event(msg))
		return m, m.drainCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyEvent(e ipc.Event) {
	switch e.Kind {
	case ipc.KindProxyStarted:
		if e.ProxyStarted != nil {
			m.app.HandleProxyStarted(*e.ProxyStarted)
		}
	case ipc.KindProxyStopped:
		if e.ProxyStopped != nil {
			m.app.HandleProxyStopped(*e.ProxyStopped)
		}
	case ipc.KindLogEntry:
		if e.LogEntry != nil {
			m.app.HandleNewLogEntry(*e.LogEntry)
		}
	case ipc.KindStatsUpdate:
		if e.StatsUpdate != nil {
			m.app.HandleStatsUpdate(*e.StatsUpdate)
		}
	}
}

// handleKey dispatches one key event. Modal precedence per spec §4.5:
// the detail overlay, then search input, then the default key table.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.app.DetailOpen() {
		return m.handleDetailKey(msg)
	}

	mode := m.app.ListStateFor(m.app.ActiveTab()).Mode
	if mode == state.ModeSearch {
		return m.handleSearchKey(msg)
	}

	return m.handleDefaultKey(msg)
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.app.CloseDetail()
	case "up", "k":
		m.app.DetailScrollUp()
	case "down", "j":
		m.app.DetailScrollDown()
	case "end":
		m.app.DetailScrollToEnd()
	case "w":
		m.app.ToggleWordWrap()
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.app.EscapeSearch()
	case tea.KeyEnter:
		m.app.SubmitSearch()
	case tea.KeyBackspace:
		m.app.SearchBackspace()
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.app.TypeSearchRune(r)
		}
	}
	return m, nil
}

func (m Model) handleDefaultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.app.ListStateFor(m.app.ActiveTab()).Mode

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "c":
		// clear logs is a renderer/UI-local affordance; the state core
		// does not expose log deletion, so this is a no-op placeholder
		// until a ClearLogs operation is added to state.App.

	case "r":
		return m, m.drainCmd()

	case "tab":
		m.app.CycleTabNext()
	case "shift+tab":
		m.app.CycleTabPrev()
	case "1":
		m.app.SwitchTab(state.TabAll)
	case "2":
		m.app.SwitchTab(state.TabMessages)
	case "3":
		m.app.SwitchTab(state.TabErrors)
	case "4":
		m.app.SwitchTab(state.TabSystem)

	case "left":
		m.app.SetFocus(state.FocusProxyList)
	case "right":
		m.app.SetFocus(state.FocusLogView)

	case "up", "k":
		if m.app.Focus() == state.FocusProxyList {
			m.app.MoveProxyUp()
		} else if mode == state.ModeSearchResults {
			m.moveSearchResult(-1)
		} else {
			m.app.MoveUp()
		}
	case "down", "j":
		if m.app.Focus() == state.FocusProxyList {
			m.app.MoveProxyDown()
		} else if mode == state.ModeSearchResults {
			m.moveSearchResult(1)
		} else {
			m.app.MoveDown()
		}
	case "pgup":
		m.app.PageUp()
	case "pgdown":
		m.app.PageDown()
	case "home":
		m.app.Home()
	case "end":
		m.app.End()

	case "enter":
		if m.app.Focus() == state.FocusProxyList {
			m.app.SelectProxy()
		} else {
			m.app.OpenDetail()
		}
	case "esc":
		if m.app.Focus() == state.FocusProxyList {
			m.app.ClearProxyFilter()
		} else if mode == state.ModeNavigate {
			m.app.EscapeNavigate()
		} else if mode == state.ModeSearchResults {
			m.app.EscapeSearch()
		}
	case "/":
		if m.app.Focus() == state.FocusLogView {
			m.app.EnterSearch()
		}
	}
	return m, nil
}

// moveSearchResult is Navigate-equivalent scrolling while SearchResults is
// active: SelectedIndex still indexes into state.App.SearchResults().
func (m Model) moveSearchResult(delta int) {
	if delta < 0 {
		m.app.MoveUp()
	} else {
		m.app.MoveDown()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return render(m)
}

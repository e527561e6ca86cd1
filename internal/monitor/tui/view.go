package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcptrace/mcptrace/internal/monitor/state"
	"github.com/mcptrace/mcptrace/pkg/ipc"
)

var (
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	titleStyle  = lipgloss.NewStyle().Bold(true)

	tabActiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15")).Bold(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	levelColors = map[ipc.LogLevel]lipgloss.Color{
		ipc.LevelError:    lipgloss.Color("1"),
		ipc.LevelWarning:  lipgloss.Color("3"),
		ipc.LevelInfo:     lipgloss.Color("4"),
		ipc.LevelDebug:    lipgloss.Color("8"),
		ipc.LevelRequest:  lipgloss.Color("2"),
		ipc.LevelResponse: lipgloss.Color("6"),
	}
	levelSymbols = map[ipc.LogLevel]string{
		ipc.LevelError:    "x",
		ipc.LevelWarning:  "!",
		ipc.LevelInfo:     "i",
		ipc.LevelDebug:    "d",
		ipc.LevelRequest:  ">",
		ipc.LevelResponse: "<",
	}
	statusSymbols = map[ipc.ProxyStatusKind]string{
		ipc.StatusRunning:  "[up]",
		ipc.StatusStarting: "[..]",
		ipc.StatusStopped:  "[--]",
		ipc.StatusError:    "[!!]",
	}
)

const statsPanelHeight = 8

// render lays out the left proxy/stats panel and the right tabs/logs/help
// panel, matching the original monitor's two-column ratatui layout.
func render(m Model) string {
	if m.width == 0 || m.height == 0 {
		return "starting…"
	}

	leftWidth := 30
	rightWidth := m.width - leftWidth
	if rightWidth < 10 {
		rightWidth = 10
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		renderProxyList(m, leftWidth, m.height-statsPanelHeight),
		renderStats(m, leftWidth, statsPanelHeight),
	)

	logsHeight := m.height - 6
	if logsHeight < 1 {
		logsHeight = 1
	}
	right := lipgloss.JoinVertical(lipgloss.Left,
		renderTabs(m, rightWidth),
		renderLogs(m, rightWidth, logsHeight),
		renderHelp(m, rightWidth),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	if m.app.DetailOpen() {
		return renderDetailOverlay(m, m.width, m.height)
	}
	return body
}

func renderProxyList(m Model, width, height int) string {
	var b strings.Builder
	for i, p := range m.app.Proxies() {
		symbol := statusSymbols[p.Status.Kind]
		line := fmt.Sprintf("%s %s (%d)", symbol, p.Name, p.Stats.TotalRequests)
		if m.app.Focus() == state.FocusProxyList && i == selectedProxyIndex(m) {
			line = lipgloss.NewStyle().Reverse(true).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return borderStyle.Width(width).Height(height).Render(titleStyle.Render("MCP Proxies") + "\n" + b.String())
}

func selectedProxyIndex(m Model) int {
	proxies := m.app.Proxies()
	if m.app.SelectedProxy() == nil {
		return -1
	}
	for i, p := range proxies {
		if p.ID == *m.app.SelectedProxy() {
			return i
		}
	}
	return -1
}

func renderStats(m Model, width, height int) string {
	total := m.app.TotalStats()
	lines := []string{
		fmt.Sprintf("Proxies: %d", len(m.app.Proxies())),
		fmt.Sprintf("Total Requests: %d", total.TotalRequests),
		fmt.Sprintf("Successful: %d", total.SuccessfulRequests),
		fmt.Sprintf("Failed: %d", total.FailedRequests),
		fmt.Sprintf("Active Connections: %d", total.ActiveConnections),
		fmt.Sprintf("Bytes Transferred: %s", formatBytes(total.BytesTransferred)),
	}
	return borderStyle.Width(width).Height(height).Render(titleStyle.Render("Statistics") + "\n" + strings.Join(lines, "\n"))
}

func renderTabs(m Model, width int) string {
	tabs := []state.TabType{state.TabAll, state.TabMessages, state.TabErrors, state.TabSystem}
	var rendered []string
	for _, t := range tabs {
		text := fmt.Sprintf(" %s (%d) ", t.String(), m.app.TabLogCount(t))
		if t == m.app.ActiveTab() {
			rendered = append(rendered, tabActiveStyle.Render(text))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(text))
		}
	}
	return borderStyle.Width(width).Height(3).Render(titleStyle.Render("Filters") + " " + strings.Join(rendered, ""))
}

func renderLogs(m Model, width, height int) string {
	innerHeight := height - 2
	if innerHeight < 1 {
		innerHeight = 1
	}
	m.app.AdjustViewport(innerHeight)

	ts := m.app.ListStateFor(m.app.ActiveTab())
	view := visibleView(m)

	logs := m.app.Logs()
	start := ts.ViewportOffset
	end := start + innerHeight
	if end > len(view) {
		end = len(view)
	}
	if start > end {
		start = end
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		entry := logs[view[i]]
		line := formatLogLine(m, entry)
		if i == ts.SelectedIndex {
			line = lipgloss.NewStyle().Reverse(true).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	title := "Logs"
	if ts.Mode == state.ModeSearch || ts.Mode == state.ModeSearchResults {
		title = fmt.Sprintf("Search: %s_", m.app.SearchQuery())
	}
	return borderStyle.Width(width).Height(height).Render(titleStyle.Render(title) + "\n" + b.String())
}

func visibleView(m Model) []int {
	ts := m.app.ListStateFor(m.app.ActiveTab())
	if ts.Mode == state.ModeSearch || ts.Mode == state.ModeSearchResults {
		return m.app.SearchResults()
	}
	return m.app.FilteredLogIndices(m.app.ActiveTab())
}

func formatLogLine(m Model, entry ipc.LogEntry) string {
	color := levelColors[entry.Level]
	symbol := levelSymbols[entry.Level]
	ts := entry.Timestamp.Format("15:04:05.000")
	proxyName := m.app.ProxyName(entry.ProxyID)

	prefix := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(fmt.Sprintf("%s [%s] ", symbol, ts))
	proxy := lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Render(fmt.Sprintf("[%s] ", proxyName))
	message := lipgloss.NewStyle().Foreground(color).Render(entry.Message)
	return prefix + proxy + message
}

func renderHelp(m Model, width int) string {
	text := "q quit  tab/shift+tab tabs  1-4 tabs  ←/→ focus  ↑/↓ move  enter select  / search  esc back"
	return borderStyle.Width(width).Height(3).Render(text)
}

func renderDetailOverlay(m Model, width, height int) string {
	entry, ok := m.app.SelectedLogEntry()
	if !ok {
		return render(Model{app: m.app, width: m.width, height: m.height})
	}

	content := state.DetailContent(entry)
	if m.app.WordWrap() {
		content = lipgloss.NewStyle().Width(width - 6).Render(content)
	}

	vp := viewport.New(width-6, height-6)
	vp.SetContent(content)
	maxOffset := vp.TotalLineCount() - vp.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	offset := int(m.app.DetailScrollOffset())
	if offset > maxOffset {
		offset = maxOffset
	}
	vp.SetYOffset(offset)

	title := fmt.Sprintf("Detail — %s", entry.Level)
	return borderStyle.Width(width - 4).Height(height - 4).Render(titleStyle.Render(title) + "\n" + vp.View())
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	units := "KMGTPE"
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), units[exp])
}

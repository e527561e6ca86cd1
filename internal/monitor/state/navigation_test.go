package state

import (
	"testing"

	"github.com/mcptrace/mcptrace/pkg/ipc"
)

func TestMoveLeavesFollowForNavigate(t *testing.T) {
	a := New()
	a.SwitchTab(TabAll)
	proxyID := ipc.NewProxyID()
	for i := 0; i < 3; i++ {
		a.HandleNewLogEntry(newInfoEntry(proxyID, ipc.LevelInfo, "x"))
	}

	a.MoveUp()

	ts := a.ListStateFor(a.ActiveTab())
	if ts.Mode != ModeNavigate {
		t.Fatalf("mode = %v, want Navigate", ts.Mode)
	}
	if ts.SelectedIndex != 1 {
		t.Fatalf("selected_index = %d, want 1", ts.SelectedIndex)
	}
}

func TestEscapeNavigateReturnsToFollowAndSnaps(t *testing.T) {
	a := New()
	a.SwitchTab(TabAll)
	proxyID := ipc.NewProxyID()
	for i := 0; i < 5; i++ {
		a.HandleNewLogEntry(newInfoEntry(proxyID, ipc.LevelInfo, "x"))
	}

	a.Home()
	a.EscapeNavigate()

	ts := a.ListStateFor(a.ActiveTab())
	if ts.Mode != ModeFollow {
		t.Fatalf("mode = %v, want Follow", ts.Mode)
	}
	if ts.SelectedIndex != 4 {
		t.Fatalf("selected_index = %d, want 4", ts.SelectedIndex)
	}
}

func TestViewportFollowsSelection(t *testing.T) {
	a := New()
	a.SwitchTab(TabAll)
	proxyID := ipc.NewProxyID()
	for i := 0; i < 20; i++ {
		a.HandleNewLogEntry(newInfoEntry(proxyID, ipc.LevelInfo, "x"))
	}

	a.Home()
	a.AdjustViewport(5)
	if got := a.ListStateFor(a.ActiveTab()).ViewportOffset; got != 0 {
		t.Fatalf("viewport_offset = %d, want 0", got)
	}

	for i := 0; i < 10; i++ {
		a.MoveDown()
	}
	a.AdjustViewport(5)
	ts := a.ListStateFor(a.ActiveTab())
	if ts.SelectedIndex != 10 {
		t.Fatalf("selected_index = %d, want 10", ts.SelectedIndex)
	}
	if want := ts.SelectedIndex - 4; ts.ViewportOffset != want {
		t.Fatalf("viewport_offset = %d, want %d", ts.ViewportOffset, want)
	}
}

func TestSelectProxyResetsToFollowAtLastVisible(t *testing.T) {
	a := New()
	a.SwitchTab(TabAll)
	p1 := ipc.NewProxyID()
	a.HandleProxyStarted(ipc.ProxyInfo{ID: p1, Name: "alpha"})

	for i := 0; i < 3; i++ {
		a.HandleNewLogEntry(newInfoEntry(p1, ipc.LevelInfo, "x"))
	}
	a.Home() // leaves Follow

	a.SetFocus(FocusProxyList)
	a.SelectProxy()

	if a.SelectedProxy() == nil || *a.SelectedProxy() != p1 {
		t.Fatalf("selected_proxy = %v, want %v", a.SelectedProxy(), p1)
	}
	ts := a.ListStateFor(a.ActiveTab())
	if ts.Mode != ModeFollow {
		t.Fatalf("mode = %v, want Follow", ts.Mode)
	}
	if ts.SelectedIndex != 2 {
		t.Fatalf("selected_index = %d, want 2", ts.SelectedIndex)
	}
}

func TestOpenDetailOnlyForRequestResponse(t *testing.T) {
	a := New()
	a.SwitchTab(TabAll)
	proxyID := ipc.NewProxyID()
	a.HandleNewLogEntry(newInfoEntry(proxyID, ipc.LevelInfo, "info line"))

	a.Home()
	if a.OpenDetail() {
		t.Fatal("OpenDetail should refuse an Info entry")
	}

	a.HandleNewLogEntry(newInfoEntry(proxyID, ipc.LevelRequest, "→ call"))
	a.End()
	if !a.OpenDetail() {
		t.Fatal("OpenDetail should accept a Request entry")
	}
	if !a.DetailOpen() {
		t.Fatal("DetailOpen() = false after successful OpenDetail")
	}

	a.CloseDetail()
	if a.DetailOpen() {
		t.Fatal("DetailOpen() = true after CloseDetail")
	}
	if a.DetailScrollOffset() != 0 {
		t.Fatalf("scroll offset = %d, want 0 after close", a.DetailScrollOffset())
	}
}

func TestDetailScrollSaturates(t *testing.T) {
	a := New()
	a.DetailScrollUp() // no-op at zero
	if a.DetailScrollOffset() != 0 {
		t.Fatalf("scroll offset = %d, want 0", a.DetailScrollOffset())
	}
	a.DetailScrollToEnd()
	if a.DetailScrollOffset() != ^uint16(0) {
		t.Fatalf("scroll offset = %d, want max uint16", a.DetailScrollOffset())
	}
	a.DetailScrollDown() // saturates, does not wrap
	if a.DetailScrollOffset() != ^uint16(0) {
		t.Fatalf("scroll offset = %d, want max uint16 after saturating increment", a.DetailScrollOffset())
	}
}

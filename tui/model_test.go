package tui

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/account/orders"
	"github.com/zappabad/papertrade/internal/chart"
	"github.com/zappabad/papertrade/internal/market"
	"github.com/zappabad/papertrade/internal/session"
	"github.com/zappabad/papertrade/tui/panels"
)

func newTestModel(t *testing.T) (*Model, *session.Session) {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.ResetDelay = time.Millisecond
	sess := session.New(cfg, nil, session.WithRand(rand.New(rand.NewPCG(3, 4))))
	t.Cleanup(sess.Close)

	m := NewModel(sess)
	m.Update(tea.WindowSizeMsg{Width: 180, Height: 50})
	return m, sess
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelStartsOnSelected(t *testing.T) {
	m, sess := newTestModel(t)
	snap := sess.Snapshot()
	if got := m.chartPanel.Symbol(); got != snap.Selected {
		t.Errorf("chart symbol = %q, want %q", got, snap.Selected)
	}
	if got := m.orderInputPanel.Symbol(); got != snap.Selected {
		t.Errorf("order symbol = %q, want %q", got, snap.Selected)
	}
	if !strings.Contains(m.View(), "Portfolio") {
		t.Errorf("view missing portfolio panel")
	}
}

func TestRangeKeysIgnoredWhileTyping(t *testing.T) {
	m, sess := newTestModel(t)

	m.Update(runes("1"))
	if got := sess.Snapshot().Range; got != market.DefaultRange {
		t.Fatalf("range changed while the order form had focus: %s", got)
	}

	m.focusedPanel = FocusChart
	m.Update(runes("1"))
	if got := sess.Snapshot().Range; got != market.Range1D {
		t.Errorf("range = %s, want 1D", got)
	}
	if got := m.chartPanel.Viewport(); got != chart.NewViewport(60) {
		t.Errorf("viewport after range change = %+v", got)
	}
}

func TestResetNeedsTwoPresses(t *testing.T) {
	m, sess := newTestModel(t)
	clock := time.Unix(1700000000, 0)
	m.now = func() time.Time { return clock }
	m.focusedPanel = FocusMarket

	if _, err := sess.PlaceOrder(t.Context(), orders.Request{Symbol: "AAPL", Side: account.SideBuy, Shares: 1}); err != nil {
		t.Fatalf("buy: %v", err)
	}

	if _, cmd := m.Update(runes("r")); cmd != nil {
		if _, ok := cmd().(resetDoneMsg); ok {
			t.Fatal("first press reset the session")
		}
	}
	if m.resetArmedAt.IsZero() {
		t.Fatal("first press did not arm the reset")
	}

	// an expired confirmation re-arms instead of firing
	clock = clock.Add(ResetConfirmWindow + time.Second)
	m.Update(runes("r"))
	if !m.resetArmedAt.Equal(clock) {
		t.Fatal("expired confirmation was not re-armed")
	}

	clock = clock.Add(time.Second)
	cmd := m.requestReset()
	if cmd == nil {
		t.Fatal("second press within the window did not reset")
	}
	msg, ok := cmd().(resetDoneMsg)
	if !ok {
		t.Fatalf("unexpected message %#v", msg)
	}
	m.Update(msg)

	if got := len(sess.Snapshot().Account.Positions); got != 0 {
		t.Errorf("positions after reset = %d", got)
	}
	if len(m.snap.Account.Ledger) != 0 {
		t.Errorf("model still shows the old ledger")
	}
}

func TestSubmitOrderUpdatesStatus(t *testing.T) {
	m, sess := newTestModel(t)

	cmd := m.submitOrder(panels.OrderSubmitMsg{Request: orders.Request{Symbol: "AAPL", Side: account.SideBuy, Shares: 2}})
	msg := cmd().(orderResultMsg)
	if msg.err != nil {
		t.Fatalf("order failed: %v", msg.err)
	}
	m.Update(msg)
	if !strings.Contains(m.statusMsg, "BUY 2 AAPL") {
		t.Errorf("status = %q", m.statusMsg)
	}
	if m.snap.Account.XP != sess.Snapshot().Account.XP {
		t.Errorf("model snapshot not refreshed")
	}

	cmd = m.submitOrder(panels.OrderSubmitMsg{Request: orders.Request{Symbol: "AAPL", Side: account.SideSell, Shares: 99}})
	msg = cmd().(orderResultMsg)
	if msg.err == nil {
		t.Fatal("expected insufficient shares")
	}
	m.Update(msg)
	if !strings.Contains(m.statusMsg, "insufficient shares") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t)

	// q types into the order form
	if _, handled := m.handleGlobalKey(runes("q")); handled {
		t.Fatal("q handled while typing")
	}

	m.focusedPanel = FocusActivity
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

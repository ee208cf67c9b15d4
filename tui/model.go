package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/papertrade/internal/account/autoexit"
	"github.com/zappabad/papertrade/internal/market"
	"github.com/zappabad/papertrade/internal/session"
	"github.com/zappabad/papertrade/tui/panels"
	"github.com/zappabad/papertrade/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusMarket     PanelFocus = 0
	FocusPortfolio  PanelFocus = 1
	FocusChart      PanelFocus = 2
	FocusActivity   PanelFocus = 3
	FocusOrderInput PanelFocus = 4

	panelCount = 5
)

// ResetConfirmWindow is how long a first reset press stays armed.
const ResetConfirmWindow = 3 * time.Second

const (
	refreshInterval = 100 * time.Millisecond
	activityLimit   = 50
)

var rangeKeys = map[string]market.TimeRange{
	"1": market.Range1D,
	"2": market.Range1W,
	"3": market.Range1M,
	"4": market.Range3M,
	"5": market.RangeYTD,
	"6": market.RangeAll,
}

// Model is the main TUI application model.
type Model struct {
	sess *session.Session
	snap session.Snapshot

	// Panels
	marketPanel     *panels.MarketOverviewPanel
	portfolioPanel  *panels.PortfolioPanel
	activityPanel   *panels.ActivityPanel
	orderInputPanel *panels.OrderInputPanel
	chartPanel      *panels.CandlestickPanel

	focusedPanel PanelFocus

	// Window dimensions
	width  int
	height int

	// Status
	statusMsg    string
	resetArmedAt time.Time
	now          func() time.Time
	ready        bool
}

// NewModel creates a new TUI model.
func NewModel(sess *session.Session) *Model {
	snap := sess.Snapshot()

	symbols := make([]string, len(snap.Instruments))
	for i, inst := range snap.Instruments {
		symbols[i] = inst.Symbol
	}

	m := &Model{
		sess:            sess,
		snap:            snap,
		marketPanel:     panels.NewMarketOverviewPanel(snap.Instruments),
		portfolioPanel:  panels.NewPortfolioPanel(),
		activityPanel:   panels.NewActivityPanel(),
		orderInputPanel: panels.NewOrderInputPanel(symbols),
		chartPanel:      panels.NewCandlestickPanel(),
		focusedPanel:    FocusOrderInput,
		now:             time.Now,
	}
	m.orderInputPanel.SetSymbol(snap.Selected)
	m.apply(snap)
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.marketPanel.Init(),
		m.portfolioPanel.Init(),
		m.activityPanel.Init(),
		m.orderInputPanel.Init(),
		m.chartPanel.Init(),
		m.listenSessionEvents(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case sessionEventMsg:
		m.handleSessionEvent(msg.event)
		m.refresh()
		cmds = append(cmds, m.listenSessionEvents())

	case sessionDoneMsg:
		return m, tea.Quit

	case panels.InstrumentSelectedMsg:
		if err := m.sess.SelectInstrument(msg.Symbol); err != nil {
			m.statusMsg = "❌ " + err.Error()
		}
		m.orderInputPanel.SetSymbol(msg.Symbol)
		m.refresh()

	case panels.OrderSubmitMsg:
		cmds = append(cmds, m.submitOrder(msg))

	case orderResultMsg:
		m.statusMsg = msg.message
		if msg.err != nil {
			m.orderInputPanel.SetError(msg.err.Error())
		} else {
			m.orderInputPanel.Reset()
		}
		m.refresh()

	case resetDoneMsg:
		m.statusMsg = msg.message
		m.refresh()

	case tickMsg:
		if !m.resetArmedAt.IsZero() && m.now().Sub(m.resetArmedAt) > ResetConfirmWindow {
			m.resetArmedAt = time.Time{}
			m.statusMsg = ""
		}
		m.refresh()
		cmds = append(cmds, m.tickRefresh())
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

// handleGlobalKey handles keys that act regardless of the focused panel. Plain
// letters and digits are left to the order form while it has focus.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := msg.String()
	typing := m.focusedPanel == FocusOrderInput

	switch k {
	case "ctrl+c":
		return tea.Quit, true
	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return nil, true
	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return nil, true
	case "f1":
		m.focusedPanel = FocusMarket
		return nil, true
	case "f2":
		m.focusedPanel = FocusPortfolio
		return nil, true
	case "f3":
		m.focusedPanel = FocusActivity
		return nil, true
	case "f4":
		m.focusedPanel = FocusOrderInput
		return nil, true
	case "f5":
		m.focusedPanel = FocusChart
		return nil, true
	case "ctrl+r":
		return m.requestReset(), true
	}

	if typing {
		return nil, false
	}
	switch k {
	case "q":
		return tea.Quit, true
	case "r":
		return m.requestReset(), true
	}
	if r, ok := rangeKeys[k]; ok {
		if err := m.sess.SetTimeRange(r); err != nil {
			m.statusMsg = "❌ " + err.Error()
		}
		m.refresh()
		return nil, true
	}
	return nil, false
}

// requestReset arms the reset on the first press and fires it on a second
// press inside ResetConfirmWindow.
func (m *Model) requestReset() tea.Cmd {
	now := m.now()
	if m.snap.Resetting {
		return nil
	}
	if m.resetArmedAt.IsZero() || now.Sub(m.resetArmedAt) > ResetConfirmWindow {
		m.resetArmedAt = now
		m.statusMsg = "⚠ press reset again within 3s to wipe the account"
		return nil
	}
	m.resetArmedAt = time.Time{}
	m.statusMsg = "resetting..."
	return m.resetSession()
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusMarket:
		m.marketPanel, cmd = m.marketPanel.Update(msg)
	case FocusPortfolio:
		m.portfolioPanel, cmd = m.portfolioPanel.Update(msg)
	case FocusActivity:
		m.activityPanel, cmd = m.activityPanel.Update(msg)
	case FocusOrderInput:
		m.orderInputPanel, cmd = m.orderInputPanel.Update(msg)
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	m.marketPanel.SetFocus(m.focusedPanel == FocusMarket)
	m.portfolioPanel.SetFocus(m.focusedPanel == FocusPortfolio)
	m.activityPanel.SetFocus(m.focusedPanel == FocusActivity)
	m.orderInputPanel.SetFocus(m.focusedPanel == FocusOrderInput)
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)

	// Layout:
	// ┌─────────────────────────────────────────────┐
	// │  Market           │  Portfolio  │   Chart   │
	// │                   │             │           │
	// ├───────────────────┼─────────────┴───────────┤
	// │      Activity     │      Order Entry        │
	// └───────────────────┴─────────────────────────┘

	leftWidth := m.width / 3
	middleWidth := m.width / 3
	rightWidth := m.width - leftWidth - middleWidth

	topHeight := (m.height - 3) * 2 / 3
	bottomHeight := m.height - topHeight - 3

	m.marketPanel.SetSize(leftWidth, topHeight)
	m.portfolioPanel.SetSize(middleWidth, topHeight)
	m.chartPanel.SetSize(rightWidth, topHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.marketPanel.View(),
		m.portfolioPanel.View(),
		m.chartPanel.View(),
	)

	m.activityPanel.SetSize(leftWidth, bottomHeight)
	m.orderInputPanel.SetSize(m.width-leftWidth, bottomHeight)

	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.activityPanel.View(),
		m.orderInputPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	help := []string{
		styles.StatusBarKeyStyle.Render("Tab/F1-F5") + styles.StatusBarDescStyle.Render(" panels"),
		styles.StatusBarKeyStyle.Render("1-6") + styles.StatusBarDescStyle.Render(" range"),
		styles.StatusBarKeyStyle.Render("+/- ←/→") + styles.StatusBarDescStyle.Render(" zoom/pan"),
		styles.StatusBarKeyStyle.Render("r r") + styles.StatusBarDescStyle.Render(" reset"),
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"),
	}

	helpStr := lipgloss.JoinHorizontal(lipgloss.Center,
		help[0], " │ ", help[1], " │ ", help[2], " │ ", help[3], " │ ", help[4])

	status := ""
	switch {
	case m.snap.Resetting:
		status = " │ " + styles.StatusBarWarnStyle.Render("resetting...")
	case !m.resetArmedAt.IsZero():
		status = " │ " + styles.StatusBarWarnStyle.Render(m.statusMsg)
	case m.statusMsg != "":
		status = " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(helpStr + status)
}

// refresh pulls a fresh snapshot into every panel.
func (m *Model) refresh() {
	m.apply(m.sess.Snapshot())
}

func (m *Model) apply(snap session.Snapshot) {
	m.snap = snap

	prices := make(map[string]float64, len(snap.Instruments))
	for _, inst := range snap.Instruments {
		prices[inst.Symbol] = inst.Price
	}

	m.marketPanel.SetInstruments(snap.Instruments, snap.Selected)
	if inst, ok := snap.Instrument(snap.Selected); ok {
		m.chartPanel.SetInstrument(inst, snap.Range)
	}
	m.portfolioPanel.SetAccount(snap.Account, snap.Valuation, prices, snap.LevelXP, snap.LevelProgress)
	m.orderInputPanel.SetMarket(snap.Account, prices)
	m.activityPanel.SetNotices(m.sess.Activity(activityLimit))
}

func (m *Model) handleSessionEvent(ev session.Event) {
	switch ev := ev.(type) {
	case session.AutoExitEvent:
		label := "stop-loss"
		if ev.Exit.Reason == autoexit.ReasonTakeProfit {
			label = "take-profit"
		}
		m.statusMsg = fmt.Sprintf("⚡ %s: sold %d %s @ %s", label, ev.Exit.Shares, ev.Exit.Symbol, styles.FormatPrice(ev.Exit.Price))
	case session.ResetEvent:
		if !ev.Pending {
			m.statusMsg = "✓ account reset"
		}
	}
}

func (m *Model) submitOrder(order panels.OrderSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		res, err := m.sess.PlaceOrder(context.Background(), order.Request)
		if err != nil {
			return orderResultMsg{message: "❌ Order failed: " + err.Error(), err: err}
		}
		tx := res.Transaction
		msg := fmt.Sprintf("✓ %s %d %s @ %s (+%d xp)", tx.Side, tx.Shares, tx.Symbol, tx.Price.StringFixed(2), res.XPAwarded)
		if res.LevelUp {
			msg += " · level up!"
		}
		return orderResultMsg{message: msg}
	}
}

func (m *Model) resetSession() tea.Cmd {
	return func() tea.Msg {
		if err := m.sess.Reset(context.Background()); err != nil {
			if errors.Is(err, session.ErrResetInProgress) {
				return resetDoneMsg{message: "reset already running"}
			}
			return resetDoneMsg{message: "❌ reset failed: " + err.Error()}
		}
		return resetDoneMsg{message: "✓ account reset"}
	}
}

func (m *Model) listenSessionEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.sess.Events():
			return sessionEventMsg{event: ev}
		case <-m.sess.Done():
			return sessionDoneMsg{}
		}
	}
}

// tickMsg is sent periodically to refresh data.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

type sessionEventMsg struct {
	event session.Event
}

type sessionDoneMsg struct{}

// orderResultMsg is sent after an order is processed.
type orderResultMsg struct {
	message string
	err     error
}

type resetDoneMsg struct {
	message string
}

package panels

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/chart"
	"github.com/zappabad/papertrade/internal/market"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func bars(n int) []market.HistoryBar {
	out := make([]market.HistoryBar, n)
	for i := range out {
		p := 100 + float64(i)
		out[i] = market.HistoryBar{Label: "t", Open: p, High: p + 1, Low: p - 1, Close: p + 0.5}
	}
	return out
}

func TestMarketPanelSelectionEmitsMessage(t *testing.T) {
	p := NewMarketOverviewPanel([]market.Instrument{{Symbol: "AAA"}, {Symbol: "BBB"}})
	p.SetFocus(true)

	_, cmd := p.Update(keyMsg("down"))
	if cmd == nil {
		t.Fatal("expected a selection command")
	}
	msg, ok := cmd().(InstrumentSelectedMsg)
	if !ok || msg.Symbol != "BBB" {
		t.Fatalf("unexpected message %#v", cmd())
	}

	// already at the bottom
	if _, cmd := p.Update(keyMsg("down")); cmd != nil {
		t.Errorf("expected no command when the cursor does not move")
	}
}

func TestMarketPanelFollowsSelected(t *testing.T) {
	p := NewMarketOverviewPanel(nil)
	p.SetInstruments([]market.Instrument{{Symbol: "AAA"}, {Symbol: "BBB"}, {Symbol: "CCC"}}, "CCC")
	if got := p.SelectedSymbol(); got != "CCC" {
		t.Errorf("SelectedSymbol = %q, want CCC", got)
	}
}

func TestChartPanelViewport(t *testing.T) {
	p := NewCandlestickPanel()
	p.SetSize(120, 30)
	p.SetFocus(true)
	p.SetInstrument(market.Instrument{Symbol: "AAA", History: bars(100)}, market.Range1M)

	if got := p.Viewport(); got != chart.NewViewport(100) {
		t.Fatalf("initial viewport = %+v", got)
	}

	p.Update(keyMsg("+"))
	if got := p.Viewport().Count(); got >= chart.DefaultWindow {
		t.Errorf("zoom in kept %d bars", got)
	}
	zoomed := p.Viewport()

	p.Update(keyMsg("left"))
	if got := p.Viewport(); got.Count() != zoomed.Count() || got.Start >= zoomed.Start {
		t.Errorf("pan left: %+v from %+v", got, zoomed)
	}

	// same data keeps the user's window
	panned := p.Viewport()
	p.SetInstrument(market.Instrument{Symbol: "AAA", History: bars(100)}, market.Range1M)
	if p.Viewport() != panned {
		t.Errorf("viewport moved on a price tick")
	}

	// a new range resets it
	p.SetInstrument(market.Instrument{Symbol: "AAA", History: bars(60)}, market.Range1D)
	if got := p.Viewport(); got != chart.NewViewport(60) {
		t.Errorf("viewport after range change = %+v", got)
	}

	if out := p.View(); !strings.Contains(out, "AAA") {
		t.Errorf("view missing symbol")
	}
}

func TestChartPanelEmpty(t *testing.T) {
	p := NewCandlestickPanel()
	p.SetSize(60, 20)
	if out := p.View(); !strings.Contains(out, "No history") {
		t.Errorf("expected empty placeholder, got %q", out)
	}
}

func TestCandleChar(t *testing.T) {
	bar := market.HistoryBar{Open: 10, Close: 12, High: 15, Low: 5}
	if got := candleChar(bar, 0, 0, 20, 21); got != ' ' {
		t.Errorf("row above high = %q", got)
	}
	if got := candleChar(bar, 9, 0, 20, 21); got != '┃' {
		t.Errorf("row inside body = %q", got)
	}
	if got := candleChar(bar, 6, 0, 20, 21); got != '│' {
		t.Errorf("row on upper wick = %q", got)
	}
}

func newOrderPanel() *OrderInputPanel {
	p := NewOrderInputPanel([]string{"AAPL", "AMD", "NVDA"})
	acct := account.New(decimal.NewFromInt(1000))
	acct.Positions = []account.Position{{Symbol: "AMD", Shares: 7, AvgCost: decimal.NewFromInt(90)}}
	p.SetMarket(acct, map[string]float64{"AAPL": 300, "AMD": 100})
	p.SetFocus(true)
	return p
}

func TestOrderInputAutocomplete(t *testing.T) {
	p := newOrderPanel()
	p.Update(keyMsg("a"))
	p.Update(keyMsg("m"))
	p.Update(keyMsg("enter"))

	if got := p.Symbol(); got != "AMD" {
		t.Fatalf("Symbol = %q, want AMD", got)
	}
	if p.currentField != FieldSide {
		t.Errorf("expected focus on side, got %d", p.currentField)
	}
}

func TestOrderInputMaxShares(t *testing.T) {
	p := newOrderPanel()
	p.SetSymbol("AAPL")
	if got := p.MaxShares(); got != 3 {
		t.Errorf("max buy = %d, want 3", got)
	}

	p.SetSymbol("AMD")
	p.currentField = FieldSide
	p.Update(keyMsg("right"))
	if p.Side() != account.SideSell {
		t.Fatalf("side = %s", p.Side())
	}
	p.setField(FieldShares)
	p.Update(keyMsg("m"))
	if got := p.sharesInput.Value(); got != "7" {
		t.Errorf("shares after max = %q, want 7", got)
	}
}

func TestOrderInputSubmit(t *testing.T) {
	p := newOrderPanel()
	p.SetSymbol("nvda")
	p.sharesInput.SetValue("4")
	p.stopLossInput.SetValue("90.5")
	p.setField(FieldSubmit)

	_, cmd := p.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatalf("expected submit command, error %q", p.errMsg)
	}
	msg := cmd().(OrderSubmitMsg)
	req := msg.Request
	if req.Symbol != "NVDA" || req.Shares != 4 || req.Side != account.SideBuy {
		t.Errorf("unexpected request %+v", req)
	}
	if req.StopLoss == nil || *req.StopLoss != 90.5 || req.TakeProfit != nil {
		t.Errorf("unexpected thresholds %v %v", req.StopLoss, req.TakeProfit)
	}
}

func TestOrderInputRejectsBadForm(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		shares string
		tp     string
	}{
		{"no symbol", "", "1", ""},
		{"zero shares", "AAPL", "0", ""},
		{"fractional shares", "AAPL", "1.5", ""},
		{"bad target", "AAPL", "1", "abc"},
		{"negative target", "AAPL", "1", "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOrderPanel()
			p.SetSymbol(tt.symbol)
			p.sharesInput.SetValue(tt.shares)
			p.takeProfitInput.SetValue(tt.tp)
			p.setField(FieldSubmit)

			if _, cmd := p.Update(keyMsg("enter")); cmd != nil {
				t.Fatalf("expected no command")
			}
			if p.errMsg == "" {
				t.Errorf("expected an inline error")
			}
		})
	}
}

func TestPortfolioPanelView(t *testing.T) {
	p := NewPortfolioPanel()
	p.SetSize(90, 30)
	acct := account.New(decimal.NewFromInt(500))
	acct.Positions = []account.Position{{Symbol: "AAPL", Shares: 2, AvgCost: decimal.NewFromInt(100)}}
	acct.Level = 2
	v := account.Value(acct, map[string]float64{"AAPL": 110}, decimal.NewFromInt(700))
	p.SetAccount(acct, v, map[string]float64{"AAPL": 110}, 250, 0.25)

	out := p.View()
	for _, want := range []string{"AAPL", "$720.00", "20.00", "Lv 2", "250/1000"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/progress"
	"github.com/zappabad/papertrade/tui/styles"
)

// PortfolioPanel shows valuation, level progress, open positions and the
// newest ledger entries.
type PortfolioPanel struct {
	acct      account.Account
	valuation account.Valuation
	prices    map[string]float64
	levelXP   int64
	levelFrac float64

	scrollOffset int
	focused      bool
	width        int
	height       int
	maxLedger    int
}

// NewPortfolioPanel creates a new portfolio panel.
func NewPortfolioPanel() *PortfolioPanel {
	return &PortfolioPanel{
		prices:    map[string]float64{},
		maxLedger: 5,
	}
}

// Init initializes the panel.
func (p *PortfolioPanel) Init() tea.Cmd {
	return nil
}

// Update scrolls the positions table.
func (p *PortfolioPanel) Update(msg tea.Msg) (*PortfolioPanel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused {
		return p, nil
	}
	switch {
	case key.Matches(km, key.NewBinding(key.WithKeys("up", "k"))):
		if p.scrollOffset > 0 {
			p.scrollOffset--
		}
	case key.Matches(km, key.NewBinding(key.WithKeys("down", "j"))):
		if p.scrollOffset < len(p.acct.Positions)-1 {
			p.scrollOffset++
		}
	}
	return p, nil
}

// View renders the panel.
func (p *PortfolioPanel) View() string {
	var content strings.Builder

	v := p.valuation
	content.WriteString(styles.LabelStyle.Render("Total  "))
	content.WriteString(styles.PriceStyle.Render(styles.FormatMoney(v.TotalValue)))
	content.WriteString("  ")
	content.WriteString(styles.ChangeStyle(v.LifetimeGainPercent).Render(
		fmt.Sprintf("%s (%+.2f%%)", styles.FormatMoney(v.LifetimeGain), v.LifetimeGainPercent)))
	content.WriteString("\n")
	content.WriteString(styles.LabelStyle.Render("Cash   "))
	content.WriteString(styles.FormatMoney(v.Cash))
	content.WriteString(styles.LabelStyle.Render("  Stocks "))
	content.WriteString(styles.FormatMoney(v.MarketValue))
	content.WriteString("\n")
	content.WriteString(p.renderLevel())
	content.WriteString("\n\n")

	header := fmt.Sprintf("%-6s %6s %9s %9s %10s %7s %7s", "Symbol", "Qty", "Avg", "Last", "P/L", "SL", "TP")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	if len(p.acct.Positions) == 0 {
		content.WriteString(styles.PlaceholderStyle.Render("No open positions"))
		content.WriteString("\n")
	}
	rows := max(p.height-16, 3)
	end := min(len(p.acct.Positions), p.scrollOffset+rows)
	for _, pos := range p.acct.Positions[min(p.scrollOffset, end):end] {
		content.WriteString(p.renderPosition(pos))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(styles.HeaderStyle.Render("Recent Trades"))
	content.WriteString("\n")
	ledger := p.acct.Ledger
	if len(ledger) > p.maxLedger {
		ledger = ledger[:p.maxLedger]
	}
	for _, tx := range ledger {
		content.WriteString(renderTransaction(tx))
		content.WriteString("\n")
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("💼 Portfolio", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *PortfolioPanel) renderLevel() string {
	const barWidth = 20
	filled := int(p.levelFrac * barWidth)
	bar := styles.XPFilledStyle.Render(strings.Repeat("█", filled)) +
		styles.XPEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %s %d/%d xp",
		styles.LabelStyle.Render(fmt.Sprintf("Lv %d", p.acct.Level)),
		bar, p.levelXP, progress.XPPerLevel)
}

func (p *PortfolioPanel) renderPosition(pos account.Position) string {
	last, ok := p.prices[pos.Symbol]
	lastStr := "-"
	pnl := decimal.Zero
	if ok {
		lastStr = styles.FormatPrice(last)
		pnl = decimal.NewFromFloat(last).Sub(pos.AvgCost).Mul(decimal.NewFromInt(pos.Shares))
	}

	row := fmt.Sprintf("%-6s %6d %9s %9s ", pos.Symbol, pos.Shares, pos.AvgCost.StringFixed(2), lastStr)
	row += styles.ChangeStyle(pnl.InexactFloat64()).Render(fmt.Sprintf("%10s", pnl.StringFixed(2)))
	row += fmt.Sprintf(" %7s %7s", threshold(pos.StopLoss), threshold(pos.TakeProfit))
	return row
}

func threshold(v *float64) string {
	if v == nil {
		return "-"
	}
	return styles.FormatPrice(*v)
}

func renderTransaction(tx account.Transaction) string {
	style := styles.BuyStyle
	if tx.Side != account.SideBuy {
		style = styles.SellStyle
	}
	line := fmt.Sprintf("%-9s %-6s %6d @ %9s", tx.Side, tx.Symbol, tx.Shares, tx.Price.StringFixed(2))
	return styles.TimeStyle.Render(tx.Timestamp.Format("15:04:05")) + " " + style.Render(line)
}

// SetFocus sets the focus state of the panel.
func (p *PortfolioPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *PortfolioPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetAccount replaces the displayed account state.
func (p *PortfolioPanel) SetAccount(acct account.Account, v account.Valuation, prices map[string]float64, levelXP int64, levelFrac float64) {
	p.acct = acct
	p.valuation = v
	p.prices = prices
	p.levelXP = levelXP
	p.levelFrac = min(max(levelFrac, 0), 1)
	if p.scrollOffset >= len(acct.Positions) {
		p.scrollOffset = max(0, len(acct.Positions)-1)
	}
}

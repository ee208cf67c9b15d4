package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/papertrade/internal/market"
	"github.com/zappabad/papertrade/tui/styles"
)

// MarketOverviewPanel lists every instrument with its last price and change.
type MarketOverviewPanel struct {
	instruments   []market.Instrument
	selectedIndex int
	focused       bool
	width         int
	height        int
}

// NewMarketOverviewPanel creates a new market overview panel.
func NewMarketOverviewPanel(instruments []market.Instrument) *MarketOverviewPanel {
	return &MarketOverviewPanel{instruments: instruments}
}

// Init initializes the panel.
func (p *MarketOverviewPanel) Init() tea.Cmd {
	return nil
}

// Update moves the cursor. A changed cursor emits InstrumentSelectedMsg.
func (p *MarketOverviewPanel) Update(msg tea.Msg) (*MarketOverviewPanel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused {
		return p, nil
	}
	prev := p.selectedIndex
	switch {
	case key.Matches(km, key.NewBinding(key.WithKeys("up", "k"))):
		if p.selectedIndex > 0 {
			p.selectedIndex--
		}
	case key.Matches(km, key.NewBinding(key.WithKeys("down", "j"))):
		if p.selectedIndex < len(p.instruments)-1 {
			p.selectedIndex++
		}
	}
	if p.selectedIndex == prev {
		return p, nil
	}
	symbol := p.SelectedSymbol()
	return p, func() tea.Msg { return InstrumentSelectedMsg{Symbol: symbol} }
}

// View renders the panel.
func (p *MarketOverviewPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-6s %10s %9s %8s %8s", "Symbol", "Price", "Change", "%", "Volume")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	for i, inst := range p.instruments {
		change := fmt.Sprintf("%+.2f", inst.Change)
		pct := fmt.Sprintf("%+.2f%%", inst.ChangePercent)
		row := fmt.Sprintf("%-6s %10s ", inst.Symbol, styles.FormatPrice(inst.Price))
		row += styles.ChangeStyle(inst.Change).Render(fmt.Sprintf("%9s %8s", change, pct))
		row += fmt.Sprintf(" %8s", inst.Volume)

		style := styles.RowStyle
		if i == p.selectedIndex {
			style = styles.SelectedRowStyle
		}
		content.WriteString(style.Render(row))
		if i < len(p.instruments)-1 {
			content.WriteString("\n")
		}
	}

	if inst, ok := p.selected(); ok {
		content.WriteString("\n\n")
		content.WriteString(styles.LabelStyle.Render(inst.Name))
		if inst.MarketCap != "" {
			content.WriteString(styles.TimeStyle.Render("  cap " + inst.MarketCap))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📈 Market", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *MarketOverviewPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *MarketOverviewPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetInstruments replaces the rows, keeping the cursor on selected.
func (p *MarketOverviewPanel) SetInstruments(instruments []market.Instrument, selected string) {
	p.instruments = instruments
	for i, inst := range instruments {
		if inst.Symbol == selected {
			p.selectedIndex = i
			return
		}
	}
	if p.selectedIndex >= len(instruments) {
		p.selectedIndex = max(0, len(instruments)-1)
	}
}

// SelectedSymbol returns the symbol under the cursor.
func (p *MarketOverviewPanel) SelectedSymbol() string {
	if inst, ok := p.selected(); ok {
		return inst.Symbol
	}
	return ""
}

func (p *MarketOverviewPanel) selected() (market.Instrument, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.instruments) {
		return p.instruments[p.selectedIndex], true
	}
	return market.Instrument{}, false
}

// InstrumentSelectedMsg is sent when the cursor moves to another symbol.
type InstrumentSelectedMsg struct {
	Symbol string
}

package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/papertrade/internal/chart"
	"github.com/zappabad/papertrade/internal/market"
	"github.com/zappabad/papertrade/tui/styles"
)

// CandlestickPanel draws the selected instrument's history bars.
type CandlestickPanel struct {
	inst      market.Instrument
	timeRange market.TimeRange
	viewport  chart.Viewport
	barCount  int

	focused bool
	width   int
	height  int
}

// NewCandlestickPanel creates a new candlestick chart panel.
func NewCandlestickPanel() *CandlestickPanel {
	return &CandlestickPanel{timeRange: market.DefaultRange}
}

// Init initializes the panel.
func (p *CandlestickPanel) Init() tea.Cmd {
	return nil
}

// Update zooms and pans while focused.
func (p *CandlestickPanel) Update(msg tea.Msg) (*CandlestickPanel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused {
		return p, nil
	}
	n := len(p.inst.History)
	switch {
	case key.Matches(km, key.NewBinding(key.WithKeys("+", "="))):
		p.viewport = p.viewport.ZoomIn()
	case key.Matches(km, key.NewBinding(key.WithKeys("-", "_"))):
		p.viewport = p.viewport.ZoomOut(n)
	case key.Matches(km, key.NewBinding(key.WithKeys("left", "h"))):
		p.viewport = p.viewport.Pan(-p.panStep(), n)
	case key.Matches(km, key.NewBinding(key.WithKeys("right", "l"))):
		p.viewport = p.viewport.Pan(p.panStep(), n)
	}
	return p, nil
}

func (p *CandlestickPanel) panStep() int {
	return max(1, p.viewport.Count()/10)
}

// View renders the panel.
func (p *CandlestickPanel) View() string {
	name := "No instrument"
	if p.inst.Symbol != "" {
		name = p.inst.Symbol
	}

	var content strings.Builder
	chartHeight := max(p.height-6, 5)

	bars := p.viewport.Slice(p.inst.History)
	if len(bars) == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("No history yet..."))
	} else {
		content.WriteString(p.renderChart(chartHeight, bars))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle(fmt.Sprintf("📉 %s · %s · %d bars", name, p.timeRange, len(bars)), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *CandlestickPanel) renderChart(height int, bars []market.HistoryBar) string {
	// 10 chars of price axis, 2 per candle
	fit := max((p.width-14)/2, 1)
	if len(bars) > fit {
		bars = bars[len(bars)-fit:]
	}

	lo, hi := chart.PriceBounds(bars)
	rows := max(height-3, 5)

	var result strings.Builder
	for row := 0; row < rows; row++ {
		price := yToPrice(row, lo, hi, rows)
		result.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%8s │", styles.FormatPrice(price))))

		for _, bar := range bars {
			style := styles.CandleUpStyle
			if bar.Close < bar.Open {
				style = styles.CandleDownStyle
			}
			result.WriteString(style.Render(string(candleChar(bar, row, lo, hi, rows))))
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}

	result.WriteString(styles.ChartAxisStyle.Render("─────────┴"))
	result.WriteString(styles.ChartAxisStyle.Render(strings.Repeat("──", len(bars))))
	result.WriteString("\n")

	first, last := bars[0].Label, bars[len(bars)-1].Label
	gap := max(len(bars)*2-len(first)-len(last), 1)
	result.WriteString("          ")
	result.WriteString(styles.ChartLabelStyle.Render(first + strings.Repeat(" ", gap) + last))

	return result.String()
}

// candleChar returns the glyph for bar at row.
func candleChar(bar market.HistoryBar, row int, lo, hi float64, height int) rune {
	rowPrice := yToPrice(row, lo, hi, height)
	tolerance := (hi - lo) / float64(height*2)

	bodyTop, bodyBottom := max(bar.Open, bar.Close), min(bar.Open, bar.Close)

	if rowPrice <= bodyTop+tolerance && rowPrice >= bodyBottom-tolerance {
		return '┃'
	}
	if rowPrice <= bar.High+tolerance && rowPrice > bodyTop {
		return '│'
	}
	if rowPrice >= bar.Low-tolerance && rowPrice < bodyBottom {
		return '│'
	}
	return ' '
}

func yToPrice(y int, lo, hi float64, height int) float64 {
	if height <= 1 {
		return lo
	}
	ratio := float64(y) / float64(height-1)
	return hi - ratio*(hi-lo)
}

// SetFocus sets the focus state of the panel.
func (p *CandlestickPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *CandlestickPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetInstrument updates the charted data. Switching symbol or a change in
// bar count snaps the viewport back to the latest bars.
func (p *CandlestickPanel) SetInstrument(inst market.Instrument, r market.TimeRange) {
	n := len(inst.History)
	if inst.Symbol != p.inst.Symbol || n != p.barCount || r != p.timeRange {
		p.viewport = chart.NewViewport(n)
	} else {
		p.viewport = p.viewport.Clamp(n)
	}
	p.inst = inst
	p.timeRange = r
	p.barCount = n
}

// Viewport returns the visible window.
func (p *CandlestickPanel) Viewport() chart.Viewport {
	return p.viewport
}

// Symbol returns the charted symbol.
func (p *CandlestickPanel) Symbol() string {
	return p.inst.Symbol
}

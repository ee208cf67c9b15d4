package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/papertrade/internal/account"
	"github.com/zappabad/papertrade/internal/account/orders"
	"github.com/zappabad/papertrade/tui/styles"
)

// OrderInputField represents the currently focused input field.
type OrderInputField int

const (
	FieldSymbol OrderInputField = iota
	FieldSide
	FieldShares
	FieldStopLoss
	FieldTakeProfit
	FieldSubmit
)

var sideOptions = []account.Side{account.SideBuy, account.SideSell}

// OrderInputPanel handles order entry with symbol autocomplete.
type OrderInputPanel struct {
	symbols         []string
	symbolInput     textinput.Model
	sharesInput     textinput.Model
	stopLossInput   textinput.Model
	takeProfitInput textinput.Model

	// Dropdown state
	showDropdown     bool
	dropdownFiltered []string
	dropdownIndex    int

	sideIndex    int
	currentField OrderInputField

	// Market context for the max button and the cost preview
	acct   account.Account
	prices map[string]float64

	errMsg  string
	focused bool
	width   int
	height  int
}

// NewOrderInputPanel creates a new order input panel.
func NewOrderInputPanel(symbols []string) *OrderInputPanel {
	symbolInput := textinput.New()
	symbolInput.Placeholder = "Search symbol..."
	symbolInput.Width = 15
	symbolInput.CharLimit = 10

	return &OrderInputPanel{
		symbols:          symbols,
		symbolInput:      symbolInput,
		sharesInput:      numberInput("Shares"),
		stopLossInput:    numberInput("optional"),
		takeProfitInput:  numberInput("optional"),
		dropdownFiltered: symbols,
		prices:           map[string]float64{},
		currentField:     FieldSymbol,
	}
}

func numberInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = 10
	in.CharLimit = 15
	return in
}

// Init initializes the panel.
func (p *OrderInputPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *OrderInputPanel) Update(msg tea.Msg) (*OrderInputPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, key.NewBinding(key.WithKeys("down"))):
			p.nextField()
			return p, nil

		case key.Matches(km, key.NewBinding(key.WithKeys("up"))):
			p.prevField()
			return p, nil

		case key.Matches(km, key.NewBinding(key.WithKeys("enter"))):
			if p.currentField == FieldSubmit {
				return p, p.submitOrder()
			}
			p.nextField()
			return p, nil

		case key.Matches(km, key.NewBinding(key.WithKeys("esc"))):
			p.showDropdown = false
			return p, nil

		case key.Matches(km, key.NewBinding(key.WithKeys("left"))):
			if p.showDropdown {
				p.dropdownIndex = max(0, p.dropdownIndex-1)
				return p, nil
			}
			if p.currentField == FieldSide {
				p.sideIndex = 0
				return p, nil
			}

		case key.Matches(km, key.NewBinding(key.WithKeys("right"))):
			if p.showDropdown {
				p.dropdownIndex = max(0, min(len(p.dropdownFiltered)-1, p.dropdownIndex+1))
				return p, nil
			}
			if p.currentField == FieldSide {
				p.sideIndex = 1
				return p, nil
			}

		case key.Matches(km, key.NewBinding(key.WithKeys("m"))):
			if p.currentField == FieldShares {
				p.FillMax()
				return p, nil
			}
		}
	}

	var cmd tea.Cmd
	switch p.currentField {
	case FieldSymbol:
		p.symbolInput, cmd = p.symbolInput.Update(msg)
		p.filterDropdown(p.symbolInput.Value())
		p.showDropdown = len(p.symbolInput.Value()) > 0
	case FieldShares:
		p.sharesInput, cmd = p.sharesInput.Update(msg)
	case FieldStopLoss:
		p.stopLossInput, cmd = p.stopLossInput.Update(msg)
	case FieldTakeProfit:
		p.takeProfitInput, cmd = p.takeProfitInput.Update(msg)
	}
	return p, cmd
}

// View renders the panel.
func (p *OrderInputPanel) View() string {
	var content strings.Builder

	content.WriteString(p.renderField("Symbol", FieldSymbol, p.renderSymbolField()))
	content.WriteString("\n")
	content.WriteString(p.renderField("Side", FieldSide, p.renderSideField()))
	content.WriteString("\n")
	content.WriteString(p.renderField("Shares", FieldShares, p.sharesInput.View()+styles.TimeStyle.Render(fmt.Sprintf("  m: max %d", p.MaxShares()))))
	content.WriteString("\n")
	content.WriteString(p.renderField("Stop", FieldStopLoss, p.stopLossInput.View()))
	content.WriteString("\n")
	content.WriteString(p.renderField("Target", FieldTakeProfit, p.takeProfitInput.View()))
	content.WriteString("\n\n")

	submitStyle := styles.InputStyle
	if p.currentField == FieldSubmit && p.focused {
		submitStyle = styles.FocusedInputStyle.Bold(true).Foreground(styles.PrimaryColor)
	}
	content.WriteString(submitStyle.Render("  [Submit Order]  "))

	content.WriteString("\n\n")
	content.WriteString(p.renderOrderSummary())
	if p.errMsg != "" {
		content.WriteString("\n")
		content.WriteString(styles.SellStyle.Render(p.errMsg))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📝 Order Entry", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *OrderInputPanel) renderField(label string, field OrderInputField, inputView string) string {
	labelStyle := styles.LabelStyle
	if p.currentField == field && p.focused {
		labelStyle = labelStyle.Foreground(styles.PrimaryColor)
	}
	return labelStyle.Render(fmt.Sprintf("%-8s", label)) + inputView
}

func (p *OrderInputPanel) renderSymbolField() string {
	var result strings.Builder

	inputStyle := styles.InputStyle
	if p.currentField == FieldSymbol && p.focused {
		inputStyle = styles.FocusedInputStyle
	}
	result.WriteString(inputStyle.Render(p.symbolInput.View()))

	if p.showDropdown && len(p.dropdownFiltered) > 0 {
		shown := min(len(p.dropdownFiltered), 5)
		for i := 0; i < shown; i++ {
			style := styles.DropdownItemStyle
			if i == p.dropdownIndex {
				style = styles.DropdownSelectedStyle
			}
			result.WriteString("\n         ")
			result.WriteString(style.Render(highlightMatch(p.dropdownFiltered[i], p.symbolInput.Value())))
		}
	}
	return result.String()
}

func (p *OrderInputPanel) renderSideField() string {
	items := make([]string, 0, len(sideOptions))
	for i, opt := range sideOptions {
		style := styles.DropdownItemStyle
		if i == p.sideIndex {
			if p.currentField == FieldSide && p.focused {
				style = styles.DropdownSelectedStyle
			} else {
				style = styles.DropdownItemStyle.Bold(true)
			}
			if opt == account.SideBuy {
				style = style.Foreground(styles.BuyColor)
			} else {
				style = style.Foreground(styles.SellColor)
			}
		}
		items = append(items, style.Render(string(opt)))
	}
	return strings.Join(items, " | ")
}

func (p *OrderInputPanel) renderOrderSummary() string {
	symbol := p.Symbol()
	if symbol == "" {
		symbol = "---"
	}
	side := p.Side()
	sideStyle := styles.BuyStyle
	if side == account.SideSell {
		sideStyle = styles.SellStyle
	}
	qty := p.sharesInput.Value()
	if qty == "" {
		qty = "0"
	}

	parts := []string{symbol, sideStyle.Render(string(side)), "x" + qty}
	if price, ok := p.prices[symbol]; ok {
		if n, err := strconv.ParseInt(qty, 10, 64); err == nil && n > 0 {
			parts = append(parts, fmt.Sprintf("≈ %s", styles.FormatPrice(price*float64(n))))
		}
	}
	return styles.HeaderStyle.Render("Order: ") + strings.Join(parts, " ")
}

func (p *OrderInputPanel) filterDropdown(query string) {
	query = strings.ToUpper(query)
	p.dropdownFiltered = nil
	p.dropdownIndex = 0
	for _, s := range p.symbols {
		if strings.Contains(s, query) {
			p.dropdownFiltered = append(p.dropdownFiltered, s)
		}
	}
}

func highlightMatch(item, query string) string {
	idx := strings.Index(item, strings.ToUpper(query))
	if query == "" || idx == -1 {
		return item
	}
	end := idx + len(query)
	return item[:idx] + styles.DropdownMatchStyle.Render(item[idx:end]) + item[end:]
}

func (p *OrderInputPanel) selectDropdownItem() {
	if p.showDropdown && p.dropdownIndex < len(p.dropdownFiltered) {
		p.symbolInput.SetValue(p.dropdownFiltered[p.dropdownIndex])
	}
	p.showDropdown = false
}

func (p *OrderInputPanel) nextField() {
	if p.currentField == FieldSymbol {
		p.selectDropdownItem()
	}
	p.setField((p.currentField + 1) % (FieldSubmit + 1))
}

func (p *OrderInputPanel) prevField() {
	p.showDropdown = false
	p.setField((p.currentField + FieldSubmit) % (FieldSubmit + 1))
}

func (p *OrderInputPanel) setField(f OrderInputField) {
	p.currentField = f
	p.SetFocus(p.focused)
}

// submitOrder validates the form locally and emits OrderSubmitMsg. Price
// dependent checks are left to the order engine.
func (p *OrderInputPanel) submitOrder() tea.Cmd {
	p.errMsg = ""
	symbol := p.Symbol()
	if symbol == "" {
		p.errMsg = "choose a symbol"
		return nil
	}

	shares, err := strconv.ParseInt(strings.TrimSpace(p.sharesInput.Value()), 10, 64)
	if err != nil || shares <= 0 {
		p.errMsg = "shares must be a positive whole number"
		return nil
	}

	sl, err := optionalPrice(p.stopLossInput.Value())
	if err != nil {
		p.errMsg = "stop-loss must be a positive number"
		return nil
	}
	tp, err := optionalPrice(p.takeProfitInput.Value())
	if err != nil {
		p.errMsg = "take-profit must be a positive number"
		return nil
	}

	req := orders.Request{
		Symbol:     symbol,
		Side:       p.Side(),
		Shares:     shares,
		StopLoss:   sl,
		TakeProfit: tp,
	}
	return func() tea.Msg {
		return OrderSubmitMsg{Request: req}
	}
}

func optionalPrice(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return nil, fmt.Errorf("invalid price %q", s)
	}
	return &v, nil
}

// Symbol returns the entered symbol, uppercased.
func (p *OrderInputPanel) Symbol() string {
	return strings.ToUpper(strings.TrimSpace(p.symbolInput.Value()))
}

// Side returns the chosen side.
func (p *OrderInputPanel) Side() account.Side {
	return sideOptions[p.sideIndex]
}

// MaxShares is the largest order the account can fill on the chosen side.
func (p *OrderInputPanel) MaxShares() int64 {
	symbol := p.Symbol()
	if p.Side() == account.SideSell {
		return account.MaxSell(p.acct, symbol)
	}
	price, ok := p.prices[symbol]
	if !ok {
		return 0
	}
	return account.MaxBuy(p.acct.Balance, price)
}

// FillMax puts MaxShares into the shares field.
func (p *OrderInputPanel) FillMax() {
	p.sharesInput.SetValue(strconv.FormatInt(p.MaxShares(), 10))
}

// SetMarket updates the account and prices used by the max button.
func (p *OrderInputPanel) SetMarket(acct account.Account, prices map[string]float64) {
	p.acct = acct
	p.prices = prices
}

// SetError shows msg under the summary.
func (p *OrderInputPanel) SetError(msg string) {
	p.errMsg = msg
}

// SetFocus sets the focus state of the panel.
func (p *OrderInputPanel) SetFocus(focused bool) {
	p.focused = focused
	inputs := map[OrderInputField]*textinput.Model{
		FieldSymbol:     &p.symbolInput,
		FieldShares:     &p.sharesInput,
		FieldStopLoss:   &p.stopLossInput,
		FieldTakeProfit: &p.takeProfitInput,
	}
	for field, in := range inputs {
		if focused && field == p.currentField {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// SetSize sets the panel dimensions.
func (p *OrderInputPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetSymbol pre-fills the symbol field.
func (p *OrderInputPanel) SetSymbol(symbol string) {
	p.symbolInput.SetValue(symbol)
	p.showDropdown = false
}

// Reset clears the form after a fill.
func (p *OrderInputPanel) Reset() {
	p.sharesInput.SetValue("")
	p.stopLossInput.SetValue("")
	p.takeProfitInput.SetValue("")
	p.errMsg = ""
	p.setField(FieldShares)
}

// OrderSubmitMsg is sent when an order is submitted.
type OrderSubmitMsg struct {
	Request orders.Request
}

package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Palette
var (
	PrimaryColor    = lipgloss.Color("#7C3AED")
	AccentColor     = lipgloss.Color("#F59E0B")
	BuyColor        = lipgloss.Color("#10B981")
	SellColor       = lipgloss.Color("#EF4444")
	BackgroundColor = lipgloss.Color("#1F2937")

	// BorderColor doubles as the highlight behind selected rows.
	BorderColor      = lipgloss.Color("#374151")
	FocusBorderColor = PrimaryColor

	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

// Panels and tables
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)
	FocusedPanelStyle = PanelStyle.BorderForeground(FocusBorderColor)

	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).Padding(0, 1)
	HeaderStyle      = lipgloss.NewStyle().Bold(true).Foreground(TextSecondaryColor)
	RowStyle         = lipgloss.NewStyle().Foreground(TextColor)
	SelectedRowStyle = RowStyle.Background(BorderColor)
	TimeStyle        = lipgloss.NewStyle().Foreground(TextMutedColor)
)

// Market and portfolio figures
var (
	BuyStyle       = lipgloss.NewStyle().Bold(true).Foreground(BuyColor)
	SellStyle      = lipgloss.NewStyle().Bold(true).Foreground(SellColor)
	PriceStyle     = lipgloss.NewStyle().Foreground(TextColor)
	PriceUpStyle   = lipgloss.NewStyle().Foreground(BuyColor)
	PriceDownStyle = lipgloss.NewStyle().Foreground(SellColor)

	XPFilledStyle = lipgloss.NewStyle().Foreground(PrimaryColor)
	XPEmptyStyle  = lipgloss.NewStyle().Foreground(BorderColor)
)

// Activity feed
var (
	NoticeNormalStyle    = lipgloss.NewStyle().Foreground(TextColor)
	NoticeImportantStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
)

// Order form
var (
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)
	FocusedInputStyle = InputStyle.BorderForeground(FocusBorderColor)

	LabelStyle       = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	PlaceholderStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	// symbol autocomplete
	DropdownItemStyle     = lipgloss.NewStyle().Foreground(TextColor).Padding(0, 1)
	DropdownSelectedStyle = DropdownItemStyle.Background(BorderColor)
	DropdownMatchStyle    = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
)

// Candlestick chart
var (
	CandleUpStyle   = lipgloss.NewStyle().Foreground(BuyColor)
	CandleDownStyle = lipgloss.NewStyle().Foreground(SellColor)
	ChartAxisStyle  = lipgloss.NewStyle().Foreground(TextMutedColor)
	ChartLabelStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
)

// Status bar
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)
	StatusBarKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
	StatusBarDescStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	StatusBarWarnStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
)

// RenderTitle renders a panel title, highlighted when focused.
func RenderTitle(title string, focused bool) string {
	style := TitleStyle
	if focused {
		style = style.Foreground(FocusBorderColor)
	}
	return style.Render(title)
}

// FormatPrice renders a quote with two decimals.
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}

// FormatMoney renders an amount as $1,234.56.
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}

// ChangeStyle picks the up or down color for a signed change.
func ChangeStyle(change float64) lipgloss.Style {
	if change < 0 {
		return PriceDownStyle
	}
	return PriceUpStyle
}

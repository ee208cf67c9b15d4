package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/papertrade/internal/activity"
	"github.com/zappabad/papertrade/tui/styles"
)

// ActivityPanel lists session notices, newest at the bottom.
type ActivityPanel struct {
	notices       []activity.Notice
	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
}

// NewActivityPanel creates a new activity panel.
func NewActivityPanel() *ActivityPanel {
	return &ActivityPanel{}
}

// Init initializes the panel.
func (p *ActivityPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ActivityPanel) Update(msg tea.Msg) (*ActivityPanel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused {
		return p, nil
	}
	switch {
	case key.Matches(km, key.NewBinding(key.WithKeys("up", "k"))):
		if p.selectedIndex > 0 {
			p.selectedIndex--
			if p.selectedIndex < p.scrollOffset {
				p.scrollOffset = p.selectedIndex
			}
		}
	case key.Matches(km, key.NewBinding(key.WithKeys("down", "j"))):
		if p.selectedIndex < len(p.notices)-1 {
			p.selectedIndex++
			if visible := p.visibleItems(); p.selectedIndex >= p.scrollOffset+visible {
				p.scrollOffset = p.selectedIndex - visible + 1
			}
		}
	}
	return p, nil
}

func (p *ActivityPanel) visibleItems() int {
	return max(p.height-4, 1)
}

// View renders the panel.
func (p *ActivityPanel) View() string {
	var content strings.Builder

	if len(p.notices) == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("No activity yet"))
	} else {
		visible := p.visibleItems()
		start := p.scrollOffset
		end := min(start+visible, len(p.notices))

		for i := start; i < end; i++ {
			n := p.notices[i]
			msg := n.Message
			if limit := p.width - 15; limit > 3 && len(msg) > limit {
				msg = msg[:limit-3] + "..."
			}

			style := styles.NoticeNormalStyle
			switch {
			case n.Kind == activity.KindRejected:
				style = styles.SellStyle
			case n.Severity > 0:
				style = styles.NoticeImportantStyle
			}

			line := fmt.Sprintf("%s %s", styles.TimeStyle.Render(n.Time.Format("15:04:05")), style.Render(msg))
			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}
			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}

		if len(p.notices) > visible {
			content.WriteString("\n")
			content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(
				fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.notices))))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📰 Activity", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *ActivityPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *ActivityPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetNotices replaces the list. While unfocused the view follows the newest
// notice.
func (p *ActivityPanel) SetNotices(notices []activity.Notice) {
	p.notices = notices
	if !p.focused {
		p.selectedIndex = max(0, len(notices)-1)
		p.scrollOffset = max(0, len(notices)-p.visibleItems())
		return
	}
	if p.selectedIndex >= len(notices) {
		p.selectedIndex = max(0, len(notices)-1)
	}
	if p.scrollOffset > p.selectedIndex {
		p.scrollOffset = p.selectedIndex
	}
}

// Selected returns the notice under the cursor.
func (p *ActivityPanel) Selected() (activity.Notice, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.notices) {
		return p.notices[p.selectedIndex], true
	}
	return activity.Notice{}, false
}

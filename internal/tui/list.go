package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/render"
)

// linesPerItem is the number of terminal lines each session occupies.
const linesPerItem = 2

// renderList renders the left panel: the session list with scrolling.
func (m model) renderList(width, height int) string {
	sessions := m.state.Sessions
	if len(sessions) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("Loading chats...")
		return empty
	}

	var lines []string
	for i, s := range sessions {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatSessionLine(s, width, i == m.cursor, s.ID == m.state.ActiveID)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatSessionLine formats a single session as two lines:
//
//	line 1: [>] name  (N)
//	line 2:    last message snippet (dimmed)
func formatSessionLine(s chat.Session, width int, selected, active bool) []string {
	count := styleListCount.Render(fmt.Sprintf("(%d)", len(s.Messages)))

	nameMax := width - 2 - runewidth.StringWidth(fmt.Sprintf("(%d)", len(s.Messages))) - 1
	if nameMax < 0 {
		nameMax = 0
	}
	name := runewidth.Truncate(s.Name, nameMax, "")

	var line1 string
	switch {
	case selected:
		line1 = styleListSelected.Render("> "+name) + " " + count
	case active:
		line1 = "* " + styleListNormal.Render(name) + " " + count
	default:
		line1 = "  " + styleListNormal.Render(name) + " " + count
	}

	snippet := "(empty)"
	if n := len(s.Messages); n > 0 {
		snippet = render.MessageBody(s.Messages[n-1])
	}
	snippet = strings.ReplaceAll(snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\t", " ")
	snippetMax := width - 4 // indent
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + styleSnippet.Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}

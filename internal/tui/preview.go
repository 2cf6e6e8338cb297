package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/render"
)

// previewRenderedMsg is sent when an async transcript render completes.
type previewRenderedMsg struct {
	key     string
	content string
}

// previewCacheKey changes whenever the rendered transcript would.
func previewCacheKey(s chat.Session, width int) string {
	return fmt.Sprintf("%s:%d:%d", s.ID, len(s.Messages), width)
}

// loadPreviewCmd returns a tea.Cmd that renders the active transcript async.
func loadPreviewCmd(s chat.Session, width int) tea.Cmd {
	return func() tea.Msg {
		content := render.Transcript(s, render.Options{
			Width: width,
			Color: true,
		})
		return previewRenderedMsg{key: previewCacheKey(s, width), content: content}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	return vp
}

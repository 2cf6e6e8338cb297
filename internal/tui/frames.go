package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/scan"
)

type framesLoadedMsg struct {
	files []scan.FileInfo
	err   error
}

// framePicker lists the keyframes under the configured root.
type framePicker struct {
	files   []scan.FileInfo
	cursor  int
	offset  int
	loading bool
	err     error
}

func loadFramesCmd(root string) tea.Cmd {
	return func() tea.Msg {
		files, err := scan.Keyframes(root, "")
		return framesLoadedMsg{files: files, err: err}
	}
}

func (p *framePicker) selected() (scan.FileInfo, bool) {
	if p.cursor < 0 || p.cursor >= len(p.files) {
		return scan.FileInfo{}, false
	}
	return p.files[p.cursor], true
}

func (p *framePicker) move(delta, height int) {
	if len(p.files) == 0 {
		return
	}
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor > len(p.files)-1 {
		p.cursor = len(p.files) - 1
	}
	if height < 1 {
		height = 1
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+height {
		p.offset = p.cursor - height + 1
	}
}

// updateFrames handles keys while the picker is open. Enter attaches the
// keyframe to the active chat; ctrl+o inspects it directly.
func (m model) updateFrames(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.mode = modeChat
		return m, nil

	case key.Matches(msg, keys.Up):
		m.frames.move(-1, m.panelHeight()-2)

	case key.Matches(msg, keys.Down):
		m.frames.move(1, m.panelHeight()-2)

	case key.Matches(msg, keys.PageUp):
		m.frames.move(-(m.panelHeight() - 2), m.panelHeight()-2)

	case key.Matches(msg, keys.PageDown):
		m.frames.move(m.panelHeight()-2, m.panelHeight()-2)

	case key.Matches(msg, keys.Enter):
		f, ok := m.frames.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeChat
		img := chat.ImageRef{Path: f.Path, VideoID: f.VideoID, Keyframe: f.Name}
		return m, m.chatCmd(func(c *chat.Controller) error {
			return c.AttachImage(m.ctx, img)
		})

	case key.Matches(msg, keys.Inspect):
		f, ok := m.frames.selected()
		if !ok {
			return m, nil
		}
		return m.startInspect(f.Path)
	}
	return m, nil
}

func (m model) renderFrames(width, height int) string {
	p := m.frames
	switch {
	case p.loading:
		return styleSnippet.Render("Scanning keyframes...")
	case p.err != nil:
		return styleNoticeError.Render("Cannot list keyframes: " + p.err.Error())
	case len(p.files) == 0:
		return styleSnippet.Render("No keyframes under " + m.opts.KeyframeRoot)
	}

	var lines []string
	lines = append(lines, styleTitle.Render(fmt.Sprintf("%d keyframes", len(p.files))), "")
	for i := p.offset; i < len(p.files) && len(lines) < height; i++ {
		f := p.files[i]
		line := fmt.Sprintf("%-12s #%-8d %s", f.VideoID, f.Index, f.Path)
		line = runewidth.Truncate(line, width-2, "")
		if i == p.cursor {
			lines = append(lines, styleListSelected.Render("> "+line))
		} else {
			lines = append(lines, "  "+styleListNormal.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

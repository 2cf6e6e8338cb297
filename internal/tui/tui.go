package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/frame"
	"github.com/Zuo-Peng/framechat/internal/logging"
	"github.com/Zuo-Peng/framechat/internal/submit"
)

type tuiMode int

const (
	modeChat tuiMode = iota
	modePrompt
	modeFrames
	modeInspect
)

// Options wires the TUI to the rest of the application.
type Options struct {
	Store        *chat.Store
	Resolver     *frame.Resolver
	Backend      submit.Backend
	KeyframeRoot string
	PollInterval time.Duration
	Logger       *logging.Logger
	// InspectPath opens the inspector on this keyframe at startup.
	InspectPath string
}

// model

type model struct {
	ctx    context.Context
	opts   Options
	ctrl   *chat.Controller
	bridge *bridge
	log    *logging.Logger

	mode       tuiMode
	state      chat.State
	cursor     int
	listOffset int
	input      textinput.Model
	prompt     textinput.Model
	preview    viewport.Model
	previewKey string
	notice     *chat.Notice

	frames     framePicker
	insp       *inspector
	inspectGen int

	width    int
	height   int
	ready    bool
	quitting bool
}

func newModel(ctx context.Context, opts Options) model {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	b := &bridge{}

	ti := textinput.New()
	ti.Placeholder = `Message, \new <name>, \delete, \clear, \clear_all`
	ti.Focus()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 2048

	pi := textinput.New()
	pi.Placeholder = "Chat name"
	pi.Prompt = "New chat: "
	pi.PromptStyle = styleInputPrompt
	pi.TextStyle = styleInput
	pi.CharLimit = 128

	gen := 0
	if opts.InspectPath != "" {
		gen = 1
	}

	return model{
		ctx:        ctx,
		opts:       opts,
		ctrl:       chat.NewController(opts.Store, b, log),
		bridge:     b,
		log:        log,
		input:      ti,
		prompt:     pi,
		preview:    viewport.New(0, 0),
		inspectGen: gen,
	}
}

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return errors.New("tui: no chat store")
	}
	m := newModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// chatCmd runs fn against the controller off the UI goroutine and turns
// whatever the controller pushed to the view into a chatUpdatedMsg. Errors
// are already reported as notices.
func (m model) chatCmd(fn func(c *chat.Controller) error) tea.Cmd {
	ctrl, b := m.ctrl, m.bridge
	return func() tea.Msg {
		_ = fn(ctrl)
		return b.drain()
	}
}

// Init loads the store state and, when asked, starts resolving a frame.
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.chatCmd(func(c *chat.Controller) error {
			c.Render()
			return nil
		}),
	}
	if m.opts.InspectPath != "" {
		cmds = append(cmds, resolveFrameCmd(m, m.inspectGen, m.opts.InspectPath))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		cmds = append(cmds, m.loadCurrentPreview())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeFrames:
			return m.updateFrames(msg)
		case modeInspect:
			return m.updateInspector(msg)
		}
		return m.updateChat(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case chatUpdatedMsg:
		m.applyChatUpdate(msg)
		cmds = append(cmds, m.loadCurrentPreview())
		return m, tea.Batch(cmds...)

	case previewRenderedMsg:
		if msg.key == m.previewKey {
			return m, nil
		}
		if msg.key != previewCacheKey(m.state.Active, m.previewWidth()) {
			return m, nil // stale preview
		}
		m.preview.SetContent(msg.content)
		m.preview.GotoBottom()
		m.previewKey = msg.key
		return m, nil

	case framesLoadedMsg:
		m.frames = framePicker{files: msg.files, err: msg.err}
		return m, nil

	case frameResolvedMsg:
		if msg.gen != m.inspectGen {
			return m, nil // superseded or cancelled
		}
		if msg.err != nil {
			m.notice = &chat.Notice{Level: chat.NoticeError, Text: "Cannot resolve frame: " + msg.err.Error()}
			return m, nil
		}
		m.notice = nil
		m.insp = newInspector(msg.gen, msg.frame, m.opts.PollInterval)
		m.mode = modeInspect
		return m, m.insp.tick()

	case inspectTickMsg:
		if m.insp == nil || msg.gen != m.insp.gen {
			return m, nil // inspector closed, stop polling
		}
		m.insp.pos = m.insp.tracker.Poll()
		return m, m.insp.tick()

	case submitDoneMsg:
		return m.applySubmitResult(msg), nil
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch {
	case key.Matches(msg, keys.Back):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Enter):
		text := m.input.Value()
		m.input.Reset()
		return m, m.chatCmd(func(c *chat.Controller) error {
			return c.Submit(m.ctx, text)
		})

	case key.Matches(msg, keys.Up):
		return m, m.switchTo(m.cursor - 1)

	case key.Matches(msg, keys.Down):
		return m, m.switchTo(m.cursor + 1)

	case key.Matches(msg, keys.NewChat):
		m.mode = modePrompt
		m.prompt.Reset()
		m.input.Blur()
		return m, m.prompt.Focus()

	case key.Matches(msg, keys.Frames):
		m.mode = modeFrames
		m.frames = framePicker{loading: true}
		return m, loadFramesCmd(m.opts.KeyframeRoot)

	case key.Matches(msg, keys.Inspect):
		img, ok := m.state.Active.LastImage()
		if !ok {
			m.notice = &chat.Notice{Level: chat.NoticeError, Text: "No image in this chat; pick one with C-g"}
			return m, nil
		}
		return m.startInspect(img.Path)

	case key.Matches(msg, keys.PreviewUp):
		m.preview.LineUp(m.panelHeight() / 2)
		return m, nil

	case key.Matches(msg, keys.PreviewDn):
		m.preview.LineDown(m.panelHeight() / 2)
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.preview.LineUp(m.panelHeight())
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.preview.LineDown(m.panelHeight())
		return m, nil
	}

	// Pass remaining keys to text input
	var tiCmd tea.Cmd
	m.input, tiCmd = m.input.Update(msg)
	cmds = append(cmds, tiCmd)
	return m, tea.Batch(cmds...)
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.mode = modeChat
		m.prompt.Blur()
		return m, m.input.Focus()

	case key.Matches(msg, keys.Enter):
		name := m.prompt.Value()
		m.mode = modeChat
		m.prompt.Blur()
		return m, tea.Batch(m.input.Focus(), m.chatCmd(func(c *chat.Controller) error {
			return c.NewSession(m.ctx, name)
		}))
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || len(m.state.Sessions) == 0 {
		return m, nil
	}

	region, itemIdx := m.hitTest(msg.X, msg.Y)

	switch {
	case region == regionList && msg.Button == tea.MouseButtonWheelUp:
		if m.listOffset > 0 {
			m.listOffset--
		}
		return m, nil

	case region == regionList && msg.Button == tea.MouseButtonWheelDown:
		visibleItems := m.panelHeight() / linesPerItem
		maxOffset := len(m.state.Sessions) - visibleItems
		if maxOffset < 0 {
			maxOffset = 0
		}
		if m.listOffset < maxOffset {
			m.listOffset++
		}
		return m, nil

	case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if m.mode == modeChat && itemIdx != m.cursor {
			return m, m.switchTo(itemIdx)
		}
		return m, nil

	case region == regionPreview && m.mode == modeChat &&
		(msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
		var vpCmd tea.Cmd
		m.preview, vpCmd = m.preview.Update(msg)
		return m, vpCmd
	}

	return m, nil
}

// switchTo activates the session at list index idx.
func (m model) switchTo(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.state.Sessions) {
		return nil
	}
	id := m.state.Sessions[idx].ID
	return m.chatCmd(func(c *chat.Controller) error {
		return c.Switch(m.ctx, id)
	})
}

// startInspect resolves imagePath and opens the inspector when it arrives.
// Only the latest request is honoured.
func (m model) startInspect(imagePath string) (tea.Model, tea.Cmd) {
	m.inspectGen++
	gen := m.inspectGen
	m.notice = &chat.Notice{Level: chat.NoticeInfo, Text: "Resolving " + imagePath + "..."}
	return m, resolveFrameCmd(m, gen, imagePath)
}

func (m *model) applyChatUpdate(msg chatUpdatedMsg) {
	if msg.state != nil {
		m.state = *msg.state
		for i, s := range m.state.Sessions {
			if s.ID == m.state.ActiveID {
				m.cursor = i
				break
			}
		}
		m.adjustListScroll(m.panelHeight())
		m.notice = nil
	}
	if n := len(msg.notices); n > 0 {
		last := msg.notices[n-1]
		m.notice = &last
	}
}

func (m model) applySubmitResult(msg submitDoneMsg) model {
	if m.insp == nil || msg.gen != m.insp.gen {
		m.log.Info("tui", "dropped submission result for closed inspector", map[string]interface{}{
			"gen": msg.gen,
		})
		return m
	}
	in := m.insp
	if msg.err != nil {
		if errors.Is(msg.err, submit.ErrInFlight) {
			return m
		}
		in.outcome = &submit.Outcome{Err: msg.err}
		in.status = "❌ Error: " + msg.err.Error()
		return m
	}
	o := msg.outcome
	in.outcome = &o
	in.status = o.Summary()
	m.log.Info("tui", "submission resolved", map[string]interface{}{
		"video_id": o.Request.VideoID,
		"frame":    o.Request.Frame,
		"verdict":  string(o.Verdict),
		"error":    o.Err,
	})
	return m
}

func (m model) loadCurrentPreview() tea.Cmd {
	if m.state.Active.ID == "" {
		return nil
	}
	if previewCacheKey(m.state.Active, m.previewWidth()) == m.previewKey {
		return nil // already showing this transcript
	}
	return loadPreviewCmd(m.state.Active, m.previewWidth())
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	var inputRow string
	switch m.mode {
	case modePrompt:
		inputRow = m.prompt.View()
	case modeFrames:
		inputRow = styleTitle.Render("Pick a keyframe (enter attach, C-o inspect, esc back)")
	case modeInspect:
		inputRow = styleTitle.Render("Frame inspector")
	default:
		inputRow = m.input.View()
	}

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	var right string
	switch m.mode {
	case modeFrames:
		right = m.renderFrames(previewW, panelH)
	case modeInspect:
		right = m.renderInspector(previewW)
	default:
		m.preview.Width = previewW
		m.preview.Height = panelH
		right = m.preview.View()
	}
	rightPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(right)

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

// helper methods

func (m model) listWidth() int {
	if m.width <= 0 {
		return 30
	}
	// 30% for list, minus border padding
	w := m.width*30/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 70
	}
	// 70% for transcript, minus border padding
	w := m.width*70/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	pH := m.panelHeight()
	contentYStart := 2 // input row (1) + top border (1)
	contentYEnd := contentYStart + pH - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		itemIndex := m.listOffset + (relY / linesPerItem)
		return regionList, itemIndex
	}

	if x > listBoxRight+1 {
		return regionPreview, -1
	}

	return regionNone, -1
}

func (m model) statusBar() string {
	if m.notice != nil {
		if m.notice.Level == chat.NoticeError {
			return styleNoticeError.Render(m.notice.Text)
		}
		return styleNoticeInfo.Render(m.notice.Text)
	}

	var parts []string
	switch m.mode {
	case modeInspect:
		for _, b := range []key.Binding{
			inspectorKeys.PlayPause, inspectorKeys.StepBack, inspectorKeys.StepFwd,
			inspectorKeys.SkipBack, inspectorKeys.SkipFwd, inspectorKeys.Submit,
			inspectorKeys.OpenURL, inspectorKeys.CopyURL, inspectorKeys.Close,
		} {
			parts = append(parts, b.Help().Key+" "+b.Help().Desc)
		}
	default:
		parts = append(parts, fmt.Sprintf("%d chats", len(m.state.Sessions)))
		for _, b := range []key.Binding{keys.Up, keys.Down, keys.NewChat, keys.Frames, keys.Inspect, keys.Quit} {
			parts = append(parts, b.Help().Key+" "+b.Help().Desc)
		}
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

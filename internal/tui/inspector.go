package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/framechat/internal/frame"
	"github.com/Zuo-Peng/framechat/internal/open"
	"github.com/Zuo-Peng/framechat/internal/render"
	"github.com/Zuo-Peng/framechat/internal/submit"
)

const (
	skipSeconds   = 5.0
	submitTimeout = 15 * time.Second
)

// frameResolvedMsg is sent when an inspect request finishes resolving.
type frameResolvedMsg struct {
	gen   int
	frame *frame.Frame
	err   error
}

// inspectTickMsg drives playback polling. Ticks from a closed inspector carry
// a stale gen and stop the loop.
type inspectTickMsg struct {
	gen int
}

type submitDoneMsg struct {
	gen     int
	outcome submit.Outcome
	err     error
}

// inspector is the frame modal: a virtual player positioned at the keyframe,
// the live position sampled from it, and the submit control.
type inspector struct {
	gen     int
	frame   *frame.Frame
	head    *frame.Playhead
	tracker *frame.Tracker
	pos     frame.Position
	control *submit.Control
	status  string
	outcome *submit.Outcome
}

func newInspector(gen int, f *frame.Frame, interval time.Duration) *inspector {
	head := frame.NewPlayhead(f.TimestampSeconds, f.FPS)
	initial := f.InitialPosition()
	return &inspector{
		gen:     gen,
		frame:   f,
		head:    head,
		tracker: frame.NewTracker(head, f.FPS, initial, interval),
		pos:     initial,
		control: &submit.Control{},
	}
}

func (in *inspector) tick() tea.Cmd {
	gen := in.gen
	return tea.Tick(in.tracker.Interval(), func(time.Time) tea.Msg {
		return inspectTickMsg{gen: gen}
	})
}

// link is the watch URL at the current live position.
func (in *inspector) link() string {
	return in.frame.LinkAt(float64(in.pos.TimestampMs) / 1000)
}

func resolveFrameCmd(m model, gen int, imagePath string) tea.Cmd {
	resolver := m.opts.Resolver
	return func() tea.Msg {
		if resolver == nil {
			return frameResolvedMsg{gen: gen, err: errors.New("no frame data source configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		f, err := resolver.Resolve(ctx, imagePath)
		return frameResolvedMsg{gen: gen, frame: f, err: err}
	}
}

func submitCmd(backend submit.Backend, control *submit.Control, gen int, req submit.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		o, err := control.Submit(ctx, backend, req)
		return submitDoneMsg{gen: gen, outcome: o, err: err}
	}
}

// updateInspector handles keys while the inspector is open.
func (m model) updateInspector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := m.insp

	switch {
	case key.Matches(msg, inspectorKeys.Close):
		m.closeInspector()
		return m, nil

	case key.Matches(msg, inspectorKeys.PlayPause):
		in.head.Toggle()
		in.pos = in.tracker.Poll()

	case key.Matches(msg, inspectorKeys.StepBack):
		in.head.Step(-1)
		in.pos = in.tracker.Poll()

	case key.Matches(msg, inspectorKeys.StepFwd):
		in.head.Step(1)
		in.pos = in.tracker.Poll()

	case key.Matches(msg, inspectorKeys.SkipBack):
		in.head.Skip(-skipSeconds)
		in.pos = in.tracker.Poll()

	case key.Matches(msg, inspectorKeys.SkipFwd):
		in.head.Skip(skipSeconds)
		in.pos = in.tracker.Poll()

	case key.Matches(msg, inspectorKeys.Submit):
		if in.control.State() == submit.StateSubmitting {
			return m, nil // control is disabled while a submission is in flight
		}
		if m.opts.Backend == nil {
			in.status = "❌ Error: no submit endpoint configured"
			return m, nil
		}
		ms := in.pos.TimestampMs
		req := submit.Request{
			VideoID:     in.frame.VideoID,
			Frame:       in.pos.FrameIndex,
			FPS:         in.frame.FPS,
			TimestampMs: &ms,
		}
		in.status = fmt.Sprintf("⏳ Submitting frame %d (%dms)...", req.Frame, ms)
		in.outcome = nil
		return m, submitCmd(m.opts.Backend, in.control, in.gen, req)

	case key.Matches(msg, inspectorKeys.OpenURL):
		if err := open.URL(in.link()); err != nil {
			in.status = "❌ Error: " + err.Error()
		}

	case key.Matches(msg, inspectorKeys.CopyURL):
		link := in.link()
		if err := clipboard.WriteAll(link); err != nil {
			in.status = "Link: " + link
		} else {
			in.status = "Copied to clipboard: " + link
		}
	}
	return m, nil
}

func (m *model) closeInspector() {
	m.insp = nil
	m.mode = modeChat
	m.inspectGen++
}

// renderInspector renders the inspector panel content.
func (m model) renderInspector(width int) string {
	in := m.insp
	f := in.frame

	row := func(label, value string) string {
		return styleLabel.Render(label) + value
	}

	state := "⏸ paused"
	if in.head.Playing() {
		state = "▶ playing"
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("Frame %s / %s", f.VideoID, f.Name)))
	b.WriteString("\n\n")
	b.WriteString(row("Image", render.Truncate(f.Path, width-12)) + "\n")
	b.WriteString(row("Video", render.Truncate(f.WatchURL, width-12)) + "\n")
	b.WriteString(row("FPS", fmt.Sprintf("%g", f.FPS)) + "\n")
	b.WriteString(row("Keyframe", fmt.Sprintf("#%d at %.2fs", f.Index, f.TimestampSeconds)) + "\n")
	b.WriteString("\n")
	b.WriteString(row("Playback", state) + "\n")
	b.WriteString(row("Live frame", styleListSelected.Render(fmt.Sprintf("%d", in.pos.FrameIndex))) + "\n")
	b.WriteString(row("Timestamp", fmt.Sprintf("%dms", in.pos.TimestampMs)) + "\n")
	b.WriteString(row("Link", render.Truncate(in.link(), width-12)) + "\n")
	b.WriteString("\n")

	submitLabel := "[ Submit ]"
	if in.control.State() == submit.StateSubmitting {
		submitLabel = "[ Submitting... ]"
	}
	b.WriteString(styleInputPrompt.Render(submitLabel) + "\n")

	if in.status != "" {
		style := styleVerdictOther
		if in.outcome != nil {
			switch {
			case in.outcome.Err != nil || in.outcome.Verdict == submit.VerdictWrong:
				style = styleVerdictWrong
			case in.outcome.Verdict == submit.VerdictCorrect:
				style = styleVerdictCorrect
			}
		}
		b.WriteString("\n" + style.Render(in.status) + "\n")
	}
	return b.String()
}

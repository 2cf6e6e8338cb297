package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/framechat/internal/chat"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorSystem  = "\033[1;32m" // bold green
	colorImage   = "\033[1;35m" // bold magenta
	colorDim     = "\033[2m"
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	Tail  int    // render only the last Tail messages (0 = all)
	Width int    // wrap width (0 = no wrap)
	Color bool   // emit ANSI colors
	Query string // terms to highlight
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	for _, term := range strings.Fields(query) {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// Truncate shortens s to width visible columns, adding "..." when cut.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

type painter struct{ color bool }

func (p painter) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + colorReset
}

// MessageBody is the plain text shown for a message. Image messages render
// as a reference to the keyframe.
func MessageBody(m chat.Message) string {
	if m.Image == nil {
		return m.Text
	}
	img := fmt.Sprintf("[image] %s #%s  %s", m.Image.VideoID, m.Image.Keyframe, m.Image.Path)
	if m.Text != "" {
		return img + "\n" + m.Text
	}
	return img
}

// Transcript renders a session as a scrollable transcript.
func Transcript(sess chat.Session, opts Options) string {
	p := painter{color: opts.Color}
	var b strings.Builder

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
		}
	}

	writeLine(p.paint(colorDim, fmt.Sprintf("--- %s [%s] %d messages ---", sess.Name, sess.ID, len(sess.Messages))))

	msgs := sess.Messages
	if opts.Tail > 0 && len(msgs) > opts.Tail {
		writeLine(p.paint(colorDim, fmt.Sprintf("... (%d messages before) ...", len(msgs)-opts.Tail)))
		msgs = msgs[len(msgs)-opts.Tail:]
	}
	if len(msgs) == 0 {
		writeLine(p.paint(colorDim, "(empty chat)"))
		return b.String()
	}

	for _, m := range msgs {
		var label, code string
		switch {
		case m.Image != nil:
			label, code = "IMAGE", colorImage
		case m.Role == chat.RoleSystem:
			label, code = "SYS", colorSystem
		default:
			label, code = "USER", colorUser
		}
		ts := ""
		if !m.CreatedAt.IsZero() {
			ts = m.CreatedAt.Local().Format("2006-01-02 15:04:05")
		}
		writeLine(p.paint(code, label+" >") + " " + p.paint(colorDim, ts))

		text := MessageBody(m)
		if opts.Color {
			text = highlightKeywords(text, opts.Query)
		}
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
	}
	return b.String()
}

// SessionList renders one line per session, marking the active one.
func SessionList(sessions []chat.Session, activeID string, width int) string {
	var b strings.Builder
	for _, s := range sessions {
		mark := "  "
		if s.ID == activeID {
			mark = "* "
		}
		line := fmt.Sprintf("%s%-20s %4d msgs  %s", mark, Truncate(s.Name, 20), len(s.Messages), s.ID)
		b.WriteString(Truncate(line, width))
		b.WriteString("\n")
	}
	return b.String()
}

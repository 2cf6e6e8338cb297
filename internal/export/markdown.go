package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Zuo-Peng/framechat/internal/chat"
)

const timeLayout = "2006-01-02 15:04:05"

// MarkdownExporter exports sessions as a readable transcript.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(session *chat.Session, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(session.Name))
	fmt.Fprintf(&b, "**ID:** %s  \n", session.ID)
	if !session.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "**Created:** %s  \n", session.CreatedAt.UTC().Format(timeLayout))
	}
	fmt.Fprintf(&b, "**Messages:** %d\n\n", len(session.Messages))
	b.WriteString("---\n\n")

	for i, msg := range session.Messages {
		actor := "User"
		if msg.Role == chat.RoleSystem {
			actor = "System"
		}
		timestamp := ""
		if !msg.CreatedAt.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.CreatedAt.UTC().Format(timeLayout))
		}
		fmt.Fprintf(&b, "**%s:**%s\n\n", actor, timestamp)

		if img := msg.Image; img != nil {
			fmt.Fprintf(&b, "![%s #%s](%s)\n\n", img.VideoID, img.Keyframe, img.Path)
			fmt.Fprintf(&b, "Video ID: %s  \nKeyframe: %s\n\n", img.VideoID, img.Keyframe)
		}
		if msg.Text != "" {
			fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(msg.Text))
		}

		if i < len(session.Messages)-1 {
			b.WriteString("---\n\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks.
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	inCodeBlock := false

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			inCodeBlock = !inCodeBlock
		case !inCodeBlock:
			line = strings.ReplaceAll(line, "**", `\*\*`)
			lines[i] = strings.ReplaceAll(line, "__", `\_\_`)
		}
	}
	return strings.Join(lines, "\n")
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Zuo-Peng/framechat/internal/chat"
)

// JSONExporter writes the session as one indented document.
type JSONExporter struct{}

func (e *JSONExporter) Export(session *chat.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(session)
}

func (e *JSONExporter) Extension() string {
	return "json"
}

// JSONLExporter writes one message per line, tagged with the session id.
type JSONLExporter struct{}

type jsonlLine struct {
	Session   string         `json:"session"`
	Seq       int            `json:"seq"`
	Role      chat.Role      `json:"role"`
	Text      string         `json:"text,omitempty"`
	Image     *chat.ImageRef `json:"image,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

func (e *JSONLExporter) Export(session *chat.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, msg := range session.Messages {
		line := jsonlLine{
			Session: session.ID,
			Seq:     i,
			Role:    msg.Role,
			Text:    msg.Text,
			Image:   msg.Image,
		}
		if !msg.CreatedAt.IsZero() {
			ts := msg.CreatedAt
			line.CreatedAt = &ts
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("encode message %d: %w", i, err)
		}
	}
	return nil
}

func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

package export

import (
	"fmt"
	"io"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
	"github.com/Zuo-Peng/framechat/internal/chat"
)

// Exporter writes one chat session in a file format.
type Exporter interface {
	Export(session *chat.Session, w io.Writer) error
	Extension() string
}

// NewExporter returns the exporter for format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (supported: jsonl, md, yaml, json)", apperrors.ErrInvalidInput, format)
	}
}

// FileName is the default output name for a session.
func FileName(session *chat.Session, e Exporter) string {
	return fmt.Sprintf("chat_%s.%s", session.ID, e.Extension())
}

package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
	"github.com/Zuo-Peng/framechat/internal/chat"
)

func sampleSession() *chat.Session {
	at := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)
	return &chat.Session{
		ID:        "chat_1",
		Name:      "Case **A**",
		CreatedAt: at,
		Messages: []chat.Message{
			{Role: chat.RoleUser, Text: "red car near bridge", CreatedAt: at},
			{Role: chat.RoleUser, Image: &chat.ImageRef{Path: "kf/L01_V001/000120.webp", VideoID: "L01_V001", Keyframe: "000120"}, CreatedAt: at},
			{Role: chat.RoleSystem, Text: "✅ CORRECT"},
		},
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{format: "jsonl", wantExt: "jsonl"},
		{format: "md", wantExt: "md"},
		{format: "markdown", wantExt: "md"},
		{format: "yaml", wantExt: "yaml"},
		{format: "yml", wantExt: "yaml"},
		{format: "json", wantExt: "json"},
		{format: "xml", wantErr: true},
		{format: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			e, err := NewExporter(tt.format)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, e.Extension())
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "chat_chat_1.md", FileName(sampleSession(), &MarkdownExporter{}))
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONExporter{}).Export(sampleSession(), &buf))

	var got chat.Session
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleSession(), got)
}

func TestJSONLExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONLExporter{}).Export(sampleSession(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "chat_1", second["session"])
	assert.EqualValues(t, 1, second["seq"])
	assert.Equal(t, "L01_V001", second["image"].(map[string]interface{})["video_id"])

	var third map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))
	assert.NotContains(t, third, "created_at")
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLExporter{}).Export(sampleSession(), &buf))

	var got chat.Session
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Case **A**", got.Name)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "000120", got.Messages[1].Image.Keyframe)
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownExporter{}).Export(sampleSession(), &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `# Case \*\*A\*\*`))
	assert.Contains(t, out, "**Messages:** 3")
	assert.Contains(t, out, "**User:** (2025-08-01 09:30:00)\n\nred car near bridge")
	assert.Contains(t, out, "![L01_V001 #000120](kf/L01_V001/000120.webp)")
	assert.Contains(t, out, "**System:**\n\n✅ CORRECT")
	assert.Equal(t, 2, strings.Count(out, "---\n\n")-1)
}

func TestEscapeMarkdown_KeepsCodeBlocks(t *testing.T) {
	in := "a **b**\n```\nx **y**\n```"
	assert.Equal(t, "a \\*\\*b\\*\\*\n```\nx **y**\n```", escapeMarkdown(in))
}

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{input: "", want: Command{Kind: CmdNone}},
		{input: "   ", want: Command{Kind: CmdNone}},
		{input: `\clear`, want: Command{Kind: CmdClear}},
		{input: `  \clear  `, want: Command{Kind: CmdClear}},
		{input: `\clear_all`, want: Command{Kind: CmdClearAll}},
		{input: `\new work`, want: Command{Kind: CmdNew, Arg: "work"}},
		{input: `\new   two words `, want: Command{Kind: CmdNew, Arg: "two words"}},
		{input: `\new`, want: Command{Kind: CmdMessage, Arg: `\new`}},
		{input: `\delete`, want: Command{Kind: CmdDelete}},
		{input: `\delete work`, want: Command{Kind: CmdDelete, Arg: "work"}},
		{input: `\clearx`, want: Command{Kind: CmdMessage, Arg: `\clearx`}},
		{input: ` hello there `, want: Command{Kind: CmdMessage, Arg: "hello there"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.input))
		})
	}
}

func TestCommandKindString(t *testing.T) {
	assert.Equal(t, "clear_all", CmdClearAll.String())
	assert.Equal(t, "none", CommandKind(99).String())
}

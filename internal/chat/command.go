package chat

import "strings"

type CommandKind int

const (
	CmdNone CommandKind = iota // empty input, ignored
	CmdMessage
	CmdClear
	CmdClearAll
	CmdNew
	CmdDelete
)

func (k CommandKind) String() string {
	switch k {
	case CmdMessage:
		return "message"
	case CmdClear:
		return "clear"
	case CmdClearAll:
		return "clear_all"
	case CmdNew:
		return "new"
	case CmdDelete:
		return "delete"
	default:
		return "none"
	}
}

// Command is one interpreted line of user input. Arg carries the session name
// for CmdNew/CmdDelete (empty for a bare \delete) and the text for CmdMessage.
type Command struct {
	Kind CommandKind
	Arg  string
}

// ParseCommand interprets raw input. Input is trimmed first; a bare "\new"
// or anything not matching a command is an ordinary message.
func ParseCommand(input string) Command {
	msg := strings.TrimSpace(input)
	switch {
	case msg == "":
		return Command{Kind: CmdNone}
	case msg == `\clear`:
		return Command{Kind: CmdClear}
	case msg == `\clear_all`:
		return Command{Kind: CmdClearAll}
	case strings.HasPrefix(msg, `\new `):
		if name := strings.TrimSpace(msg[len(`\new `):]); name != "" {
			return Command{Kind: CmdNew, Arg: name}
		}
	case msg == `\delete`:
		return Command{Kind: CmdDelete}
	case strings.HasPrefix(msg, `\delete `):
		return Command{Kind: CmdDelete, Arg: strings.TrimSpace(msg[len(`\delete `):])}
	}
	return Command{Kind: CmdMessage, Arg: msg}
}

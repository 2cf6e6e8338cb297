package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Quit      key.Binding
	Back      key.Binding
	PreviewUp key.Binding
	PreviewDn key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	NewChat   key.Binding
	Frames    key.Binding
	Inspect   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("up/C-k", "prev chat"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("dn/C-j", "next chat"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	PreviewUp: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("C-u", "transcript up"),
	),
	PreviewDn: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "transcript down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "transcript pgup"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "transcript pgdn"),
	),
	NewChat: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("C-n", "new chat"),
	),
	Frames: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("C-g", "keyframes"),
	),
	Inspect: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "inspect last image"),
	),
}

type inspectorKeyMap struct {
	PlayPause key.Binding
	StepBack  key.Binding
	StepFwd   key.Binding
	SkipBack  key.Binding
	SkipFwd   key.Binding
	Submit    key.Binding
	OpenURL   key.Binding
	CopyURL   key.Binding
	Close     key.Binding
}

var inspectorKeys = inspectorKeyMap{
	PlayPause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "play/pause"),
	),
	StepBack: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("left", "-1 frame"),
	),
	StepFwd: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("right", "+1 frame"),
	),
	SkipBack: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "-5s"),
	),
	SkipFwd: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "+5s"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter", "s"),
		key.WithHelp("enter/s", "submit"),
	),
	OpenURL: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open video"),
	),
	CopyURL: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "close"),
	),
}

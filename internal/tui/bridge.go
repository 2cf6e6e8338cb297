package tui

import (
	"sync"

	"github.com/Zuo-Peng/framechat/internal/chat"
)

// chatUpdatedMsg carries what the controller pushed while a command ran.
type chatUpdatedMsg struct {
	state   *chat.State
	notices []chat.Notice
}

// bridge is the chat.View handed to the controller. Controller calls happen
// inside tea.Cmd goroutines, so the bridge buffers them until the command
// returns and drains them into a single message for Update.
type bridge struct {
	mu      sync.Mutex
	state   *chat.State
	notices []chat.Notice
}

func (b *bridge) Refresh(s chat.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = &s
}

func (b *bridge) Notify(n chat.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
}

func (b *bridge) drain() chatUpdatedMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := chatUpdatedMsg{state: b.state, notices: b.notices}
	b.state = nil
	b.notices = nil
	return msg
}

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
	"github.com/Zuo-Peng/framechat/internal/logging"
)

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is transient in-band feedback. It is shown by the view but never
// written into a session.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// State is what a view renders after every change.
type State struct {
	ActiveID string
	Active   Session
	Sessions []Session
}

// View is the presentation side of the chat widget.
type View interface {
	Refresh(State)
	Notify(Notice)
}

// Controller interprets user input against a Store and keeps a View in sync.
// Failures are reported through View.Notify and also returned so
// non-interactive callers can set an exit status.
type Controller struct {
	store *Store
	view  View
	log   *logging.Logger
}

func NewController(store *Store, view View, log *logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{store: store, view: view, log: log}
}

func (c *Controller) Store() *Store {
	return c.store
}

// Render pushes the current state to the view.
func (c *Controller) Render() {
	snap := c.store.Snapshot()
	state := State{ActiveID: snap.ActiveID, Sessions: snap.Sessions}
	for _, s := range snap.Sessions {
		if s.ID == snap.ActiveID {
			state.Active = s
			break
		}
	}
	c.view.Refresh(state)
}

func (c *Controller) fail(err error, text string) error {
	if apperrors.Kind(err) == nil {
		c.log.Error("chat", "store operation failed", map[string]interface{}{"error": err})
	}
	c.view.Notify(Notice{Level: NoticeError, Text: text})
	return err
}

// Submit handles one line of user input.
func (c *Controller) Submit(ctx context.Context, input string) error {
	cmd := ParseCommand(input)

	switch cmd.Kind {
	case CmdNone:
		return nil

	case CmdClear:
		if err := c.store.ClearActive(ctx); err != nil {
			return c.fail(err, "Cannot clear chat: "+err.Error())
		}

	case CmdClearAll:
		if err := c.store.ClearAll(ctx); err != nil {
			return c.fail(err, "Cannot clear chats: "+err.Error())
		}

	case CmdNew:
		return c.NewSession(ctx, cmd.Arg)

	case CmdDelete:
		ref := cmd.Arg
		if ref == "" {
			ref = c.store.ActiveID()
		}
		if _, err := c.store.DeleteSession(ctx, ref); err != nil {
			switch {
			case errors.Is(err, ErrDefaultSession):
				return c.fail(err, "Cannot delete the default chat")
			case errors.Is(err, apperrors.ErrNotFound):
				return c.fail(err, "Cannot find or delete chat: "+ref)
			default:
				return c.fail(err, "Cannot delete chat: "+err.Error())
			}
		}

	case CmdMessage:
		if err := c.store.AppendMessage(ctx, c.store.ActiveID(), Message{Role: RoleUser, Text: cmd.Arg}); err != nil {
			return c.fail(err, "Cannot send message: "+err.Error())
		}
	}

	c.Render()
	return nil
}

// NewSession creates and activates a session named name.
func (c *Controller) NewSession(ctx context.Context, name string) error {
	if _, err := c.store.CreateSession(ctx, name); err != nil {
		switch {
		case errors.Is(err, ErrNameTaken):
			return c.fail(err, fmt.Sprintf("Cannot create chat: Name %q already exists", name))
		case errors.Is(err, ErrEmptyName):
			return c.fail(err, "Cannot create chat: name is empty")
		default:
			return c.fail(err, "Cannot create chat: "+err.Error())
		}
	}
	c.Render()
	return nil
}

// Switch activates the session identified by id or name.
func (c *Controller) Switch(ctx context.Context, ref string) error {
	id, ok := c.store.Resolve(ref)
	if !ok {
		err := &SessionError{Op: "switch", Ref: ref, Err: apperrors.ErrNotFound}
		return c.fail(err, "Cannot find chat: "+ref)
	}
	if err := c.store.SwitchSession(ctx, id); err != nil {
		return c.fail(err, "Cannot switch chat: "+err.Error())
	}
	c.Render()
	return nil
}

// AttachImage appends a keyframe picked from the grid to the active session.
func (c *Controller) AttachImage(ctx context.Context, img ImageRef) error {
	msg := Message{Role: RoleUser, Image: &img}
	if err := c.store.AppendMessage(ctx, c.store.ActiveID(), msg); err != nil {
		return c.fail(err, "Cannot attach image: "+err.Error())
	}
	c.Render()
	return nil
}

// Import merges a snapshot produced by the legacy importer.
func (c *Controller) Import(ctx context.Context, snap *Snapshot) (ImportStats, error) {
	stats, err := c.store.Import(ctx, snap)
	if err != nil {
		return stats, c.fail(err, "Cannot import chats: "+err.Error())
	}
	text := fmt.Sprintf("Imported %d chats, %d messages", stats.Sessions, stats.Messages)
	if len(stats.Skipped) > 0 {
		text += fmt.Sprintf(" (skipped %d with existing names)", len(stats.Skipped))
	}
	c.view.Notify(Notice{Level: NoticeInfo, Text: text})
	c.Render()
	return stats, nil
}

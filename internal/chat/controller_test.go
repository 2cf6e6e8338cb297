package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

func newTestController(t *testing.T) (*Controller, *recordingView, *memBackend) {
	t.Helper()
	b := &memBackend{}
	s, err := openTestStore(b)
	require.NoError(t, err)
	v := &recordingView{}
	return NewController(s, v, nil), v, b
}

func TestController_Message(t *testing.T) {
	ctx := context.Background()
	c, v, _ := newTestController(t)

	require.NoError(t, c.Submit(ctx, "  find the red car "))
	state := v.last()
	require.Len(t, state.Active.Messages, 1)
	assert.Equal(t, "find the red car", state.Active.Messages[0].Text)
	assert.Equal(t, RoleUser, state.Active.Messages[0].Role)

	require.NoError(t, c.Submit(ctx, "   "))
	assert.Len(t, v.states, 1, "empty input does not re-render")
}

func TestController_NewAndDuplicate(t *testing.T) {
	ctx := context.Background()
	c, v, _ := newTestController(t)

	require.NoError(t, c.Submit(ctx, `\new work`))
	assert.Equal(t, "work", v.last().Active.Name)
	assert.Len(t, v.last().Sessions, 2)

	err := c.Submit(ctx, `\new work`)
	assert.ErrorIs(t, err, ErrNameTaken)
	require.Len(t, v.notices, 1)
	assert.Equal(t, NoticeError, v.notices[0].Level)
	assert.Equal(t, `Cannot create chat: Name "work" already exists`, v.notices[0].Text)
	assert.Len(t, c.Store().Sessions(), 2)

	// notices never end up in the transcript
	assert.Empty(t, c.Store().Active().Messages)
}

func TestController_BareNewIsMessage(t *testing.T) {
	ctx := context.Background()
	c, v, _ := newTestController(t)

	require.NoError(t, c.Submit(ctx, `\new`))
	assert.Len(t, v.last().Sessions, 1)
	assert.Equal(t, `\new`, v.last().Active.Messages[0].Text)
}

func TestController_Delete(t *testing.T) {
	ctx := context.Background()
	c, v, _ := newTestController(t)
	require.NoError(t, c.Submit(ctx, `\new a`))
	require.NoError(t, c.Submit(ctx, `\new b`))

	require.NoError(t, c.Submit(ctx, `\delete a`))
	assert.Len(t, v.last().Sessions, 2)
	assert.Equal(t, "b", v.last().Active.Name)

	// bare delete removes the active one
	require.NoError(t, c.Submit(ctx, `\delete`))
	assert.Equal(t, DefaultSessionID, v.last().ActiveID)

	err := c.Submit(ctx, `\delete`)
	assert.ErrorIs(t, err, ErrDefaultSession)
	assert.Equal(t, "Cannot delete the default chat", v.notices[len(v.notices)-1].Text)

	err = c.Submit(ctx, `\delete ghost`)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "Cannot find or delete chat: ghost", v.notices[len(v.notices)-1].Text)
}

func TestController_ClearAndClearAll(t *testing.T) {
	ctx := context.Background()
	c, v, _ := newTestController(t)
	require.NoError(t, c.Submit(ctx, "hello"))
	require.NoError(t, c.Submit(ctx, `\new x`))
	require.NoError(t, c.Submit(ctx, "in x"))

	require.NoError(t, c.Submit(ctx, `\clear`))
	assert.Empty(t, v.last().Active.Messages)
	def, _ := c.Store().Session(DefaultSessionID)
	assert.Len(t, def.Messages, 1)

	require.NoError(t, c.Submit(ctx, `\clear_all`))
	state := v.last()
	require.Len(t, state.Sessions, 1)
	assert.Equal(t, DefaultSessionID, state.ActiveID)
	assert.Empty(t, state.Active.Messages)
}

func TestController_Switch(t *testing.T) {
	ctx := context.Background()
	c, v, _ := newTestController(t)
	require.NoError(t, c.Submit(ctx, `\new x`))

	require.NoError(t, c.Switch(ctx, DefaultSessionName))
	assert.Equal(t, DefaultSessionID, v.last().ActiveID)

	require.NoError(t, c.Switch(ctx, "x"))
	assert.Equal(t, "x", v.last().Active.Name)

	err := c.Switch(ctx, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "Cannot find chat: nope", v.notices[len(v.notices)-1].Text)
	assert.Equal(t, "x", c.Store().Active().Name)
}

func TestController_AttachImage(t *testing.T) {
	ctx := context.Background()
	c, v, _ := newTestController(t)

	img := ImageRef{Path: "data/keyframes/L02_V003/000450.webp", VideoID: "L02_V003", Keyframe: "000450"}
	require.NoError(t, c.AttachImage(ctx, img))

	msgs := v.last().Active.Messages
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Image)
	assert.Equal(t, img, *msgs[0].Image)
}

func TestController_PersistFailureNotifies(t *testing.T) {
	ctx := context.Background()
	c, v, b := newTestController(t)
	b.saveErr = errDiskFull

	err := c.Submit(ctx, "hello")
	assert.ErrorIs(t, err, errDiskFull)
	require.Len(t, v.notices, 1)
	assert.Contains(t, v.notices[0].Text, "disk full")
	assert.Empty(t, c.Store().Active().Messages)
}

func TestController_Import(t *testing.T) {
	ctx := context.Background()
	c, v, _ := newTestController(t)

	stats, err := c.Import(ctx, &Snapshot{Sessions: []Session{
		{ID: "chat_1", Name: "old", Messages: []Message{{Role: RoleUser, Text: "a"}}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, "Imported 1 chats, 1 messages", v.notices[0].Text)
	assert.Equal(t, NoticeInfo, v.notices[0].Level)
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

func TestOpen_FreshStore(t *testing.T) {
	b := &memBackend{}
	s, err := openTestStore(b)
	require.NoError(t, err)

	sessions := s.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, DefaultSessionID, sessions[0].ID)
	assert.Equal(t, DefaultSessionName, sessions[0].Name)
	assert.Equal(t, DefaultSessionID, s.ActiveID())
	assert.Equal(t, 0, b.saves, "nothing is written until the first mutation")
}

func TestOpen_CorruptDataReinitialises(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `<div class="message">hi</div>`},
		{name: "missing default", data: `{"sessions":[{"id":"chat_1","name":"a","messages":[]}],"active_id":"chat_1"}`},
		{name: "duplicate ids", data: `{"sessions":[{"id":"default","name":"Default Chat"},{"id":"default","name":"again"}]}`},
		{name: "bad role", data: `{"sessions":[{"id":"default","name":"Default Chat","messages":[{"role":"robot","text":"x"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &memBackend{data: []byte(tt.data)}
			s, err := openTestStore(b)
			require.NoError(t, err)

			require.Len(t, s.Sessions(), 1)
			assert.Equal(t, DefaultSessionID, s.ActiveID())
			assert.Empty(t, s.Active().Messages)

			stored := b.stored()
			require.NotNil(t, stored, "fresh state is written back")
			require.NoError(t, stored.Validate())
		})
	}
}

func TestOpen_BackendErrorIsReturned(t *testing.T) {
	b := &memBackend{loadErr: fmt.Errorf("dial redis: %w", apperrors.ErrFetch)}
	_, err := openTestStore(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFetch)
}

func TestOpen_RestoresActiveSession(t *testing.T) {
	b := &memBackend{}
	s, err := openTestStore(b)
	require.NoError(t, err)
	created, err := s.CreateSession(context.Background(), "work")
	require.NoError(t, err)

	reopened, err := openTestStore(b)
	require.NoError(t, err)
	assert.Equal(t, created.ID, reopened.ActiveID())
	assert.Len(t, reopened.Sessions(), 2)
}

func TestOpen_UnknownActiveFallsBackToDefault(t *testing.T) {
	b := &memBackend{data: []byte(`{"sessions":[{"id":"default","name":"Default Chat","messages":[]}],"active_id":"chat_gone"}`)}
	s, err := openTestStore(b)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionID, s.ActiveID())
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	b := &memBackend{}
	s, err := openTestStore(b)
	require.NoError(t, err)

	created, err := s.CreateSession(ctx, "  evening run  ")
	require.NoError(t, err)
	assert.Equal(t, "chat_1", created.ID)
	assert.Equal(t, "evening run", created.Name)
	assert.Equal(t, created.ID, s.ActiveID())
	assert.Equal(t, 1, b.saves)

	_, err = s.CreateSession(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateSession_DuplicateNameNeverMutates(t *testing.T) {
	ctx := context.Background()
	b := &memBackend{}
	s, err := openTestStore(b)
	require.NoError(t, err)

	_, err = s.CreateSession(ctx, "work")
	require.NoError(t, err)
	require.NoError(t, s.SwitchSession(ctx, DefaultSessionID))

	before := s.Snapshot()
	saves := b.saves

	for _, name := range []string{"work", "Default Chat"} {
		_, err := s.CreateSession(ctx, name)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNameTaken)
	}

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, saves, b.saves)
}

func TestDeleteSession_NeverRemovesDefault(t *testing.T) {
	ctx := context.Background()
	s, err := openTestStore(&memBackend{})
	require.NoError(t, err)

	for _, ref := range []string{DefaultSessionID, DefaultSessionName} {
		_, err := s.DeleteSession(ctx, ref)
		assert.ErrorIs(t, err, ErrDefaultSession, "ref %q", ref)
	}

	_, ok := s.Session(DefaultSessionID)
	assert.True(t, ok)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	s, err := openTestStore(&memBackend{})
	require.NoError(t, err)

	a, err := s.CreateSession(ctx, "a")
	require.NoError(t, err)
	b, err := s.CreateSession(ctx, "b")
	require.NoError(t, err)

	// by name, not active
	deleted, err := s.DeleteSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, a.ID, deleted.ID)
	assert.Equal(t, b.ID, s.ActiveID())

	// by id, active: falls back to default
	_, err = s.DeleteSession(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionID, s.ActiveID())

	_, err = s.DeleteSession(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var serr *SessionError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "delete", serr.Op)
	assert.Equal(t, "missing", serr.Ref)
}

func TestSwitchSession_RoundTripKeepsContent(t *testing.T) {
	ctx := context.Background()
	b := &memBackend{}
	s, err := openTestStore(b)
	require.NoError(t, err)

	x, err := s.CreateSession(ctx, "x")
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage(ctx, x.ID, Message{Text: "first"}))
	require.NoError(t, s.AppendMessage(ctx, x.ID, Message{Image: &ImageRef{Path: "keyframes/L01_V001/000120.webp", VideoID: "L01_V001", Keyframe: "000120"}}))
	before := s.Active()

	y, err := s.CreateSession(ctx, "y")
	require.NoError(t, err)
	require.NoError(t, s.SwitchSession(ctx, x.ID))
	require.NoError(t, s.SwitchSession(ctx, y.ID))
	require.NoError(t, s.SwitchSession(ctx, x.ID))

	assert.Equal(t, before, s.Active())
	require.Len(t, b.stored().Sessions[1].Messages, 2)
}

func TestSwitchSession_UnknownIDLeavesActive(t *testing.T) {
	ctx := context.Background()
	s, err := openTestStore(&memBackend{})
	require.NoError(t, err)
	created, err := s.CreateSession(ctx, "x")
	require.NoError(t, err)

	err = s.SwitchSession(ctx, "chat_nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, created.ID, s.ActiveID())
}

func TestAppendMessage(t *testing.T) {
	ctx := context.Background()
	s, err := openTestStore(&memBackend{})
	require.NoError(t, err)

	require.NoError(t, s.AppendMessage(ctx, DefaultSessionID, Message{Text: "hello"}))
	msgs := s.Active().Messages
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.False(t, msgs[0].CreatedAt.IsZero())

	assert.ErrorIs(t, s.AppendMessage(ctx, "chat_nope", Message{Text: "x"}), apperrors.ErrNotFound)
	assert.ErrorIs(t, s.AppendMessage(ctx, DefaultSessionID, Message{Text: "  "}), ErrEmptyMessage)
}

func TestClearActive(t *testing.T) {
	ctx := context.Background()
	s, err := openTestStore(&memBackend{})
	require.NoError(t, err)
	x, err := s.CreateSession(ctx, "x")
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage(ctx, x.ID, Message{Text: "one"}))
	require.NoError(t, s.AppendMessage(ctx, DefaultSessionID, Message{Text: "kept"}))

	require.NoError(t, s.ClearActive(ctx))

	assert.Empty(t, s.Active().Messages)
	assert.Equal(t, x.ID, s.ActiveID())
	def, _ := s.Session(DefaultSessionID)
	assert.Len(t, def.Messages, 1)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	b := &memBackend{}
	s, err := openTestStore(b)
	require.NoError(t, err)
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.CreateSession(ctx, name)
		require.NoError(t, err)
		require.NoError(t, s.AppendMessage(ctx, s.ActiveID(), Message{Text: name}))
	}
	require.NoError(t, s.AppendMessage(ctx, DefaultSessionID, Message{Text: "gone"}))

	require.NoError(t, s.ClearAll(ctx))

	sessions := s.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, DefaultSessionID, sessions[0].ID)
	assert.Empty(t, sessions[0].Messages)
	assert.Equal(t, DefaultSessionID, s.ActiveID())

	stored := b.stored()
	require.Len(t, stored.Sessions, 1)
	assert.Equal(t, DefaultSessionID, stored.ActiveID)
}

func TestMutation_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	b := &memBackend{}
	s, err := openTestStore(b)
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage(ctx, DefaultSessionID, Message{Text: "before"}))

	b.saveErr = errDiskFull
	_, err = s.CreateSession(ctx, "x")
	require.ErrorIs(t, err, errDiskFull)
	require.ErrorIs(t, s.ClearAll(ctx), errDiskFull)

	assert.Len(t, s.Sessions(), 1)
	assert.Len(t, s.Active().Messages, 1)
}

func TestReturnedSessionsAreCopies(t *testing.T) {
	ctx := context.Background()
	s, err := openTestStore(&memBackend{})
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage(ctx, DefaultSessionID, Message{Image: &ImageRef{VideoID: "L01_V001"}}))

	active := s.Active()
	active.Messages[0].Image.VideoID = "tampered"
	active.Messages = append(active.Messages, Message{Text: "x"})

	again := s.Active()
	require.Len(t, again.Messages, 1)
	assert.Equal(t, "L01_V001", again.Messages[0].Image.VideoID)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s, err := openTestStore(&memBackend{})
	require.NoError(t, err)
	_, err = s.CreateSession(ctx, "taken")
	require.NoError(t, err)
	activeBefore := s.ActiveID()

	stats, err := s.Import(ctx, &Snapshot{Sessions: []Session{
		{ID: DefaultSessionID, Name: DefaultSessionName, Messages: []Message{{Role: RoleUser, Text: "legacy default"}}},
		{ID: "chat_1700000000000", Name: "legacy", Messages: []Message{{Role: RoleUser, Text: "a"}, {Role: RoleSystem, Text: "b"}}},
		{ID: "chat_1700000000001", Name: "taken", Messages: []Message{{Role: RoleUser, Text: "dup"}}},
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, 3, stats.Messages)
	assert.Equal(t, []string{"taken"}, stats.Skipped)
	assert.Equal(t, activeBefore, s.ActiveID())

	id, ok := s.Resolve("legacy")
	require.True(t, ok)
	imported, _ := s.Session(id)
	assert.Len(t, imported.Messages, 2)

	def, _ := s.Session(DefaultSessionID)
	require.Len(t, def.Messages, 1)
	assert.Equal(t, "legacy default", def.Messages[0].Text)
}

func TestSessionLastImage(t *testing.T) {
	sess := Session{Messages: []Message{
		{Image: &ImageRef{Keyframe: "1"}},
		{Text: "x"},
		{Image: &ImageRef{Keyframe: "2"}},
		{Text: "y"},
	}}
	img, ok := sess.LastImage()
	require.True(t, ok)
	assert.Equal(t, "2", img.Keyframe)

	_, ok = Session{}.LastImage()
	assert.False(t, ok)
}

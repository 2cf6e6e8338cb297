package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/framechat/internal/chat"
)

func sampleSnapshot() *chat.Snapshot {
	t0 := time.Date(2025, 11, 2, 9, 0, 0, 0, time.UTC)
	return &chat.Snapshot{
		ActiveID: "chat_b",
		Sessions: []chat.Session{
			{ID: chat.DefaultSessionID, Name: chat.DefaultSessionName, Messages: []chat.Message{}, CreatedAt: t0},
			{ID: "chat_b", Name: "red car", CreatedAt: t0.Add(time.Minute), Messages: []chat.Message{
				{Role: chat.RoleUser, Text: "a red car turning left", CreatedAt: t0.Add(2 * time.Minute)},
				{Role: chat.RoleUser, Image: &chat.ImageRef{Path: "data/keyframes/L01_V001/000120.webp", VideoID: "L01_V001", Keyframe: "000120"}, CreatedAt: t0.Add(3 * time.Minute)},
				{Role: chat.RoleSystem, Text: "Submission result: CORRECT", CreatedAt: t0.Add(4 * time.Minute)},
			}},
		},
	}
}

// assertRoundTrip checks the contract every chat.Backend must honour.
func assertRoundTrip(t *testing.T, b chat.Backend) {
	t.Helper()
	ctx := context.Background()

	snap, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap, "empty backend loads nothing")

	want := sampleSnapshot()
	require.NoError(t, b.Save(ctx, want))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// a later save replaces everything
	smaller := &chat.Snapshot{ActiveID: chat.DefaultSessionID, Sessions: want.Sessions[:1]}
	require.NoError(t, b.Save(ctx, smaller))
	got, err = b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller, got)
}

func TestBackendsWithStore(t *testing.T) {
	ctx := context.Background()
	backends := map[string]func(t *testing.T) chat.Backend{
		"file": func(t *testing.T) chat.Backend {
			return NewFile(t.TempDir() + "/chats.json")
		},
		"sqlite": func(t *testing.T) chat.Backend {
			db, err := OpenSQLite(t.TempDir() + "/chats.db")
			require.NoError(t, err)
			return db
		},
	}

	for name, newBackend := range backends {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			defer b.Close()

			s, err := chat.Open(ctx, b)
			require.NoError(t, err)
			created, err := s.CreateSession(ctx, "night")
			require.NoError(t, err)
			require.NoError(t, s.AppendMessage(ctx, created.ID, chat.Message{Text: "boat"}))

			reopened, err := chat.Open(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, created.ID, reopened.ActiveID())
			assert.Equal(t, "boat", reopened.Active().Messages[0].Text)
		})
	}
}

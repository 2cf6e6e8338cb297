package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
	"github.com/Zuo-Peng/framechat/internal/chat"
)

func TestFile_RoundTrip(t *testing.T) {
	assertRoundTrip(t, NewFile(filepath.Join(t.TempDir(), "nested", "chats.json")))
}

func TestFile_EmptyFileLoadsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	snap, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFile_CorruptReinitialisesStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chats.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default":{"name":"Default Chat","messages":"<div>`), 0o644))

	b := NewFile(path)
	_, err := b.Load(ctx)
	require.ErrorIs(t, err, apperrors.ErrCorrupt)

	s, err := chat.Open(ctx, b)
	require.NoError(t, err)
	assert.Len(t, s.Sessions(), 1)

	snap, err := b.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, chat.DefaultSessionID, snap.ActiveID)
}

func TestFile_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b := NewFile(filepath.Join(dir, "chats.json"))
	require.NoError(t, b.Save(context.Background(), sampleSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chats.json", entries[0].Name())
}

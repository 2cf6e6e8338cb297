package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
)

func TestNewBackend(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		storeType StoreType
		opts      []Option
		wantType  interface{}
		wantErr   error
	}{
		{name: "file", storeType: StoreTypeFile, opts: []Option{WithPath(filepath.Join(dir, "c.json"))}, wantType: &File{}},
		{name: "sqlite", storeType: StoreTypeSQLite, opts: []Option{WithPath(filepath.Join(dir, "c.db"))}, wantType: &SQLite{}},
		{name: "redis", storeType: StoreTypeRedis, opts: []Option{WithRedisURL("redis://127.0.0.1:6379/2")}, wantType: &Redis{}},
		{name: "file without path", storeType: StoreTypeFile, wantErr: ErrInvalidConfig},
		{name: "redis without url", storeType: StoreTypeRedis, wantErr: ErrInvalidConfig},
		{name: "unknown", storeType: "mongo", wantErr: ErrInvalidStoreType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBackend(tt.storeType, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer b.Close()
			assert.IsType(t, tt.wantType, b)
		})
	}
}

func TestRedis_KeyDefaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	defer client.Close()

	assert.Equal(t, "framechat:chatHistory", NewRedis(client, "").Key())
	assert.Equal(t, "team:chats", NewRedis(client, "team:chats").Key())
}

func TestRedis_UnreachableIsFetchError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	b := NewRedis(client, "")
	defer b.Close()

	_, err := b.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFetch)

	err = b.Save(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, apperrors.ErrFetch)
}

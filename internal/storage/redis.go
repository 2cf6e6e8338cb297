package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Zuo-Peng/framechat/internal/apperrors"
	"github.com/Zuo-Peng/framechat/internal/chat"
)

const defaultRedisKey = "framechat:chatHistory"

// Redis keeps the encoded snapshot under a single key, the server-side
// counterpart of one localStorage entry. Keys never expire.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = defaultRedisKey
	}
	return &Redis{client: client, key: key}
}

func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		// plain host:port
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}

func (r *Redis) Key() string {
	return r.key
}

func (r *Redis) Load(ctx context.Context) (*chat.Snapshot, error) {
	val, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %v", apperrors.ErrFetch, r.key, err)
	}
	return chat.UnmarshalSnapshot(val)
}

func (r *Redis) Save(ctx context.Context, snap *chat.Snapshot) error {
	val, err := chat.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("marshal chat store: %w", err)
	}
	if err := r.client.Set(ctx, r.key, val, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", apperrors.ErrFetch, r.key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

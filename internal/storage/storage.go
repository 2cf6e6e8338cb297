package storage

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/Zuo-Peng/framechat/internal/chat"
)

// StoreType selects the backend that persists the chat snapshot.
type StoreType string

const (
	StoreTypeFile   StoreType = "file"
	StoreTypeSQLite StoreType = "sqlite"
	StoreTypeRedis  StoreType = "redis"
)

var (
	ErrInvalidConfig    = errors.New("invalid storage configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
)

// Option configures NewBackend.
type Option func(*backendConfig)

type backendConfig struct {
	path        string
	redisURL    string
	redisKey    string
	redisClient *redis.Client
}

// WithPath sets the file or database path for the file and sqlite backends.
func WithPath(path string) Option {
	return func(c *backendConfig) { c.path = path }
}

// WithRedisURL sets the connection URL of the redis backend.
func WithRedisURL(url string) Option {
	return func(c *backendConfig) { c.redisURL = url }
}

// WithRedisKey sets the key holding the snapshot.
func WithRedisKey(key string) Option {
	return func(c *backendConfig) { c.redisKey = key }
}

// WithRedisClient reuses an existing client instead of dialing redisURL.
func WithRedisClient(client *redis.Client) Option {
	return func(c *backendConfig) { c.redisClient = client }
}

// NewBackend builds the chat.Backend for storeType.
func NewBackend(storeType StoreType, opts ...Option) (chat.Backend, error) {
	cfg := &backendConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeFile:
		if cfg.path == "" {
			return nil, ErrInvalidConfig
		}
		return NewFile(cfg.path), nil

	case StoreTypeSQLite:
		if cfg.path == "" {
			return nil, ErrInvalidConfig
		}
		return OpenSQLite(cfg.path)

	case StoreTypeRedis:
		client := cfg.redisClient
		if client == nil {
			if cfg.redisURL == "" {
				return nil, ErrInvalidConfig
			}
			client = newRedisClient(cfg.redisURL)
		}
		return NewRedis(client, cfg.redisKey), nil

	default:
		return nil, ErrInvalidStoreType
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	StoreBackend   string `toml:"store_backend"`
	StorePath      string `toml:"store_path"`
	RedisURL       string `toml:"redis_url"`
	RedisKey       string `toml:"redis_key"`
	DataDir        string `toml:"data_dir"`
	DataURL        string `toml:"data_url"`
	KeyframeRoot   string `toml:"keyframe_root"`
	SubmitURL      string `toml:"submit_url"`
	PollIntervalMs int    `toml:"poll_interval_ms"`
	ListenAddr     string `toml:"listen_addr"`
	LogFile        string `toml:"log_file"`
	NatsURL        string `toml:"nats_url"`
	DRES           DRES   `toml:"dres"`
}

type DRES struct {
	BaseURL    string `toml:"base_url"`
	SessionID  string `toml:"session_id"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// PollInterval is the playback polling period.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (d DRES) Timeout() time.Duration {
	if d.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.TimeoutSec) * time.Second
}

// Dir is where framechat keeps its config, store and logs.
func Dir(home string) string {
	return filepath.Join(home, ".config", "framechat")
}

func defaults(home string) *Config {
	dir := Dir(home)
	return &Config{
		StoreBackend:   "file",
		StorePath:      filepath.Join(dir, "chats.json"),
		RedisURL:       "redis://localhost:6379/0",
		RedisKey:       "framechat:chatHistory",
		DataDir:        "data",
		KeyframeRoot:   filepath.Join("data", "keyframes"),
		SubmitURL:      "http://localhost:8000",
		PollIntervalMs: 200,
		ListenAddr:     ":8000",
		LogFile:        filepath.Join(dir, "framechat.log"),
		DRES: DRES{
			BaseURL:    "https://eventretrieval.oj.io.vn",
			TimeoutSec: 10,
		},
	}
}

// Load reads ~/.config/framechat/config.toml over the defaults, then applies
// a .env file in the working directory and FRAMECHAT_* / DRES_* variables.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(Dir(home), "config.toml"), home)
}

// LoadFrom is Load with an explicit config file and home directory.
func LoadFrom(cfgPath, home string) (*Config, error) {
	cfg := defaults(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// .env is optional; existing environment variables win over it
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// expand ~ in paths
	cfg.StorePath = expandHome(cfg.StorePath, home)
	cfg.DataDir = expandHome(cfg.DataDir, home)
	cfg.KeyframeRoot = expandHome(cfg.KeyframeRoot, home)
	cfg.LogFile = expandHome(cfg.LogFile, home)

	switch cfg.StoreBackend {
	case "file", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("config: unknown store_backend %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"FRAMECHAT_STORE_BACKEND": &cfg.StoreBackend,
		"FRAMECHAT_STORE_PATH":    &cfg.StorePath,
		"FRAMECHAT_REDIS_URL":     &cfg.RedisURL,
		"FRAMECHAT_REDIS_KEY":     &cfg.RedisKey,
		"FRAMECHAT_DATA_DIR":      &cfg.DataDir,
		"FRAMECHAT_DATA_URL":      &cfg.DataURL,
		"FRAMECHAT_KEYFRAME_ROOT": &cfg.KeyframeRoot,
		"FRAMECHAT_SUBMIT_URL":    &cfg.SubmitURL,
		"FRAMECHAT_LISTEN_ADDR":   &cfg.ListenAddr,
		"FRAMECHAT_LOG_FILE":      &cfg.LogFile,
		"FRAMECHAT_NATS_URL":      &cfg.NatsURL,
		"DRES_BASE_URL":           &cfg.DRES.BaseURL,
		"DRES_SESSION_ID":         &cfg.DRES.SessionID,
		"DRES_USERNAME":           &cfg.DRES.Username,
		"DRES_PASSWORD":           &cfg.DRES.Password,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"FRAMECHAT_POLL_INTERVAL_MS": &cfg.PollIntervalMs,
		"DRES_TIMEOUT_SEC":           &cfg.DRES.TimeoutSec,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}

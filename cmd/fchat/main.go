package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/config"
	"github.com/Zuo-Peng/framechat/internal/frame"
	"github.com/Zuo-Peng/framechat/internal/logging"
	"github.com/Zuo-Peng/framechat/internal/storage"
)

var version = "dev"

const frameCacheTTL = 10 * time.Minute

type globalFlags struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "fchat",
		Short:         "framechat - keyframe chat threads, frame inspection and DRES submission",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default ~/.config/framechat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Also log to stderr")

	rootCmd.AddCommand(chatCmd(g))
	rootCmd.AddCommand(sendCmd(g))
	rootCmd.AddCommand(sessionsCmd(g))
	rootCmd.AddCommand(showCmd(g))
	rootCmd.AddCommand(attachCmd(g))
	rootCmd.AddCommand(frameCmd(g))
	rootCmd.AddCommand(framesCmd(g))
	rootCmd.AddCommand(inspectCmd(g))
	rootCmd.AddCommand(submitCmd(g))
	rootCmd.AddCommand(serveCmd(g))
	rootCmd.AddCommand(exportCmd(g))
	rootCmd.AddCommand(importCmd(g))
	rootCmd.AddCommand(doctorCmd(g))

	return rootCmd
}

func (g *globalFlags) loadConfig() (*config.Config, error) {
	if g.configPath == "" {
		return config.Load()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return config.LoadFrom(g.configPath, home)
}

// env is what most subcommands need: config, logger and the opened store.
type env struct {
	cfg   *config.Config
	log   *logging.Logger
	store *chat.Store
}

func (g *globalFlags) open(ctx context.Context, console bool) (*env, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogFile, console || g.verbose)

	backend, err := newBackend(cfg)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	store, err := chat.Open(ctx, backend, chat.WithLogger(log))
	if err != nil {
		_ = backend.Close()
		_ = log.Sync()
		return nil, fmt.Errorf("open chat store: %w", err)
	}
	return &env{cfg: cfg, log: log, store: store}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("cli", "closing chat store failed", map[string]interface{}{"error": err})
	}
	_ = e.log.Sync()
}

// storePath is the configured path, with a .db extension for sqlite when
// the path still names the default JSON file.
func storePath(cfg *config.Config) string {
	p := cfg.StorePath
	if cfg.StoreBackend == string(storage.StoreTypeSQLite) && filepath.Ext(p) == ".json" {
		p = strings.TrimSuffix(p, ".json") + ".db"
	}
	return p
}

func newBackend(cfg *config.Config) (chat.Backend, error) {
	return storage.NewBackend(storage.StoreType(cfg.StoreBackend),
		storage.WithPath(storePath(cfg)),
		storage.WithRedisURL(cfg.RedisURL),
		storage.WithRedisKey(cfg.RedisKey),
	)
}

// newResolver reads metadata from data_url when set, else from data_dir.
func newResolver(cfg *config.Config) *frame.Resolver {
	var src frame.Source
	if cfg.DataURL != "" {
		src = frame.NewHTTPSource(cfg.DataURL, &http.Client{Timeout: cfg.DRES.Timeout()})
	} else {
		src = frame.NewDirSource(cfg.DataDir)
	}
	return frame.NewResolver(frame.NewCachedSource(src, frameCacheTTL))
}

// cliView reports controller notices on stderr. State is printed by the
// commands themselves.
type cliView struct {
	cmd *cobra.Command
}

func (v cliView) Refresh(chat.State) {}

func (v cliView) Notify(n chat.Notice) {
	prefix := ""
	if n.Level == chat.NoticeError {
		prefix = "error: "
	}
	fmt.Fprintln(v.cmd.ErrOrStderr(), prefix+n.Text)
}

func newController(cmd *cobra.Command, e *env) *chat.Controller {
	return chat.NewController(e.store, cliView{cmd: cmd}, e.log)
}

// sessionRef resolves ref (id or name) or falls back to the active session.
func sessionRef(store *chat.Store, ref string) (chat.Session, error) {
	if ref == "" {
		return store.Active(), nil
	}
	id, ok := store.Resolve(ref)
	if !ok {
		return chat.Session{}, fmt.Errorf("chat not found: %s", ref)
	}
	s, _ := store.Session(id)
	return s, nil
}

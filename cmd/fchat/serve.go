package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/events"
	"github.com/Zuo-Peng/framechat/internal/logging"
	"github.com/Zuo-Peng/framechat/internal/server"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the submission relay (POST /api/submit) and serve the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			log := logging.New(cfg.LogFile, true)
			defer log.Sync()

			var publisher *events.Publisher
			if cfg.NatsURL != "" {
				publisher, err = events.Connect(cfg.NatsURL)
				if err != nil {
					log.Warn("serve", "NATS unavailable, verdict events disabled", map[string]interface{}{
						"url":   cfg.NatsURL,
						"error": err,
					})
				} else {
					defer publisher.Close()
					log.Info("serve", "publishing verdict events", map[string]interface{}{"url": cfg.NatsURL})
				}
			}

			relay := newRelay(cfg, log, events.NewSubmissionNotifier(publisher, log))
			srv := server.New(server.Deps{
				Backend:  relay,
				Resolver: newResolver(cfg),
				DataDir:  cfg.DataDir,
				Logger:   log,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Run(cfg.ListenAddr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("serve", "shutting down", nil)
			if err := srv.Shutdown(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default listen_addr from config)")

	return cmd
}

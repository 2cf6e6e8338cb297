package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/dres"
	"github.com/Zuo-Peng/framechat/internal/events"
	"github.com/Zuo-Peng/framechat/internal/frame"
	"github.com/Zuo-Peng/framechat/internal/scan"
	"github.com/Zuo-Peng/framechat/internal/storage"
)

func doctorCmd(g *globalFlags) *cobra.Command {
	var checkDRES bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, chat store, frame data, DRES and NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()
			cfg := e.cfg

			fmt.Fprintln(out, "=== Chat Store ===")
			fmt.Fprintf(out, "  Backend: %s\n", cfg.StoreBackend)
			switch storage.StoreType(cfg.StoreBackend) {
			case storage.StoreTypeRedis:
				fmt.Fprintf(out, "  Redis:   %s (key %s)\n", cfg.RedisURL, cfg.RedisKey)
			default:
				fmt.Fprintf(out, "  Path:    %s\n", storePath(cfg))
				if info, err := os.Stat(storePath(cfg)); err == nil {
					fmt.Fprintf(out, "  Size:    %.1f KB\n", float64(info.Size())/1024)
				}
			}
			msgs := 0
			sessions := e.store.Sessions()
			for _, s := range sessions {
				msgs += len(s.Messages)
			}
			fmt.Fprintf(out, "  Chats:    %d\n", len(sessions))
			fmt.Fprintf(out, "  Messages: %d\n", msgs)
			fmt.Fprintf(out, "  Active:   %s\n", e.store.Active().Name)

			fmt.Fprintln(out, "\n=== Frame Data ===")
			if cfg.DataURL != "" {
				checkSource(ctx, out, "Data URL "+cfg.DataURL, frame.NewHTTPSource(cfg.DataURL, nil))
			} else {
				checkDir(out, "Data dir", cfg.DataDir)
				checkDir(out, "Metadata", filepath.Join(cfg.DataDir, "metadata"))
				checkSource(ctx, out, "FPS table", frame.NewDirSource(cfg.DataDir))
			}

			checkDir(out, "Keyframes", cfg.KeyframeRoot)
			files, err := scan.Keyframes(cfg.KeyframeRoot, "")
			if err != nil {
				fmt.Fprintf(out, "  scan error: %v\n", err)
			} else {
				vids, _ := scan.Videos(cfg.KeyframeRoot)
				fmt.Fprintf(out, "  Keyframe images: %d in %d videos\n", len(files), len(vids))
			}

			fmt.Fprintln(out, "\n=== Submission ===")
			fmt.Fprintf(out, "  Relay:  %s/api/submit\n", cfg.SubmitURL)
			fmt.Fprintf(out, "  DRES:   %s\n", cfg.DRES.BaseURL)
			if checkDRES {
				checkJudge(ctx, out, cfg.DRES.Timeout(), dres.NewClient(dres.Config{
					BaseURL:   cfg.DRES.BaseURL,
					SessionID: cfg.DRES.SessionID,
					Username:  cfg.DRES.Username,
					Password:  cfg.DRES.Password,
					Timeout:   cfg.DRES.Timeout(),
				}))
			}

			fmt.Fprintln(out, "\n=== Events ===")
			if cfg.NatsURL == "" {
				fmt.Fprintln(out, "  NATS: not configured")
			} else if p, err := events.Connect(cfg.NatsURL); err != nil {
				fmt.Fprintf(out, "  NATS: %s (ERROR: %v)\n", cfg.NatsURL, err)
			} else {
				p.Close()
				fmt.Fprintf(out, "  NATS: %s (OK)\n", cfg.NatsURL)
			}

			fmt.Fprintf(out, "\n=== Log: %s ===\n", cfg.LogFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkDRES, "dres", false, "Also log in to DRES and look up the active evaluation")

	return cmd
}

func checkDir(out io.Writer, name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Fprintf(out, "  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Fprintf(out, "  %s: %s (OK)\n", name, path)
	}
}

func checkSource(ctx context.Context, out io.Writer, name string, src frame.Source) {
	table, err := src.FPS(ctx)
	if err != nil {
		fmt.Fprintf(out, "  %s: ERROR (%v)\n", name, err)
		return
	}
	fmt.Fprintf(out, "  %s: %d videos (OK)\n", name, len(table))
}

func checkJudge(ctx context.Context, out io.Writer, timeout time.Duration, client *dres.Client) {
	ctx, cancel := context.WithTimeout(ctx, 2*timeout)
	defer cancel()

	session, err := client.Session(ctx)
	if err != nil {
		fmt.Fprintf(out, "  Login:      ERROR (%v)\n", err)
		return
	}
	fmt.Fprintln(out, "  Login:      OK")

	evalID, err := client.ActiveEvaluation(ctx, session)
	if err != nil {
		fmt.Fprintf(out, "  Evaluation: ERROR (%v)\n", err)
		return
	}
	fmt.Fprintf(out, "  Evaluation: %s (ACTIVE)\n", evalID)
}

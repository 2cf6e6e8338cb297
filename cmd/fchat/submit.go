package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/config"
	"github.com/Zuo-Peng/framechat/internal/dres"
	"github.com/Zuo-Peng/framechat/internal/frame"
	"github.com/Zuo-Peng/framechat/internal/logging"
	"github.com/Zuo-Peng/framechat/internal/submit"
)

func submitCmd(g *globalFlags) *cobra.Command {
	var (
		frameIdx int
		ms       int64
		fps      float64
		question string
		direct   bool
		record   bool
	)

	cmd := &cobra.Command{
		Use:   "submit <image-path>",
		Short: "Submit a keyframe (or a frame near it) to DRES and print the verdict",
		Long: `Submit sends {videoId, frame, fps, timestampMs} to the relay at submit_url.
With --direct the DRES server is called from this process instead.
The frame defaults to the keyframe's own index and the timestamp to frame/fps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogFile, g.verbose)
			defer log.Sync()

			kf, err := frame.ParseKeyframePath(args[0])
			if err != nil {
				return err
			}

			req := submit.Request{VideoID: kf.VideoID, Frame: kf.Index, FPS: fps, Question: question}
			if cmd.Flags().Changed("frame") {
				req.Frame = frameIdx
			}
			if req.FPS <= 0 {
				f, err := resolveFrame(cmd, cfg, args[0])
				if err != nil {
					return fmt.Errorf("%w (pass --fps to submit without frame metadata)", err)
				}
				req.FPS = f.FPS
			}
			if cmd.Flags().Changed("ms") {
				req.TimestampMs = &ms
			}

			var backend submit.Backend = submit.NewHTTPBackend(cfg.SubmitURL, nil)
			if direct {
				backend = newRelay(cfg, log, nil)
			}

			var control submit.Control
			outcome, err := control.Submit(cmd.Context(), backend, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome.Summary())

			if record {
				if err := recordOutcome(cmd, g, outcome); err != nil {
					log.Warn("cli", "recording submission in chat failed", map[string]interface{}{"error": err})
				}
			}
			if outcome.Err != nil {
				return errors.New("submission failed")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&frameIdx, "frame", 0, "Frame index to submit (default: the keyframe's index)")
	cmd.Flags().Int64Var(&ms, "ms", 0, "Timestamp in milliseconds (default: frame/fps*1000)")
	cmd.Flags().Float64Var(&fps, "fps", 0, "Frame rate (default: looked up in the fps table)")
	cmd.Flags().StringVar(&question, "question", "", "Submit a QA answer for this question instead of a KIS answer")
	cmd.Flags().BoolVar(&direct, "direct", false, "Call DRES directly instead of the relay")
	cmd.Flags().BoolVar(&record, "record", false, "Append the verdict to the active chat as a system message")

	return cmd
}

func newRelay(cfg *config.Config, log *logging.Logger, notifier submit.Notifier) *submit.Relay {
	client := dres.NewClient(dres.Config{
		BaseURL:   cfg.DRES.BaseURL,
		SessionID: cfg.DRES.SessionID,
		Username:  cfg.DRES.Username,
		Password:  cfg.DRES.Password,
		Timeout:   cfg.DRES.Timeout(),
	})
	opts := []submit.RelayOption{submit.WithRelayLogger(log)}
	if notifier != nil {
		opts = append(opts, submit.WithNotifier(notifier))
	}
	return submit.NewRelay(client, opts...)
}

func recordOutcome(cmd *cobra.Command, g *globalFlags, o submit.Outcome) error {
	ctx := cmd.Context()
	e, err := g.open(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	msg := chat.Message{Role: chat.RoleSystem, Text: o.Summary()}
	return e.store.AppendMessage(ctx, e.store.ActiveID(), msg)
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/config"
	"github.com/Zuo-Peng/framechat/internal/frame"
	"github.com/Zuo-Peng/framechat/internal/open"
)

func frameCmd(g *globalFlags) *cobra.Command {
	var asJSON, openURL bool

	cmd := &cobra.Command{
		Use:   "frame <image-path>",
		Short: "Resolve a keyframe to its video, fps, timestamp and watch URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			f, err := resolveFrame(cmd, cfg, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(struct {
					*frame.Frame
					Initial frame.Position `json:"initial"`
					Link    string         `json:"link"`
				}{f, f.InitialPosition(), f.LinkAt(f.TimestampSeconds)}); err != nil {
					return err
				}
			} else {
				pos := f.InitialPosition()
				fmt.Fprintf(out, "Video:     %s\n", f.VideoID)
				fmt.Fprintf(out, "Keyframe:  %s (frame %d)\n", f.Name, f.Index)
				fmt.Fprintf(out, "FPS:       %g\n", f.FPS)
				fmt.Fprintf(out, "Timestamp: %.3fs (%dms)\n", f.TimestampSeconds, pos.TimestampMs)
				fmt.Fprintf(out, "Watch:     %s\n", f.LinkAt(f.TimestampSeconds))
				if f.YouTubeID != "" {
					fmt.Fprintf(out, "Embed:     %s\n", frame.EmbedURL(f.YouTubeID, f.TimestampSeconds))
				}
			}

			if openURL {
				return open.URL(f.LinkAt(f.TimestampSeconds))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&openURL, "open", false, "Open the watch URL in the browser")

	return cmd
}

func resolveFrame(cmd *cobra.Command, cfg *config.Config, imagePath string) (*frame.Frame, error) {
	f, err := newResolver(cfg).Resolve(cmd.Context(), imagePath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", imagePath, err)
	}
	return f, nil
}

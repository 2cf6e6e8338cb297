package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/scan"
)

func framesCmd(g *globalFlags) *cobra.Command {
	var videos bool
	var limit int

	cmd := &cobra.Command{
		Use:   "frames [video-id]",
		Short: "List keyframe images under keyframe_root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if videos {
				ids, err := scan.Videos(cfg.KeyframeRoot)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			videoID := ""
			if len(args) == 1 {
				videoID = args[0]
			}
			files, err := scan.Keyframes(cfg.KeyframeRoot, videoID)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "No keyframes under %s\n", cfg.KeyframeRoot)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, f := range files {
				if limit > 0 && i >= limit {
					break
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", f.VideoID, f.Index, f.Path)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&videos, "videos", false, "List video ids only")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max keyframes (0 = no limit)")

	return cmd
}

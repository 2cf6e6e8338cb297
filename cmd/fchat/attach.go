package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/frame"
)

func attachCmd(g *globalFlags) *cobra.Command {
	var chatRef string

	cmd := &cobra.Command{
		Use:   "attach <image-path>",
		Short: "Add a keyframe image to the active chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kf, err := frame.ParseKeyframePath(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctrl := newController(cmd, e)
			if chatRef != "" {
				if err := ctrl.Switch(ctx, chatRef); err != nil {
					return err
				}
			}
			img := chat.ImageRef{Path: kf.Path, VideoID: kf.VideoID, Keyframe: kf.Name}
			if err := ctrl.AttachImage(ctx, img); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Attached %s #%s to %s\n", kf.VideoID, kf.Name, e.store.Active().Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&chatRef, "chat", "", "Switch to this chat (id or name) first")

	return cmd
}

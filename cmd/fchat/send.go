package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/render"
)

func sendCmd(g *globalFlags) *cobra.Command {
	var chatRef string
	var tail int

	cmd := &cobra.Command{
		Use:   "send <text...>",
		Short: `Send a message or chat command (\new, \delete, \clear, \clear_all) to the active chat`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if err := ctrl.Submit(ctx, strings.Join(args, " ")); err != nil {
				return err
			}

			if tail > 0 {
				fmt.Fprint(cmd.OutOrStdout(), render.Transcript(e.store.Active(), render.Options{Tail: tail, Color: colorOutput(cmd)}))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chatRef, "chat", "", "Switch to this chat (id or name) first")
	cmd.Flags().IntVar(&tail, "tail", 0, "Print the last N messages afterwards")

	return cmd
}

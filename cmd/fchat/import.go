package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/legacy"
)

func importCmd(g *globalFlags) *cobra.Command {
	var snapshot bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import chats from a browser chatHistory dump (or a framechat snapshot)",
		Long: `Import reads the value of localStorage.chatHistory saved from the browser
client and converts its markup into structured messages. Messages of the
imported default chat are appended to the local default chat; other chats are
added unless a chat with the same name already exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap *chat.Snapshot
			var err error
			if snapshot {
				data, rerr := os.ReadFile(args[0])
				if rerr != nil {
					return rerr
				}
				snap, err = chat.UnmarshalSnapshot(data)
			} else {
				snap, err = legacy.ParseFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			ctx := cmd.Context()
			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()

			stats, err := newController(cmd, e).Import(ctx, snap)
			if err != nil {
				return err
			}
			for _, name := range stats.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %q: name already exists\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "The file is a framechat snapshot from 'fchat export --snapshot'")

	return cmd
}

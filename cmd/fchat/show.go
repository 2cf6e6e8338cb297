package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/export"
	"github.com/Zuo-Peng/framechat/internal/open"
	"github.com/Zuo-Peng/framechat/internal/render"
)

func showCmd(g *globalFlags) *cobra.Command {
	var tail int
	var query string
	var edit bool

	cmd := &cobra.Command{
		Use:   "show [id|name]",
		Short: "Print a chat transcript (default: the active chat)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			sess, err := sessionRef(e.store, ref)
			if err != nil {
				return err
			}

			if edit {
				exp := &export.MarkdownExporter{}
				path := filepath.Join(os.TempDir(), export.FileName(&sess, exp))
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := exp.Export(&sess, f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				return open.File(path, 1)
			}

			fmt.Fprint(cmd.OutOrStdout(), render.Transcript(sess, render.Options{
				Tail:  tail,
				Width: terminalWidth(),
				Color: colorOutput(cmd),
				Query: query,
			}))
			return nil
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 0, "Only the last N messages (0 = all)")
	cmd.Flags().StringVar(&query, "query", "", "Highlight these keywords")
	cmd.Flags().BoolVar(&edit, "edit", false, "Open the transcript as markdown in $EDITOR")

	return cmd
}

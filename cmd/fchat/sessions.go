package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/framechat/internal/render"
)

type sessionSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Messages int    `json:"messages"`
	Active   bool   `json:"active"`
}

func sessionsCmd(g *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List chats (the active one is marked with *)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			active := e.store.ActiveID()
			sessions := e.store.Sessions()

			if asJSON {
				out := make([]sessionSummary, 0, len(sessions))
				for _, s := range sessions {
					out = append(out, sessionSummary{ID: s.ID, Name: s.Name, Messages: len(s.Messages), Active: s.ID == active})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprint(cmd.OutOrStdout(), render.SessionList(sessions, active, terminalWidth()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "new <name>",
		Short: "Create a chat and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := newController(cmd, e).NewSession(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s [%s]\n", e.store.Active().Name, e.store.ActiveID())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use <id|name>",
		Short: "Make a chat active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := newController(cmd, e).Switch(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active chat: %s [%s]\n", e.store.Active().Name, e.store.ActiveID())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a chat (the default chat cannot be deleted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := g.open(ctx, false)
			if err != nil {
				return err
			}
			defer e.Close()
			deleted, err := e.store.DeleteSession(ctx, args[0])
			if err != nil {
				return fmt.Errorf("delete %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s [%s]\n", deleted.Name, deleted.ID)
			return nil
		},
	})

	return cmd
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}

func colorOutput(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

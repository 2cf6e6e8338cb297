package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/framechat/internal/chat"
	"github.com/Zuo-Peng/framechat/internal/export"
)

func exportCmd(g *globalFlags) *cobra.Command {
	var format, outputDir string
	var all, snapshot bool

	cmd := &cobra.Command{
		Use:   "export [id|name...]",
		Short: "Export chats to files (jsonl, md, yaml, json)",
		Long: `Export writes one file per chat into --out. Without arguments the active chat
is exported; --all exports every chat. --snapshot writes the whole store as a
single JSON snapshot that 'fchat import --snapshot' reads back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			if snapshot {
				data, err := chat.MarshalSnapshot(e.store.Snapshot())
				if err != nil {
					return err
				}
				path := filepath.Join(outputDir, "framechat_snapshot.json")
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			}

			exporter, err := export.NewExporter(format)
			if err != nil {
				return err
			}

			var sessions []chat.Session
			switch {
			case all:
				sessions = e.store.Sessions()
			case len(args) == 0:
				sessions = []chat.Session{e.store.Active()}
			default:
				for _, ref := range args {
					s, err := sessionRef(e.store, ref)
					if err != nil {
						return err
					}
					sessions = append(sessions, s)
				}
			}

			for i := range sessions {
				s := &sessions[i]
				path := filepath.Join(outputDir, export.FileName(s, exporter))
				if err := writeExport(exporter, s, path); err != nil {
					return fmt.Errorf("export %s: %w", s.ID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
			e.log.Info("cli", "exported chats", map[string]interface{}{
				"count":  len(sessions),
				"format": format,
				"dir":    outputDir,
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (jsonl, md, yaml, json)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	cmd.Flags().BoolVar(&all, "all", false, "Export every chat")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Write the whole store as one JSON snapshot")

	return cmd
}

func writeExport(exporter export.Exporter, s *chat.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.Export(s, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

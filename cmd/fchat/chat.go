package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/framechat/internal/submit"
	"github.com/Zuo-Peng/framechat/internal/tui"
)

var errNoTerminal = errors.New("the interactive chat needs a terminal; use send/show/sessions instead")

func chatCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat with session list, keyframe picker and inspector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g, "")
		},
	}
}

func runTUI(cmd *cobra.Command, g *globalFlags, inspectPath string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	ctx := cmd.Context()
	e, err := g.open(ctx, false)
	if err != nil {
		return err
	}
	defer e.Close()

	return tui.Run(ctx, tui.Options{
		Store:        e.store,
		Resolver:     newResolver(e.cfg),
		Backend:      submit.NewHTTPBackend(e.cfg.SubmitURL, nil),
		KeyframeRoot: e.cfg.KeyframeRoot,
		PollInterval: e.cfg.PollInterval(),
		Logger:       e.log,
		InspectPath:  inspectPath,
	})
}

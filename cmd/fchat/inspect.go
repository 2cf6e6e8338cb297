package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func inspectCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [image-path]",
		Short: "Open the frame inspector on a keyframe (default: last image of the active chat)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runTUI(cmd, g, args[0])
			}

			e, err := g.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			img, ok := e.store.Active().LastImage()
			e.Close()
			if !ok {
				return fmt.Errorf("no image in the active chat; pass an image path or attach one first")
			}
			return runTUI(cmd, g, img.Path)
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reloop/internal/api"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Upload video files into the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			for _, path := range args {
				var view api.NodeView
				if err := client.uploadFile(path, &view); err != nil {
					return fmt.Errorf("add %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s as %q (%s, %s)\n",
					view.ID, view.Name, formatSeconds(view.Duration),
					fmt.Sprintf("%dx%d", view.Width, view.Height))
			}
			return nil
		},
	}
}

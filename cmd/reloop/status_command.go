package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reloop/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and library summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var status api.DaemonStatus
			if err := client.get("/api/status", &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:    running (pid %d)\n", status.PID)
			fmt.Fprintf(out, "Library:   %s\n", status.LibraryDir)
			fmt.Fprintf(out, "Catalog:   %s\n", status.CatalogPath)
			fmt.Fprintf(out, "Matrix:    %s\n", status.MatrixPath)
			fmt.Fprintf(out, "Clips:     %d\n", status.NodeCount)
			fmt.Fprintf(out, "Groups:    %d\n", status.GroupCount)
			fmt.Fprintf(out, "Engine:    %d nodes, %d pair scores\n", status.Engine.Nodes, status.Engine.Entries)

			for _, dep := range status.Dependencies {
				state := "ok"
				if !dep.Available {
					state = "missing"
					if dep.Detail != "" {
						state = "missing (" + dep.Detail + ")"
					}
				}
				fmt.Fprintf(out, "%-10s %s\n", dep.Name+":", state)
			}
			return nil
		},
	}
}

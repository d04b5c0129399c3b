package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reloop/internal/api"
	"reloop/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var repeat int
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>...",
		Short: "Flatten an arrangement into a timed play list",
		Long: `Flatten an ordered sequence of clip or group IDs into a play list with
cumulative timestamps. The sequence forms one cycle, played --repeat times.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			req := api.ExportRequest{
				Cycles: []export.Cycle{{NodeIDs: args, Repeat: repeat}},
			}
			var result export.Result
			if err := client.postJSON("/api/export", req, &result); err != nil {
				return err
			}

			payload, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode timeline: %w", err)
			}
			payload = append(payload, '\n')

			if output == "" {
				_, err := cmd.OutOrStdout().Write(payload)
				return err
			}
			if err := os.WriteFile(output, payload, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries (%.2fs total) to %s\n",
				len(result.Entries), result.TotalDuration, output)
			return nil
		},
	}

	cmd.Flags().IntVar(&repeat, "repeat", 1, "Number of times to play the cycle")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the timeline JSON to a file")
	return cmd
}

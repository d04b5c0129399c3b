package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"reloop/internal/api"
)

func newCompatibleCommand(ctx *commandContext) *cobra.Command {
	var side string
	var threshold float64

	cmd := &cobra.Command{
		Use:   "compatible <id>",
		Short: "List clips that connect to one knob of a clip",
		Long: `List clips whose boundary frame is visually compatible with one knob of
the given clip. Querying the right knob finds clips that can follow it;
querying the left knob finds clips that can precede it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			query := url.Values{}
			if side != "" {
				query.Set("side", side)
			}
			if cmd.Flags().Changed("threshold") {
				query.Set("threshold", strconv.FormatFloat(threshold, 'f', -1, 64))
			}

			endpoint := "/api/similarity/compatible/" + url.PathEscape(args[0])
			if encoded := query.Encode(); encoded != "" {
				endpoint += "?" + encoded
			}

			var resp api.CompatibilityResponse
			if err := client.get(endpoint, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(resp.Compatible) == 0 {
				fmt.Fprintf(out, "No compatible clips for %s (side %s, threshold %g).\n",
					resp.QueryNodeID, resp.QuerySide, resp.Threshold)
				return nil
			}

			rows := make([][]string, 0, len(resp.Compatible))
			for _, match := range resp.Compatible {
				rows = append(rows, []string{
					match.NodeID,
					match.Side,
					strconv.FormatFloat(match.Score, 'f', 4, 64),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Knob", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&side, "side", "", "Knob to query: left or right (default right)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum score in [0,1] (default from daemon config)")
	return cmd
}

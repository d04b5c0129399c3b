package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"reloop/internal/api"
)

func newMatrixCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Dump the directed compatibility matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var resp api.MatrixResponse
			if err := client.get("/api/similarity/matrix", &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(resp.Matrix)
			}

			if len(resp.Matrix) == 0 {
				fmt.Fprintln(out, "Matrix is empty.")
				return nil
			}

			sources := make([]string, 0, len(resp.Matrix))
			for id := range resp.Matrix {
				sources = append(sources, id)
			}
			sort.Strings(sources)

			var rows [][]string
			for _, source := range sources {
				targets := make([]string, 0, len(resp.Matrix[source]))
				for id := range resp.Matrix[source] {
					targets = append(targets, id)
				}
				sort.Strings(targets)
				for _, target := range targets {
					rows = append(rows, []string{
						source,
						target,
						strconv.FormatFloat(resp.Matrix[source][target], 'f', 4, 64),
					})
				}
			}
			fmt.Fprintln(out, renderTable(
				[]string{"From (last frame)", "To (first frame)", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw matrix as JSON")
	return cmd
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reloop/internal/api"
)

func newNodesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Manage library clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listNodes(ctx, cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List library clips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listNodes(ctx, cmd)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Change a clip's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var view api.NodeView
			if err := client.patchJSON("/api/nodes/"+args[0], api.RenameRequest{Name: args[1]}, &view); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", view.ID, view.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a clip, its files, and its similarity scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.delete("/api/nodes/" + args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func listNodes(ctx *commandContext, cmd *cobra.Command) error {
	client, err := ctx.client()
	if err != nil {
		return err
	}

	var list api.NodeListResponse
	if err := client.get("/api/nodes", &list); err != nil {
		return err
	}

	if len(list.Nodes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No clips in the library.")
		return nil
	}

	rows := make([][]string, 0, len(list.Nodes))
	for _, node := range list.Nodes {
		rows = append(rows, []string{
			node.ID,
			node.Name,
			formatSeconds(node.Duration),
			strconv.Itoa(node.Width) + "x" + strconv.Itoa(node.Height),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Name", "Duration", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	))
	return nil
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64) + "s"
}

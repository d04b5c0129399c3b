package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reloop/internal/api"
)

func newGroupsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage clip groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listGroups(ctx, cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listGroups(ctx, cmd)
		},
	})

	var groupName string
	createCmd := &cobra.Command{
		Use:   "create <child-id>...",
		Short: "Create a group from an ordered sequence of clips or groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var view api.GroupView
			req := api.CreateGroupRequest{Name: groupName, ChildIDs: args}
			if err := client.postJSON("/api/groups", req, &view); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created group %s %q (%d children, %s)\n",
				view.ID, view.Name, len(view.ChildIDs), formatSeconds(view.Duration))
			return nil
		},
	}
	createCmd.Flags().StringVar(&groupName, "name", "", "Display name for the group")
	_ = createCmd.MarkFlagRequired("name")
	cmd.AddCommand(createCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Change a group's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var view api.GroupView
			if err := client.patchJSON("/api/groups/"+args[0], api.RenameRequest{Name: args[1]}, &view); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", view.ID, view.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a group (member clips are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.delete("/api/groups/" + args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func listGroups(ctx *commandContext, cmd *cobra.Command) error {
	client, err := ctx.client()
	if err != nil {
		return err
	}

	var list api.GroupListResponse
	if err := client.get("/api/groups", &list); err != nil {
		return err
	}

	if len(list.Groups) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No groups defined.")
		return nil
	}

	rows := make([][]string, 0, len(list.Groups))
	for _, group := range list.Groups {
		rows = append(rows, []string{
			group.ID,
			group.Name,
			strconv.Itoa(len(group.ChildIDs)),
			formatSeconds(group.Duration),
			strings.Join(group.ChildIDs, ", "),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Name", "Children", "Duration", "Members"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	return nil
}

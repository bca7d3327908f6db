// List and show commands for the snags CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/snags/pkg/types"
)

var (
	listAll    bool
	listStatus string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues",
	Long: `List issues ordered by id. Archived issues are hidden unless --all is
set; --status filters to a single status.

Example:
  snags list
  snags list --all
  snags list --status resolved`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var issues []*types.Issue
		if listStatus != "" {
			status, err := types.ParseStatus(listStatus)
			if err != nil {
				return err
			}
			issues, err = store.GetIssuesByStatus(status)
			if err != nil {
				return err
			}
		} else {
			issues, err = store.GetAllIssues(listAll)
			if err != nil {
				return err
			}
		}
		return printIssues(issues)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		issue, err := store.GetIssueByID(id)
		if err != nil {
			return err
		}
		return printIssue(issue)
	},
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "include archived issues")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (open, in-progress, resolved, archived)")
}

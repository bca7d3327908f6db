// Update and delete commands for the snags CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/snags/pkg/types"
)

var (
	updateTitle       string
	updateDescription string
	updateTags        string
	updateStatus      string
	updateResolution  string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of an existing issue",
	Long: `Update changes only the fields whose flags are given; everything else
stays as stored. Moving to resolved requires --resolution.

Example:
  snags update 3 --status in-progress
  snags update 3 --status resolved --resolution "Patched SSO callback"
  snags update 3 --status archived`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var patch types.Patch
		if cmd.Flags().Changed("title") {
			patch.Title = &updateTitle
		}
		if cmd.Flags().Changed("description") {
			patch.Description = &updateDescription
		}
		if cmd.Flags().Changed("tags") {
			tags := splitTagsFlag(updateTags)
			if tags == nil {
				tags = []string{}
			}
			patch.Tags = tags
		}
		if cmd.Flags().Changed("resolution") {
			patch.Resolution = &updateResolution
		}
		if cmd.Flags().Changed("status") {
			status, err := types.ParseStatus(updateStatus)
			if err != nil {
				return err
			}
			patch.Status = &status
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		issue, err := store.UpdateIssue(id, patch)
		if err != nil {
			return err
		}
		return printIssue(issue)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an open issue",
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

		if err := store.DeleteIssue(id); err != nil {
			return err
		}
		fmt.Printf("deleted issue %d\n", id)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	updateCmd.Flags().StringVar(&updateTags, "tags", "", "new comma-separated tags (empty clears)")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "new status (open, in-progress, resolved, archived)")
	updateCmd.Flags().StringVar(&updateResolution, "resolution", "", "how the issue was resolved")
}

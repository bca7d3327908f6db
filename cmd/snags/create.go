// Create command for the snags CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/snags/pkg/types"
)

var (
	createTitle       string
	createDescription string
	createTags        string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new issue",
	Long: `Create a new issue with status Open.

Example:
  snags create --title "Fix login bug" --description "Users cannot log in with SSO" --tags auth,bug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		issue, err := store.CreateIssue(types.Draft{
			Title:       createTitle,
			Description: createDescription,
			Tags:        splitTagsFlag(createTags),
		})
		if err != nil {
			return err
		}
		return printIssue(issue)
	},
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "issue title (required)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "issue description (required)")
	createCmd.Flags().StringVar(&createTags, "tags", "", "comma-separated tags (at most 5)")
	createCmd.MarkFlagRequired("title")
	createCmd.MarkFlagRequired("description")
}

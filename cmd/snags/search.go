// Search command for the snags CLI.
package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchSubstring bool

var searchCmd = &cobra.Command{
	Use:   "search <term...>",
	Short: "Search issues by text",
	Long: `Search runs a tokenized full-text search over title, description, tags,
and status, most relevant first. --substring switches to a plain
case-insensitive substring match.

Example:
  snags search login sso
  snags search --substring "log in"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		term := strings.Join(args, " ")
		search := store.FullTextSearch
		if searchSubstring {
			search = store.SearchIssues
		}

		issues, err := search(term)
		if err != nil {
			return err
		}
		return printIssues(issues)
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchSubstring, "substring", false, "substring match instead of full-text search")
}

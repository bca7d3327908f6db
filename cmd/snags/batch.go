// Batch create command: inserts a file of drafts in one transaction.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/snags/pkg/types"
)

// batchDraft is the JSON shape of one entry in a batch file.
type batchDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <file.json>",
	Short: "Create several issues from a JSON file in one transaction",
	Long: `Batch reads a JSON array of {"title", "description", "tags"} objects and
creates all of them atomically: one invalid entry aborts the whole batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read batch file: %w", err)
		}

		var entries []batchDraft
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("parse batch file: %w", err)
		}

		drafts := make([]types.Draft, len(entries))
		for i, entry := range entries {
			drafts[i] = types.Draft{
				Title:       entry.Title,
				Description: entry.Description,
				Tags:        entry.Tags,
			}
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		created, err := store.CreateIssuesBatch(drafts)
		if err != nil {
			return err
		}
		return printIssues(created)
	},
}

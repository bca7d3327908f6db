// CSV export command: serializes all issues, archived included.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/snags/pkg/types"
)

// csvHeader names all Issue fields, in column order.
var csvHeader = []string{"id", "title", "description", "tags", "status", "resolution", "created_at", "updated_at"}

var exportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Export all issues to a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		issues, err := store.GetAllIssues(true)
		if err != nil {
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()

		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, issue := range issues {
			record := []string{
				strconv.FormatInt(issue.ID, 10),
				issue.Title,
				issue.Description,
				types.JoinTags(issue.Tags),
				string(issue.Status),
				issue.Resolution,
				issue.CreatedAt.Format(time.RFC3339),
				issue.UpdatedAt.Format(time.RFC3339),
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("write issue %d: %w", issue.ID, err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush export: %w", err)
		}

		fmt.Printf("exported %d issues to %s\n", len(issues), args[0])
		return nil
	},
}

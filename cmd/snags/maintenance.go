// Maintenance commands: backup, restore, optimize, stats.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/snags/pkg/types"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a point-in-time backup of the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		path, err := store.CreateBackup()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Replace the live store with a validated backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.RestoreFromBackup(args[0]); err != nil {
			return err
		}
		fmt.Printf("restored from %s\n", args[0])
		return nil
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Reclaim free space and rebuild statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Optimize()
	},
}

var statsPragmas bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats()
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(stats)
		}

		fmt.Printf("issues: %d total, %d current\n", stats.TotalIssues, stats.CurrentIssues)
		for _, status := range types.Statuses {
			if count, ok := stats.ByStatus[status]; ok {
				fmt.Printf("  %-12s %d\n", status, count)
			}
		}
		fmt.Printf("file: %d bytes (%d pages, %d free)\n", stats.DatabaseBytes, stats.PageCount, stats.FreePages)
		if stats.SearchIndexed {
			fmt.Printf("search index: %d rows\n", stats.SearchRows)
		} else {
			fmt.Println("search index: absent")
		}

		if statsPragmas {
			info, err := store.ConnectionInfo()
			if err != nil {
				return err
			}
			fmt.Println("pragmas:")
			for _, key := range []string{"journal_mode", "synchronous", "foreign_keys", "busy_timeout", "temp_store", "auto_vacuum"} {
				fmt.Printf("  %-12s %s\n", key, info[key])
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsPragmas, "pragmas", false, "include connection pragma settings")
}

// Shared helpers for snags CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/snags/internal/sqlite"
	"github.com/mesh-intelligence/snags/pkg/types"
)

// openStore resolves the directories, opens the store, and runs the full
// startup sequence (schema, constraint migration, search index). The
// caller must defer store.Close().
func openStore() (*sqlite.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	backupDir, err := resolveBackupDir()
	if err != nil {
		return nil, fmt.Errorf("resolve backup dir: %w", err)
	}

	store, err := sqlite.Open(types.Config{DataDir: dataDir, BackupDir: backupDir})
	if err != nil {
		return nil, err
	}
	if err := store.Setup(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// exitCode maps an error to the CLI exit code: validation and lookup
// problems are user errors, everything else is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case types.IsValidationError(err),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidTransition),
		errors.Is(err, types.ErrIneligibleForDeletion),
		errors.Is(err, types.ErrUnknownStatus):
		return exitUserError
	default:
		return exitSysError
	}
}

// parseID parses a positional issue id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid issue id %q", arg)
	}
	return id, nil
}

// splitTagsFlag parses the comma-separated --tags flag value.
func splitTagsFlag(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(value, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// printIssue writes one issue, as JSON when --json is set.
func printIssue(issue *types.Issue) error {
	if flagJSON {
		return printJSON(issue)
	}
	fmt.Printf("#%d  %s  [%s]\n", issue.ID, issue.Title, issue.Status)
	fmt.Printf("    %s\n", issue.Description)
	if len(issue.Tags) > 0 {
		fmt.Printf("    tags: %s\n", strings.Join(issue.Tags, ", "))
	}
	if issue.Resolution != "" {
		fmt.Printf("    resolution: %s\n", issue.Resolution)
	}
	fmt.Printf("    created %s, updated %s\n",
		issue.CreatedAt.Format("2006-01-02 15:04"), issue.UpdatedAt.Format("2006-01-02 15:04"))
	return nil
}

// printIssues writes a sequence of issues.
func printIssues(issues []*types.Issue) error {
	if flagJSON {
		return printJSON(issues)
	}
	if len(issues) == 0 {
		fmt.Println("no issues")
		return nil
	}
	for _, issue := range issues {
		line := fmt.Sprintf("#%d  %-12s  %s", issue.ID, issue.Status, issue.Title)
		if len(issue.Tags) > 0 {
			line += "  (" + strings.Join(issue.Tags, ", ") + ")"
		}
		fmt.Println(line)
	}
	return nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

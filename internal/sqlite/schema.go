// Schema management: idempotent creation, reconciliation of older stores,
// and in-place constraint migration of existing rows.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/snags/pkg/types"
)

// DDL for the issue table and its indexes. The CHECK constraints mirror the
// validator bounds; stores created before a bound was tightened may hold
// violating rows, which MigrateToFitConstraints normalizes.
const (
	createIssuesTable = `CREATE TABLE issues (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL CHECK(length(title) <= 100),
    description TEXT NOT NULL CHECK(length(description) <= 500),
    tags TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'Open'
        CHECK(status IN ('Open', 'In Progress', 'Resolved', 'Archived')),
    resolution TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createStatusIndex    = `CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);`
	createCreatedAtIndex = `CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues(created_at);`
)

// requiredColumns are the columns an existing issues table must already
// have for the store to be usable at all.
var requiredColumns = []string{"id", "title", "description", "status", "created_at", "updated_at"}

// migratableColumns can be added to an older table in place, with the DDL
// that adds each.
var migratableColumns = map[string]string{
	"resolution": `ALTER TABLE issues ADD COLUMN resolution TEXT;`,
	"tags":       `ALTER TABLE issues ADD COLUMN tags TEXT NOT NULL DEFAULT '';`,
}

// Initialize brings the store's schema to the current shape. It creates the
// issue table and indexes if absent, adds migratable columns to an existing
// table, and fails with ErrSchemaCorrupt if an existing table is missing a
// column it cannot add. Safe to call on every startup.
func (s *Store) Initialize() error {
	return s.WithTx(func(tx *sql.Tx) error {
		exists, err := tableExists(tx, "issues")
		if err != nil {
			return err
		}

		if !exists {
			if _, err := tx.Exec(createIssuesTable); err != nil {
				return fmt.Errorf("creating issues table: %w", err)
			}
		} else if err := s.reconcileColumns(tx); err != nil {
			return err
		}

		for _, ddl := range []string{createStatusIndex, createCreatedAtIndex} {
			if _, err := tx.Exec(ddl); err != nil {
				return fmt.Errorf("creating index: %w", err)
			}
		}
		return nil
	})
}

// reconcileColumns compares an existing issues table against the current
// column set, adding the columns that can be added in place.
func (s *Store) reconcileColumns(tx *sql.Tx) error {
	columns, err := tableColumns(tx, "issues")
	if err != nil {
		return err
	}

	for _, name := range requiredColumns {
		if !columns[name] {
			return fmt.Errorf("%w: issues table is missing column %q", types.ErrSchemaCorrupt, name)
		}
	}

	for name, ddl := range migratableColumns {
		if columns[name] {
			continue
		}
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("adding column %s: %w", name, err)
		}
		s.logger.Info("added missing column to issues table", "column", name)
	}
	return nil
}

// MigrateToFitConstraints scans every row and deterministically normalizes
// values that violate the current constraints: over-length title or
// description is cut at the maximum length, tags beyond the cap are
// dropped, and unrecognized status values map to Open. The whole scan runs
// in one transaction, so either every row ends compliant or none change.
// Idempotent: a second run finds nothing to rewrite.
func (s *Store) MigrateToFitConstraints() error {
	var rewritten int
	err := s.WithTx(func(tx *sql.Tx) error {
		rows, err := tx.Query("SELECT id, title, description, tags, status FROM issues")
		if err != nil {
			return fmt.Errorf("scanning issues for migration: %w", err)
		}

		type fix struct {
			id                               int64
			title, description, tags, status string
		}
		var fixes []fix
		for rows.Next() {
			var f fix
			if err := rows.Scan(&f.id, &f.title, &f.description, &f.tags, &f.status); err != nil {
				rows.Close()
				return fmt.Errorf("scanning issue row: %w", err)
			}
			normalized, changed := normalizeRow(f.title, f.description, f.tags, f.status)
			if !changed {
				continue
			}
			f.title, f.description, f.tags, f.status = normalized[0], normalized[1], normalized[2], normalized[3]
			fixes = append(fixes, f)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating issues for migration: %w", err)
		}

		for _, f := range fixes {
			_, err := tx.Exec(
				"UPDATE issues SET title = ?, description = ?, tags = ?, status = ? WHERE id = ?",
				f.title, f.description, f.tags, f.status, f.id,
			)
			if err != nil {
				return fmt.Errorf("rewriting issue %d: %w", f.id, err)
			}
		}
		rewritten = len(fixes)
		return nil
	})
	if err != nil {
		return err
	}

	if rewritten > 0 {
		s.logger.Info("migrated rows to fit current constraints", "rewritten", rewritten)
	}
	return nil
}

// normalizeRow applies the deterministic constraint fixes to one row's
// values. Returns the normalized values and whether anything changed.
func normalizeRow(title, description, tags, status string) ([4]string, bool) {
	changed := false

	if fixed := truncateRunes(title, types.TitleMaxLen); fixed != title {
		title = fixed
		changed = true
	}
	if fixed := truncateRunes(description, types.DescriptionMaxLen); fixed != description {
		description = fixed
		changed = true
	}

	tagList := types.SplitTags(tags)
	if len(tagList) > types.MaxTags {
		tagList = tagList[:types.MaxTags]
	}
	if fixed := types.JoinTags(tagList); fixed != tags {
		tags = fixed
		changed = true
	}

	if !types.Status(status).Valid() {
		status = string(types.StatusOpen)
		changed = true
	}

	return [4]string{title, description, tags, status}, changed
}

// truncateRunes hard-cuts s at max runes. Counting runes rather than bytes
// means a multi-byte character is never split; no word-boundary logic.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// tableExists reports whether a table with the given name exists.
func tableExists(tx *sql.Tx, name string) (bool, error) {
	var found string
	err := tx.QueryRow(
		"SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?", name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking for table %s: %w", name, err)
	}
	return true, nil
}

// tableColumns returns the set of column names of a table.
func tableColumns(tx *sql.Tx, name string) (map[string]bool, error) {
	rows, err := tx.Query("SELECT name FROM pragma_table_info(?)", name)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", name, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, fmt.Errorf("scanning column name: %w", err)
		}
		columns[strings.ToLower(column)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns of %s: %w", name, err)
	}
	return columns, nil
}

// Search: the FTS5 mirror of the issue table and the two search paths.
// The triggers fire inside the same transaction as every insert, update,
// and delete, so the index never observably lags the primary table.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/snags/pkg/types"
)

// ftsSetupScript creates the issues_fts virtual table, the triggers that
// keep it in sync, and backfills it from existing rows.
const ftsSetupScript = `
CREATE VIRTUAL TABLE issues_fts USING fts5(
    title, description, tags, status,
    content='issues', content_rowid='id'
);

CREATE TRIGGER issues_fts_ai AFTER INSERT ON issues BEGIN
    INSERT INTO issues_fts(rowid, title, description, tags, status)
    VALUES (new.id, new.title, new.description, new.tags, new.status);
END;

CREATE TRIGGER issues_fts_ad AFTER DELETE ON issues BEGIN
    INSERT INTO issues_fts(issues_fts, rowid, title, description, tags, status)
    VALUES ('delete', old.id, old.title, old.description, old.tags, old.status);
END;

CREATE TRIGGER issues_fts_au AFTER UPDATE ON issues BEGIN
    INSERT INTO issues_fts(issues_fts, rowid, title, description, tags, status)
    VALUES ('delete', old.id, old.title, old.description, old.tags, old.status);
    INSERT INTO issues_fts(rowid, title, description, tags, status)
    VALUES (new.id, new.title, new.description, new.tags, new.status);
END;

INSERT INTO issues_fts(rowid, title, description, tags, status)
SELECT id, title, description, tags, status FROM issues;
`

// EnableFullTextSearch creates the secondary search structure if absent.
// Safe to call on every startup.
func (s *Store) EnableFullTextSearch() error {
	enabled, err := s.ftsEnabled()
	if err != nil {
		return err
	}
	if enabled {
		return nil
	}

	if err := s.ExecuteScript(ftsSetupScript); err != nil {
		return fmt.Errorf("enabling full-text search: %w", err)
	}
	s.logger.Debug("full-text search index created")
	return nil
}

// ftsEnabled reports whether the issues_fts table exists.
func (s *Store) ftsEnabled() (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	var found string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'issues_fts'",
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking for search index: %w", err)
	}
	return true, nil
}

// SearchIssues performs a case-insensitive substring match against title,
// description, status name, and the joined tag string. Newest first.
func (s *Store) SearchIssues(term string) ([]*types.Issue, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	pattern := "%" + strings.ToLower(term) + "%"
	rows, err := db.Query(
		issueSelect+` WHERE lower(title) LIKE ?
		    OR lower(description) LIKE ?
		    OR lower(status) LIKE ?
		    OR lower(tags) LIKE ?
		ORDER BY id DESC`,
		pattern, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("searching issues: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// FullTextSearch performs a tokenized match over the indexed fields,
// most-relevant first; ties break toward the most recent id. Falls back to
// SearchIssues when the index is absent.
func (s *Store) FullTextSearch(term string) ([]*types.Issue, error) {
	enabled, err := s.ftsEnabled()
	if err != nil {
		return nil, err
	}
	if !enabled {
		return s.SearchIssues(term)
	}

	query := ftsQuery(term)
	if query == "" {
		return []*types.Issue{}, nil
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT i.id, i.title, i.description, i.tags, i.status, i.resolution, i.created_at, i.updated_at
		 FROM issues i
		 JOIN issues_fts ON i.id = issues_fts.rowid
		 WHERE issues_fts MATCH ?
		 ORDER BY issues_fts.rank, i.id DESC`,
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// ftsQuery converts free text into an FTS5 query. Each whitespace-separated
// token becomes a quoted prefix term, so user input can never be parsed as
// FTS syntax and "log" matches "login".
func ftsQuery(term string) string {
	fields := strings.Fields(term)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		escaped := strings.ReplaceAll(field, `"`, `""`)
		tokens = append(tokens, `"`+escaped+`"*`)
	}
	return strings.Join(tokens, " ")
}

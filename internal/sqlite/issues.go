// Issue repository: the sole write and read path for Issue data. Every
// mutating call validates first, then runs inside one transaction.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/snags/pkg/types"
)

const issueSelect = `SELECT id, title, description, tags, status, resolution, created_at, updated_at FROM issues`

// countCurrent is the capacity-rule count: rows whose status still counts
// against the cap.
const countCurrent = `SELECT COUNT(*) FROM issues WHERE status != 'Archived'`

// CreateIssue validates the draft and the current-issue cap, then inserts
// the issue with status Open and store-assigned id and timestamps. On any
// violation it returns before writing.
func (s *Store) CreateIssue(draft types.Draft) (*types.Issue, error) {
	draft = trimDraft(draft)
	if err := types.ValidateDraft(draft); err != nil {
		return nil, err
	}

	var created *types.Issue
	err := s.WithTx(func(tx *sql.Tx) error {
		issue, err := insertIssue(tx, draft)
		if err != nil {
			return err
		}
		created = issue
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("issue created", "id", created.ID, "title", created.Title)
	return created, nil
}

// CreateIssuesBatch validates and inserts all drafts in a single
// transaction. Any single validation failure aborts the entire batch with
// no partial insert. The capacity rule sees the batch as sequential
// creates, so the whole batch must fit under the cap.
func (s *Store) CreateIssuesBatch(drafts []types.Draft) ([]*types.Issue, error) {
	trimmed := make([]types.Draft, len(drafts))
	for i, draft := range drafts {
		trimmed[i] = trimDraft(draft)
		if err := types.ValidateDraft(trimmed[i]); err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
	}

	var created []*types.Issue
	err := s.WithTx(func(tx *sql.Tx) error {
		var current int
		if err := tx.QueryRow(countCurrent).Scan(&current); err != nil {
			return fmt.Errorf("counting current issues: %w", err)
		}
		if err := types.ValidateCapacity(current, len(trimmed)); err != nil {
			return err
		}

		for _, draft := range trimmed {
			issue, err := insertRow(tx, draft)
			if err != nil {
				return err
			}
			created = append(created, issue)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("issue batch created", "count", len(created))
	return created, nil
}

// insertIssue checks the capacity rule and inserts one draft. Runs inside
// the caller's transaction.
func insertIssue(tx *sql.Tx, draft types.Draft) (*types.Issue, error) {
	var current int
	if err := tx.QueryRow(countCurrent).Scan(&current); err != nil {
		return nil, fmt.Errorf("counting current issues: %w", err)
	}
	if err := types.ValidateCapacity(current, 1); err != nil {
		return nil, err
	}
	return insertRow(tx, draft)
}

// insertRow inserts one validated draft and returns the stored issue.
func insertRow(tx *sql.Tx, draft types.Draft) (*types.Issue, error) {
	now := time.Now().UTC().Truncate(time.Second)
	stamp := now.Format(time.RFC3339)

	res, err := tx.Exec(
		`INSERT INTO issues (title, description, tags, status, resolution, created_at, updated_at)
		 VALUES (?, ?, ?, ?, NULL, ?, ?)`,
		draft.Title, draft.Description, types.JoinTags(draft.Tags), string(types.StatusOpen), stamp, stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting issue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted id: %w", err)
	}

	return &types.Issue{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Tags:        draft.Tags,
		Status:      types.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetIssueByID returns the issue with the given id, or ErrNotFound.
func (s *Store) GetIssueByID(id int64) (*types.Issue, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	return scanIssue(db.QueryRow(issueSelect+` WHERE id = ?`, id))
}

// GetAllIssues returns issues ordered by id ascending. Archived issues are
// excluded unless includeArchived is set.
func (s *Store) GetAllIssues(includeArchived bool) ([]*types.Issue, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := issueSelect
	if !includeArchived {
		query += ` WHERE status != 'Archived'`
	}
	query += ` ORDER BY id ASC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// GetIssuesByStatus returns issues with the given status, id ascending.
func (s *Store) GetIssuesByStatus(status types.Status) ([]*types.Issue, error) {
	if !status.Valid() {
		return nil, types.NewValidationError("unknown status %q", string(status))
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(issueSelect+` WHERE status = ? ORDER BY id ASC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("listing issues by status: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// UpdateIssue loads the current row, applies the patch, re-validates the
// resulting row, and rewrites it in place: same id, preserved created_at,
// never a new row. Fails with ErrNotFound, ErrInvalidTransition, or a
// ValidationError, in that order of detection, without writing.
func (s *Store) UpdateIssue(id int64, patch types.Patch) (*types.Issue, error) {
	var updated *types.Issue
	err := s.WithTx(func(tx *sql.Tx) error {
		current, err := scanIssue(tx.QueryRow(issueSelect+` WHERE id = ?`, id))
		if err != nil {
			return err
		}

		next, err := applyPatch(current, patch)
		if err != nil {
			return err
		}
		if err := types.ValidateIssue(next); err != nil {
			return err
		}

		next.UpdatedAt = time.Now().UTC().Truncate(time.Second)
		_, err = tx.Exec(
			`UPDATE issues SET title = ?, description = ?, tags = ?, status = ?, resolution = ?, updated_at = ?
			 WHERE id = ?`,
			next.Title, next.Description, types.JoinTags(next.Tags), string(next.Status),
			nullableString(next.Resolution), next.UpdatedAt.Format(time.RFC3339), next.ID,
		)
		if err != nil {
			return fmt.Errorf("updating issue %d: %w", id, err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("issue updated", "id", updated.ID, "status", string(updated.Status))
	return updated, nil
}

// applyPatch merges a patch into a copy of the current issue, checking
// transition legality when the status changes. The id and created_at are
// never touched. A resolution is stored only while the issue is Resolved
// or Archived; moving back to an active status clears it.
func applyPatch(current *types.Issue, patch types.Patch) (*types.Issue, error) {
	next := *current
	next.Tags = append([]string(nil), current.Tags...)

	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Tags != nil {
		next.Tags = trimTags(patch.Tags)
	}
	if patch.Resolution != nil {
		next.Resolution = strings.TrimSpace(*patch.Resolution)
	}
	if patch.Status != nil {
		if err := types.ValidateTransition(current.Status, *patch.Status); err != nil {
			return nil, err
		}
		next.Status = *patch.Status
	}

	if next.Status == types.StatusOpen || next.Status == types.StatusInProgress {
		next.Resolution = ""
	}
	return &next, nil
}

// DeleteIssue removes the row and its index entry in one transaction.
// Only Open issues are eligible; anything else fails with
// ErrIneligibleForDeletion.
func (s *Store) DeleteIssue(id int64) error {
	err := s.WithTx(func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRow(`SELECT status FROM issues WHERE id = ?`, id).Scan(&status)
		if err == sql.ErrNoRows {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading issue %d: %w", id, err)
		}
		if types.Status(status) != types.StatusOpen {
			return types.ErrIneligibleForDeletion
		}

		if _, err := tx.Exec(`DELETE FROM issues WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting issue %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("issue deleted", "id", id)
	return nil
}

// trimDraft trims the caller-supplied fields the way they will be stored.
func trimDraft(draft types.Draft) types.Draft {
	return types.Draft{
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Tags:        trimTags(draft.Tags),
	}
}

// trimTags trims whitespace around each tag and drops empty entries,
// preserving order.
func trimTags(tags []string) []string {
	var trimmed []string
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return trimmed
}

// nullableString maps the empty string to SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanIssue hydrates one row into a *types.Issue. Maps sql.ErrNoRows to
// ErrNotFound.
func scanIssue(row rowScanner) (*types.Issue, error) {
	var (
		issue      types.Issue
		tags       string
		status     string
		resolution sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&issue.ID, &issue.Title, &issue.Description, &tags, &status, &resolution, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning issue: %w", err)
	}

	issue.Tags = types.SplitTags(tags)
	issue.Status = types.Status(status)
	issue.Resolution = resolution.String

	if issue.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if issue.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &issue, nil
}

// collectIssues hydrates every row of a result set.
func collectIssues(rows *sql.Rows) ([]*types.Issue, error) {
	issues := []*types.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issues: %w", err)
	}
	return issues, nil
}

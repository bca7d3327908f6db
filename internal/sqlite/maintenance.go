// Maintenance and backup: point-in-time snapshots, validated restore,
// space reclamation, and store statistics.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/snags/pkg/types"
)

// backupTimeFormat names backup files by creation time.
const backupTimeFormat = "20060102150405"

// CreateBackup produces a consistent point-in-time copy of the store file
// in the backup directory and returns its path. VACUUM INTO is SQLite's
// online-copy mechanism: it snapshots committed state through the
// connection, so a half-written page can never be captured the way a raw
// file copy could while WAL content is buffered.
func (s *Store) CreateBackup() (string, error) {
	backupDir := s.config.ResolvedBackupDir()
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	name := fmt.Sprintf("snags_backup_%s_%s.db",
		time.Now().UTC().Format(backupTimeFormat), uuid.NewString()[:8])
	backupPath := filepath.Join(backupDir, name)

	if _, err := s.Execute("VACUUM INTO ?", backupPath); err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("writing backup: %w", err)
	}

	s.logger.Info("backup created", "path", backupPath)
	return backupPath, nil
}

// RestoreFromBackup validates that the candidate file is a well-formed
// store, then atomically swaps it in for the live file. If validation
// fails, the live store is left untouched and ErrInvalidBackup is
// returned. The handle stays usable afterwards, now serving the restored
// contents.
func (s *Store) RestoreFromBackup(backupPath string) error {
	if err := validateBackup(backupPath); err != nil {
		return err
	}

	livePath := s.config.DatabasePath()

	// Stage a copy next to the live file so the final rename is atomic
	// and never crosses filesystems.
	staged, err := stageCopy(backupPath, filepath.Dir(livePath))
	if err != nil {
		return fmt.Errorf("staging backup: %w", err)
	}

	s.mu.Lock()
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.mu.Unlock()
			os.Remove(staged)
			return fmt.Errorf("closing live store: %w", err)
		}
		s.db = nil
	}
	s.mu.Unlock()

	// Stale WAL/SHM files belong to the old store and must not be
	// replayed against the restored file.
	os.Remove(livePath + "-wal")
	os.Remove(livePath + "-shm")

	if err := os.Rename(staged, livePath); err != nil {
		os.Remove(staged)
		return fmt.Errorf("swapping in backup: %w", err)
	}

	db, err := openDatabase(livePath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.db = db
	s.mu.Unlock()

	// A valid backup may predate the current schema; reconcile it the
	// same way a fresh open would before handing the store back.
	if err := s.Setup(); err != nil {
		return err
	}

	s.logger.Info("store restored from backup", "path", backupPath)
	return nil
}

// validateBackup opens the candidate read-only and re-runs the schema
// checks against it: it must pass an integrity check and carry a complete
// issues table. Any failure maps to ErrInvalidBackup.
func validateBackup(backupPath string) error {
	info, err := os.Stat(backupPath)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidBackup, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: %s is not a store file", types.ErrInvalidBackup, backupPath)
	}

	db, err := sql.Open("sqlite", "file:"+backupPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidBackup, err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil || result != "ok" {
		return fmt.Errorf("%w: integrity check failed", types.ErrInvalidBackup)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidBackup, err)
	}
	defer tx.Rollback()

	exists, err := tableExists(tx, "issues")
	if err != nil || !exists {
		return fmt.Errorf("%w: missing issues table", types.ErrInvalidBackup)
	}
	columns, err := tableColumns(tx, "issues")
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidBackup, err)
	}
	for _, name := range requiredColumns {
		if !columns[name] {
			return fmt.Errorf("%w: issues table is missing column %q", types.ErrInvalidBackup, name)
		}
	}
	return nil
}

// stageCopy copies src into dir as a temp file, synced to disk, and
// returns its path.
func stageCopy(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, ".restore-*.db")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}

// Optimize reclaims free space and rebuilds statistics. Advisory only:
// row data never changes.
func (s *Store) Optimize() error {
	if _, err := s.Execute("VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	if _, err := s.Execute("ANALYZE"); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	s.logger.Debug("store optimized")
	return nil
}

// Stats returns row counts per status, file size, and index metadata.
// Read-only; a single consistent view is enough.
func (s *Store) Stats() (*types.Stats, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	stats := &types.Stats{ByStatus: make(map[types.Status]int)}

	rows, err := db.Query("SELECT status, COUNT(*) FROM issues GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting issues: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		stats.ByStatus[types.Status(status)] = count
		stats.TotalIssues += count
		if types.Status(status).Current() {
			stats.CurrentIssues += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}

	if err := db.QueryRow("PRAGMA page_count").Scan(&stats.PageCount); err != nil {
		return nil, fmt.Errorf("reading page count: %w", err)
	}
	if err := db.QueryRow("PRAGMA freelist_count").Scan(&stats.FreePages); err != nil {
		return nil, fmt.Errorf("reading freelist count: %w", err)
	}

	if info, err := os.Stat(s.config.DatabasePath()); err == nil {
		stats.DatabaseBytes = info.Size()
	}

	enabled, err := s.ftsEnabled()
	if err != nil {
		return nil, err
	}
	stats.SearchIndexed = enabled
	if enabled {
		if err := db.QueryRow("SELECT COUNT(*) FROM issues_fts").Scan(&stats.SearchRows); err != nil {
			return nil, fmt.Errorf("counting indexed rows: %w", err)
		}
	}

	return stats, nil
}

// Setup runs the full startup sequence: schema creation or reconciliation,
// constraint migration of existing rows, then the search index.
func (s *Store) Setup() error {
	if err := s.Initialize(); err != nil {
		return err
	}
	if err := s.MigrateToFitConstraints(); err != nil {
		return err
	}
	return s.EnableFullTextSearch()
}

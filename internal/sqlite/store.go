// Package sqlite implements the issue persistence and lifecycle engine on
// top of a single embedded SQLite file. The Store owns the one connection
// to the store file, scopes transactions, keeps the schema current, and is
// the sole read/write path for Issue data.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/snags/pkg/types"
)

// openPragmas are applied to every connection before use. WAL with
// synchronous=NORMAL keeps commits durable at the transaction boundary:
// after a crash the store shows either the pre- or post-state of the
// interrupted transaction, never a torn page.
const openPragmas = `
PRAGMA foreign_keys = ON;
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;
PRAGMA temp_store = MEMORY;
`

// Store owns the lifetime of one connection to the backing store file and
// provides transaction scoping for every multi-statement operation.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	config types.Config
	logger *slog.Logger

	// inTx guards against reentrant WithTx calls. The engine is
	// single-threaded; the mutex only makes misuse detectable.
	inTx bool
}

// Option configures a Store during Open.
type Option func(*Store)

// WithLogger sets the logger used for operational messages.
// The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens or creates the store file under config.DataDir and verifies it
// is usable. Returns an error wrapping ErrStorageUnavailable if the path is
// inaccessible or the file is not a valid store.
func Open(config types.Config, opts ...Option) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data dir: %v", types.ErrStorageUnavailable, err)
	}

	s := &Store{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := openDatabase(config.DatabasePath())
	if err != nil {
		return nil, err
	}
	s.db = db

	s.logger.Debug("store opened", "path", config.DatabasePath())
	return s, nil
}

// openDatabase opens a SQLite database at path and applies the standard
// pragmas. Failures are classified as ErrStorageUnavailable: either the
// path cannot be opened or the file is not a SQLite database.
func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	// One connection: the engine serves one process and SQLite write
	// transactions do not benefit from more.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(openPragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return db, nil
}

// Config returns the configuration the store was opened with.
func (s *Store) Config() types.Config {
	return s.config
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.config.DatabasePath()
}

// Close releases the connection. Idempotent; after Close all operations
// fail with ErrStorageUnavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	s.db = nil
	return nil
}

// conn returns the live database handle or ErrStorageUnavailable after Close.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("%w: store is closed", types.ErrStorageUnavailable)
	}
	return s.db, nil
}

// WithTx begins a transaction, runs body, commits on success, and rolls
// back and returns the body's error on failure. Transactions are not
// nestable: a WithTx call while another is active on this handle fails
// with ErrTransactionConflict.
func (s *Store) WithTx(body func(tx *sql.Tx) error) error {
	s.mu.Lock()
	if s.db == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: store is closed", types.ErrStorageUnavailable)
	}
	if s.inTx {
		s.mu.Unlock()
		return types.ErrTransactionConflict
	}
	s.inTx = true
	db := s.db
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inTx = false
		s.mu.Unlock()
	}()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := body(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Execute runs a single parameterized statement. Writes outside WithTx ride
// SQLite's implicit per-statement transaction, so they are atomic on their
// own. Parameters are always bound, never interpolated.
func (s *Store) Execute(statement string, params ...any) (sql.Result, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	res, err := db.Exec(statement, params...)
	if err != nil {
		return nil, fmt.Errorf("executing statement: %w", err)
	}
	return res, nil
}

// ExecuteBatch runs one parameterized statement once per parameter set,
// inside a single transaction. Any failure rolls back the whole batch.
func (s *Store) ExecuteBatch(statement string, paramSets [][]any) error {
	return s.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(statement)
		if err != nil {
			return fmt.Errorf("preparing batch statement: %w", err)
		}
		defer stmt.Close()

		for _, params := range paramSets {
			if _, err := stmt.Exec(params...); err != nil {
				return fmt.Errorf("executing batch statement: %w", err)
			}
		}
		return nil
	})
}

// ExecuteScript runs a raw multi-statement script. Used only for trusted,
// engine-owned DDL; data statements go through Execute with bound params.
func (s *Store) ExecuteScript(script string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.Exec(script); err != nil {
		return fmt.Errorf("executing script: %w", err)
	}
	return nil
}

// ConnectionInfo reports the effective pragma settings, for diagnostics.
func (s *Store) ConnectionInfo() (map[string]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"foreign_keys", "journal_mode", "synchronous",
		"busy_timeout", "temp_store", "auto_vacuum",
	}
	info := make(map[string]string, len(pragmas))
	for _, pragma := range pragmas {
		var value string
		if err := db.QueryRow("PRAGMA " + pragma).Scan(&value); err != nil {
			return nil, fmt.Errorf("reading pragma %s: %w", pragma, err)
		}
		info[pragma] = value
	}
	return info, nil
}

package store

import (
	"database/sql"
	"fmt"

	"docledger/internal/ledger"
	"docledger/internal/store/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements ledger.Store on a single SQLite file.
type SQLiteStore struct {
	sqlStore
	path string
}

var _ ledger.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path and applies pending migrations.
// path can be a file path or ":memory:".
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	s, err := OpenSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(s.db, migrations.SQLite); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// OpenSQLiteStore opens the database at path as is, without migrating it.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{sqlStore: sqlStore{db: db, q: sqliteQueries, dialect: migrations.SQLite}, path: path}, nil
}

// OpenSQLite opens and configures a SQLite connection. The pool is limited to
// one connection so an in-memory database is shared by every query.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

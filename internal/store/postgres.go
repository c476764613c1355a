package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"docledger/internal/ledger"
	"docledger/internal/store/migrations"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// PostgresStore implements ledger.Store on PostgreSQL through the pgx driver.
type PostgresStore struct {
	sqlStore
}

var _ ledger.Store = (*PostgresStore)(nil)

// NewPostgresStore connects to dsn, verifies the connection and applies
// pending migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	s, err := OpenPostgresStore(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(s.db, migrations.Postgres); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// OpenPostgresStore connects to dsn and verifies the connection without
// migrating.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return NewPostgresStoreFromDB(db), nil
}

// NewPostgresStoreFromDB wraps an existing connection without migrating it.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{sqlStore: sqlStore{db: db, q: postgresQueries, dialect: migrations.Postgres}}
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"docledger/internal/ledger"
	"docledger/internal/store/migrations"
)

// queries holds the dialect-specific statements of a SQL store.
type queries struct {
	getProject        string
	insertProject     string
	updateProject     string
	projectVersion    string
	insertTransaction string
	listTransactions  string
	projectHashes     string
}

var sqliteQueries = queries{
	getProject:        `select data, version from projects where hash = ?`,
	insertProject:     `insert into projects (hash, data, version, created_at, updated_at) values (?, ?, ?, ?, ?) on conflict (hash) do nothing`,
	updateProject:     `update projects set data = ?, version = ?, updated_at = ? where hash = ? and version = ?`,
	projectVersion:    `select version from projects where hash = ?`,
	insertTransaction: `insert into transactions (hash, type, project_hash, result, kind, message, created_at) values (?, ?, ?, ?, ?, ?, ?)`,
	listTransactions:  `select hash, type, project_hash, result, kind, message, created_at from transactions order by seq desc limit ?`,
	projectHashes:     `select hash from projects order by hash`,
}

var postgresQueries = queries{
	getProject:        `select data, version from projects where hash = $1`,
	insertProject:     `insert into projects (hash, data, version, created_at, updated_at) values ($1, $2, $3, $4, $5) on conflict (hash) do nothing`,
	updateProject:     `update projects set data = $1, version = $2, updated_at = $3 where hash = $4 and version = $5`,
	projectVersion:    `select version from projects where hash = $1`,
	insertTransaction: `insert into transactions (hash, type, project_hash, result, kind, message, created_at) values ($1, $2, $3, $4, $5, $6, $7)`,
	listTransactions:  `select hash, type, project_hash, result, kind, message, created_at from transactions order by seq desc limit $1`,
	projectHashes:     `select hash from projects order by hash`,
}

// sqlStore implements ledger.Store over database/sql. Aggregates are stored
// as JSON documents, one row per project. The version column is the source
// of truth for Project.Version and guards every update.
type sqlStore struct {
	db      *sql.DB
	q       queries
	dialect migrations.Dialect
}

// CheckMigrations reports whether the schema is at the latest embedded version.
func (s *sqlStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db, s.dialect)
}

func (s *sqlStore) Get(ctx context.Context, projectHash string) (*ledger.Project, error) {
	var (
		data    []byte
		version int64
	)
	err := s.db.QueryRowContext(ctx, s.q.getProject, projectHash).Scan(&data, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("querying project: %w", err)
	}
	var p ledger.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding project %s: %w", projectHash, err)
	}
	p.Version = version
	return &p, nil
}

func (s *sqlStore) Create(ctx context.Context, p *ledger.Project, tx *ledger.Transaction) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	return s.inTx(ctx, func(dbtx *sql.Tx) error {
		now := tx.CreatedAt.UTC()
		res, err := dbtx.ExecContext(ctx, s.q.insertProject, p.ProjectHash, string(data), p.Version, now, now)
		if err != nil {
			return fmt.Errorf("inserting project: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking inserted rows: %w", err)
		}
		if n == 0 {
			return ledger.ErrProjectExists
		}
		return s.insertTransaction(ctx, dbtx, tx)
	})
}

func (s *sqlStore) Update(ctx context.Context, p *ledger.Project, tx *ledger.Transaction) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	return s.inTx(ctx, func(dbtx *sql.Tx) error {
		res, err := dbtx.ExecContext(ctx, s.q.updateProject,
			string(data), p.Version, tx.CreatedAt.UTC(), p.ProjectHash, p.Version-1)
		if err != nil {
			return fmt.Errorf("updating project: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking updated rows: %w", err)
		}
		if n == 0 {
			return s.updateMiss(ctx, dbtx, p.ProjectHash)
		}
		return s.insertTransaction(ctx, dbtx, tx)
	})
}

// updateMiss tells a missing row apart from a stale version.
func (s *sqlStore) updateMiss(ctx context.Context, dbtx *sql.Tx, projectHash string) error {
	var version int64
	err := dbtx.QueryRowContext(ctx, s.q.projectVersion, projectHash).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ledger.ErrProjectNotFound
	case err != nil:
		return fmt.Errorf("querying project version: %w", err)
	}
	return fmt.Errorf("stored version %d: %w", version, ledger.ErrProjectModified)
}

func (s *sqlStore) Record(ctx context.Context, tx *ledger.Transaction) error {
	return s.inTx(ctx, func(dbtx *sql.Tx) error {
		return s.insertTransaction(ctx, dbtx, tx)
	})
}

func (s *sqlStore) ListTransactions(ctx context.Context, limit int) ([]*ledger.Transaction, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	rows, err := s.db.QueryContext(ctx, s.q.listTransactions, limit)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []*ledger.Transaction
	for rows.Next() {
		var (
			t         ledger.Transaction
			typ, kind string
			result    int64
			createdAt time.Time
		)
		if err := rows.Scan(&t.Hash, &typ, &t.ProjectHash, &result, &kind, &t.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Type = ledger.TransactionType(typ)
		t.Kind = ledger.Kind(kind)
		t.Result = uint(result)
		t.CreatedAt = createdAt.UTC()
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return out, nil
}

func (s *sqlStore) ProjectHashes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q.projectHashes)
	if err != nil {
		return nil, fmt.Errorf("querying project hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning project hash: %w", err)
		}
		hashes = append(hashes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project hashes: %w", err)
	}
	return hashes, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) insertTransaction(ctx context.Context, dbtx *sql.Tx, tx *ledger.Transaction) error {
	_, err := dbtx.ExecContext(ctx, s.q.insertTransaction,
		tx.Hash, string(tx.Type), tx.ProjectHash, int64(tx.Result), string(tx.Kind), tx.Message, tx.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// inTx runs fn in a database transaction, committing only when fn succeeds.
func (s *sqlStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer dbtx.Rollback()

	if err := fn(dbtx); err != nil {
		return err
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

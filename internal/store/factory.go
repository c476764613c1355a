package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"docledger/internal/config"
	"docledger/internal/ledger"
)

// MigrationChecker is implemented by stores with a versioned schema.
type MigrationChecker interface {
	CheckMigrations() error
}

// NewStoreFromConfig creates a ledger.Store based on the store config type.
// SQL stores are migrated on open unless cfg.SkipMigrations is set.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig) (ledger.Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		open := NewSQLiteStore
		if cfg.SkipMigrations {
			open = OpenSQLiteStore
		}
		s, err := open(filepath.Join(cfg.DataDir, "docledger.db"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("dsn required for postgres store")
		}
		open := NewPostgresStore
		if cfg.SkipMigrations {
			open = OpenPostgresStore
		}
		s, err := open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := NewRedisStore(ctx, RedisOptions{
			Addr:   cfg.RedisAddr,
			DB:     cfg.RedisDB,
			Prefix: cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}

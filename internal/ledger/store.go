package ledger

import (
	"context"
	"time"
)

// Transaction is one journal entry. Every mutating call appends exactly one,
// whether or not it changed the aggregate.
type Transaction struct {
	Hash        string          `json:"hash"`
	Type        TransactionType `json:"type"`
	ProjectHash string          `json:"project_hash"`
	Result      uint            `json:"result"`
	Kind        Kind            `json:"kind"`
	Message     string          `json:"message"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Store persists project aggregates keyed by project hash, plus the
// transaction journal. Implementations must never overwrite an existing
// aggregate on Create.
type Store interface {
	// Get returns the stored project, or (nil, nil) when absent.
	Get(ctx context.Context, projectHash string) (*Project, error)

	// Create inserts a new project and its journal entry atomically.
	// Returns ErrProjectExists if the hash is taken.
	Create(ctx context.Context, p *Project, tx *Transaction) error

	// Update replaces an existing project and appends tx atomically.
	// p.Version must be the stored version plus one. Returns
	// ErrProjectNotFound if the hash is absent and ErrProjectModified if
	// the stored version has moved on.
	Update(ctx context.Context, p *Project, tx *Transaction) error

	// Record appends a journal entry without touching any aggregate.
	Record(ctx context.Context, tx *Transaction) error

	// ListTransactions returns up to limit entries, newest first.
	// A limit <= 0 returns all entries.
	ListTransactions(ctx context.Context, limit int) ([]*Transaction, error)

	// ProjectHashes returns all stored project hashes in ascending order.
	ProjectHashes(ctx context.Context) ([]string, error)

	Close() error
}

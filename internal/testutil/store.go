package testutil

import (
	"context"
	"sync"

	"docledger/internal/ledger"
	"docledger/internal/store"
)

// CountingStore wraps a ledger.Store and counts calls per method, so tests
// can assert how many times an aggregate was written. BeforeUpdate, when
// set, runs ahead of every Update so tests can interleave a competing write.
type CountingStore struct {
	ledger.Store
	BeforeUpdate func(ctx context.Context)

	mu      sync.Mutex
	creates int
	updates int
	records int
}

// NewTestStore returns a CountingStore over a fresh in-memory store.
func NewTestStore() *CountingStore {
	return WrapStore(store.NewMemoryStore())
}

// WrapStore returns a CountingStore over s.
func WrapStore(s ledger.Store) *CountingStore {
	return &CountingStore{Store: s}
}

func (c *CountingStore) Create(ctx context.Context, p *ledger.Project, tx *ledger.Transaction) error {
	c.mu.Lock()
	c.creates++
	c.mu.Unlock()
	return c.Store.Create(ctx, p, tx)
}

func (c *CountingStore) Update(ctx context.Context, p *ledger.Project, tx *ledger.Transaction) error {
	c.mu.Lock()
	c.updates++
	hook := c.BeforeUpdate
	c.mu.Unlock()
	if hook != nil {
		hook(ctx)
	}
	return c.Store.Update(ctx, p, tx)
}

func (c *CountingStore) Record(ctx context.Context, tx *ledger.Transaction) error {
	c.mu.Lock()
	c.records++
	c.mu.Unlock()
	return c.Store.Record(ctx, tx)
}

// Writes returns the number of Create plus Update calls.
func (c *CountingStore) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates + c.updates
}

// Records returns the number of journal-only calls.
func (c *CountingStore) Records() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records
}

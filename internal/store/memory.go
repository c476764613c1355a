package store

import (
	"context"
	"sort"
	"sync"

	"docledger/internal/ledger"
)

// MemoryStore keeps aggregates and the journal in process memory. Values are
// copied on the way in and out so callers never alias stored state.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*ledger.Project
	journal  []ledger.Transaction
}

var _ ledger.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[string]*ledger.Project)}
}

func (m *MemoryStore) Get(_ context.Context, projectHash string) (*ledger.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[projectHash]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (m *MemoryStore) Create(_ context.Context, p *ledger.Project, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.ProjectHash]; ok {
		return ledger.ErrProjectExists
	}
	m.projects[p.ProjectHash] = p.Clone()
	m.journal = append(m.journal, *tx)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, p *ledger.Project, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.projects[p.ProjectHash]
	if !ok {
		return ledger.ErrProjectNotFound
	}
	if stored.Version != p.Version-1 {
		return ledger.ErrProjectModified
	}
	m.projects[p.ProjectHash] = p.Clone()
	m.journal = append(m.journal, *tx)
	return nil
}

func (m *MemoryStore) Record(_ context.Context, tx *ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = append(m.journal, *tx)
	return nil
}

func (m *MemoryStore) ListTransactions(_ context.Context, limit int) ([]*ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.journal)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*ledger.Transaction, 0, n)
	for i := len(m.journal) - 1; i >= 0 && len(out) < n; i-- {
		tx := m.journal[i]
		out = append(out, &tx)
	}
	return out, nil
}

func (m *MemoryStore) ProjectHashes(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hashes := make([]string, 0, len(m.projects))
	for h := range m.projects {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes, nil
}

func (m *MemoryStore) Close() error { return nil }

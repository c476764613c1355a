package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"docledger/internal/ledger"
)

// MemoryVault is an in-memory implementation of the Vault interface, useful
// for testing. It is safe for concurrent use.
type MemoryVault struct {
	name      string
	snapshots map[string]memorySnapshot
	mu        sync.RWMutex
}

type memorySnapshot struct {
	data    []byte
	modTime time.Time
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string]memorySnapshot),
	}
}

// PutSnapshot stores size bytes from r under name.
func (m *MemoryVault) PutSnapshot(_ context.Context, name string, r io.Reader, size int64) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[name] = memorySnapshot{data: data, modTime: time.Now().UTC()}
	return nil
}

// GetSnapshot writes the named snapshot to w.
func (m *MemoryVault) GetSnapshot(_ context.Context, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.snapshots[name]
	if !ok {
		return fmt.Errorf("snapshot not found: %s", name)
	}
	if _, err := io.Copy(w, bytes.NewReader(s.data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns stored snapshots ordered by name.
func (m *MemoryVault) ListSnapshots(_ context.Context) ([]ledger.SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.SnapshotInfo, 0, len(m.snapshots))
	for name, s := range m.snapshots {
		out = append(out, ledger.SnapshotInfo{Name: name, Size: int64(len(s.data)), ModTime: s.modTime})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup(context.Context) error {
	return nil
}

// Compile-time check that MemoryVault implements ledger.Vault interface
var _ ledger.Vault = (*MemoryVault)(nil)

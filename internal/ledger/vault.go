package ledger

import (
	"context"
	"io"
	"time"
)

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Vault stores encrypted snapshots by name. Operations stream through
// io.Reader/io.Writer so snapshots are never required to fit in memory twice.
type Vault interface {
	// PutSnapshot stores size bytes read from r under name, replacing any
	// snapshot of the same name.
	PutSnapshot(ctx context.Context, name string, r io.Reader, size int64) error

	// GetSnapshot writes the named snapshot to w.
	GetSnapshot(ctx context.Context, name string, w io.Writer) error

	// ListSnapshots returns stored snapshots ordered by name.
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)

	// ValidateSetup verifies that the vault is reachable and configured.
	ValidateSetup(ctx context.Context) error
}

package vault

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"docledger/internal/ledger"
)

// runVaultContract checks the behaviour every ledger.Vault must share.
func runVaultContract(t *testing.T, v ledger.Vault) {
	ctx := context.Background()

	tests := []struct {
		name    string
		snap    string
		content string
	}{
		{name: "simple", snap: "snapshot-01.age", content: "hello world"},
		{name: "empty", snap: "snapshot-02.age", content: ""},
		{name: "large", snap: "snapshot-03.age", content: strings.Repeat("x", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.PutSnapshot(ctx, tt.snap, strings.NewReader(tt.content), int64(len(tt.content))); err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}
			var buf bytes.Buffer
			if err := v.GetSnapshot(ctx, tt.snap, &buf); err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if got := buf.String(); got != tt.content {
				t.Errorf("GetSnapshot() = %d bytes, want %d", len(got), len(tt.content))
			}
		})
	}

	t.Run("list ordered by name", func(t *testing.T) {
		infos, err := v.ListSnapshots(ctx)
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		if len(infos) != len(tests) {
			t.Fatalf("len(ListSnapshots()) = %d, want %d", len(infos), len(tests))
		}
		for i, tt := range tests {
			if infos[i].Name != tt.snap {
				t.Errorf("ListSnapshots()[%d].Name = %q, want %q", i, infos[i].Name, tt.snap)
			}
			if infos[i].Size != int64(len(tt.content)) {
				t.Errorf("ListSnapshots()[%d].Size = %d, want %d", i, infos[i].Size, len(tt.content))
			}
		}
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		if err := v.PutSnapshot(ctx, "snapshot-01.age", strings.NewReader("v2"), 2); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		var buf bytes.Buffer
		if err := v.GetSnapshot(ctx, "snapshot-01.age", &buf); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if buf.String() != "v2" {
			t.Errorf("GetSnapshot() = %q, want %q", buf.String(), "v2")
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		var buf bytes.Buffer
		err := v.GetSnapshot(ctx, "nope.age", &buf)
		if err == nil || !strings.Contains(err.Error(), "snapshot not found") {
			t.Errorf("GetSnapshot() error = %v, want snapshot not found", err)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		if err := v.PutSnapshot(ctx, "../escape", strings.NewReader("x"), 1); err == nil {
			t.Error("PutSnapshot() expected error for path traversal name")
		}
	})

	t.Run("validate setup", func(t *testing.T) {
		if err := v.ValidateSetup(ctx); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}

func TestMemoryVault(t *testing.T) {
	runVaultContract(t, NewMemoryVault("test-vault"))
}

func TestMemoryVault_SizeMismatch(t *testing.T) {
	v := NewMemoryVault("test-vault")
	err := v.PutSnapshot(context.Background(), "s.age", strings.NewReader("hello"), 10)
	if err == nil || !strings.Contains(err.Error(), "size mismatch") {
		t.Errorf("PutSnapshot() error = %v, want size mismatch", err)
	}
}

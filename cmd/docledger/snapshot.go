package main

import (
	"context"

	"github.com/spf13/cobra"

	"docledger/internal/app"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Back up and restore the ledger through vaults",
}

var snapshotPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Encrypt every project and upload it to all vaults",
	Args:  cobra.NoArgs,
	RunE: withApp("PushSnapshot", func(ctx context.Context, a *app.DocLedgerApp, _ []string) (any, error) {
		return a.PushSnapshot(ctx)
	}),
}

type restoreResult struct {
	Snapshot string `json:"snapshot"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore NAME",
	Short: "Import the projects of a snapshot that are not stored yet",
	Args:  cobra.ExactArgs(1),
	RunE: withApp("RestoreSnapshot", func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error) {
		passphrase, err := readPassphrase("Passphrase: ", false)
		if err != nil {
			return nil, err
		}
		imported, skipped, err := a.RestoreSnapshot(ctx, args[0], passphrase)
		if err != nil {
			return nil, err
		}
		return restoreResult{Snapshot: args[0], Imported: imported, Skipped: skipped}, nil
	}),
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots in the primary vault",
	Args:  cobra.NoArgs,
	RunE: withApp("ListSnapshots", func(ctx context.Context, a *app.DocLedgerApp, _ []string) (any, error) {
		return a.ListSnapshots(ctx)
	}),
}

var snapshotCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every vault is reachable",
	Args:  cobra.NoArgs,
	RunE: withApp("CheckVaults", func(ctx context.Context, a *app.DocLedgerApp, _ []string) (any, error) {
		if err := a.CheckVaults(ctx); err != nil {
			return nil, err
		}
		return map[string]bool{"ok": true}, nil
	}),
}

func init() {
	snapshotCmd.AddCommand(snapshotPushCmd, snapshotRestoreCmd, snapshotListCmd, snapshotCheckCmd)
}

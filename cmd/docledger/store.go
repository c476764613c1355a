package main

import (
	"context"

	"github.com/spf13/cobra"

	"docledger/internal/app"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the aggregate store",
}

var storeCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the store schema is at the latest migration",
	Args:  cobra.NoArgs,
	RunE: withApp("CheckStore", func(ctx context.Context, a *app.DocLedgerApp, _ []string) (any, error) {
		if err := a.CheckStore(ctx); err != nil {
			return nil, err
		}
		return map[string]bool{"ok": true}, nil
	}),
}

func init() {
	storeCmd.AddCommand(storeCheckCmd)
}

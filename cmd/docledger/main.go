package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"docledger/internal/app"
	"docledger/internal/config"
	"docledger/internal/ledger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a DocLedgerApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "AddFolder", "PushSnapshot").
func newApp(ctx context.Context, operation string) (*app.DocLedgerApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewDocLedgerApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp runs fn against a fresh app and prints its result as JSON.
// Ledger results are folded into the operation status before printing.
func withApp(operation string, fn func(ctx context.Context, a *app.DocLedgerApp, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := newApp(ctx, operation)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); err == nil {
				err = cerr
			}
		}()

		out, err := fn(ctx, a, args)
		if err != nil {
			a.Fail(err)
			return err
		}
		switch res := out.(type) {
		case ledger.ReturnMessage:
			a.Observe(res)
		case ledger.ProjectReturnMessage:
			a.Observe(res.ReturnMessage)
		}
		return printJSON(cmd.OutOrStdout(), out)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readPassphrase prompts on the terminal without echo. DOCLEDGER_PASSPHRASE
// takes precedence so scripts can run non-interactively.
func readPassphrase(prompt string, confirm bool) (string, error) {
	if p := os.Getenv("DOCLEDGER_PASSPHRASE"); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("passphrase required: set DOCLEDGER_PASSPHRASE or run from a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if !confirm {
		return string(first), nil
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passphrases do not match")
	}
	return string(first), nil
}

var rootCmd = &cobra.Command{
	Use:          "docledger",
	Short:        "Hash-addressed document approval ledger",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(subFolderCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(validatorCmd)
	rootCmd.AddCommand(supplierCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.Version = app.Version
}

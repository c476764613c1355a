package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"docledger/internal/config"
	"docledger/internal/encryption"
	"docledger/internal/ledger"
	"docledger/internal/obs"
	"docledger/internal/store"
	"docledger/internal/vault"
)

// Version is stamped into docledger_build_info. Overridden at link time.
var Version = "dev"

// DocLedgerApp is the application layer between the CLI and ledger.Service.
// It constructs all dependencies from config and releases them on Close.
type DocLedgerApp struct {
	cfg       *config.Config
	store     ledger.Store
	vaults    []ledger.Vault
	encryptor ledger.Encryptor
	metrics   *obs.Recorder
	service   *ledger.Service
	op        *Operation
	logger    *slog.Logger
	logFile   *os.File
}

// NewDocLedgerApp creates a fully wired DocLedgerApp from the given config.
// operation identifies the CLI command being run (e.g. "AddFolder", "PushSnapshot").
// The caller must call Close when done.
func NewDocLedgerApp(ctx context.Context, cfg *config.Config, operation string) (*DocLedgerApp, error) {
	op := NewOperation(operation)

	logger, logFile, err := newLogger(cfg.LogDir, op.ID, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	vaults := make([]ledger.Vault, 0, len(cfg.Vaults))
	for _, vc := range cfg.Vaults {
		v, err := vault.NewVaultFromConfig(ctx, vc)
		if err != nil {
			logFile.Close()
			return nil, fmt.Errorf("creating vault %s: %w", vc.Name, err)
		}
		vaults = append(vaults, v)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	st, err := store.NewStoreFromConfig(ctx, cfg.Store)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}
	if cfg.Store.SkipMigrations {
		if err := checkStore(st); err != nil {
			st.Close()
			logFile.Close()
			return nil, err
		}
	}

	metrics := obs.NewRecorder()
	metrics.SetBuildInfo(Version)

	svc := ledger.NewService(st, &slogAdapter{l: logger}, ledger.RealClock{}, ledger.ULIDGenerator{}, metrics)

	logger.Debug("operation started", "operation", op.Name, "store", cfg.Store.Type)

	return &DocLedgerApp{
		cfg:       cfg,
		store:     st,
		vaults:    vaults,
		encryptor: enc,
		metrics:   metrics,
		service:   svc,
		op:        op,
		logger:    logger,
		logFile:   logFile,
	}, nil
}

// Ledger returns the wired service.
func (a *DocLedgerApp) Ledger() *ledger.Service { return a.service }

// OperatorID returns the configured operator, the default creator of projects.
func (a *DocLedgerApp) OperatorID() string { return a.cfg.OperatorID }

// Operation returns the operation record of this invocation.
func (a *DocLedgerApp) Operation() *Operation { return a.op }

// Observe folds an operation result into the invocation status.
func (a *DocLedgerApp) Observe(res ledger.ReturnMessage) {
	a.op.Observe(res.Result)
}

// Fail marks the invocation as failed and logs err.
func (a *DocLedgerApp) Fail(err error) {
	a.op.Fail()
	a.logger.Error("operation failed", "operation", a.op.Name, "error", err)
}

// CheckStore verifies the store schema is at the latest version. Stores
// without a schema always pass.
func (a *DocLedgerApp) CheckStore(_ context.Context) error {
	if err := checkStore(a.store); err != nil {
		return err
	}
	a.logger.Info("store schema current", "store", a.cfg.Store.Type)
	return nil
}

func checkStore(st ledger.Store) error {
	c, ok := st.(store.MigrationChecker)
	if !ok {
		return nil
	}
	if err := c.CheckMigrations(); err != nil {
		return fmt.Errorf("checking store schema: %w", err)
	}
	return nil
}

// SetupEncryption generates the snapshot key pair.
func (a *DocLedgerApp) SetupEncryption(passphrase string) error {
	if err := a.encryptor.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	a.logger.Info("encryption keys created", "type", a.cfg.Encryption.Type)
	return nil
}

// Close finalizes the invocation: it closes the store, writes the metrics
// textfile when one is configured, and closes the log file. The first error
// is returned.
func (a *DocLedgerApp) Close() error {
	var errs []error

	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing store: %w", err))
	}

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}

	a.logger.Info("operation finished", "operation", a.op.Name, "status", a.op.Status)
	if a.logFile != nil {
		a.logFile.Close()
	}

	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

var errNoVaults = errors.New("no vaults configured")

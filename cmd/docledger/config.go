package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"docledger/internal/app"
	"docledger/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		operatorID := uuid.New().String()
		cfg := config.NewConfig(operatorID, defaults.BaseDir)

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Fprintf(w, "Operator ID: %s\n", operatorID)
		fmt.Fprintf(w, "Base Dir:    %s\n", defaults.BaseDir)
		fmt.Fprintln(w, "Run 'docledger config keys' to create the snapshot key pair.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Fprintf(w, "Operator ID: %s\n", cfg.OperatorID)
		fmt.Fprintf(w, "Base Dir:    %s\n", cfg.BaseDir)
		fmt.Fprintf(w, "Log Dir:     %s\n", cfg.LogDir)
		fmt.Fprintf(w, "Store:       %s\n", cfg.Store.Type)
		for _, v := range cfg.Vaults {
			fmt.Fprintf(w, "Vault:       %s (%s)\n", v.Name, v.Type)
		}
		if cfg.Metrics.Textfile != "" {
			fmt.Fprintf(w, "Metrics:     %s\n", cfg.Metrics.Textfile)
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Create the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		passphrase, err := readPassphrase("Passphrase for the private key: ", true)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "SetupEncryption")
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); err == nil {
				err = cerr
			}
		}()

		if err := a.SetupEncryption(passphrase); err != nil {
			a.Fail(err)
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Encryption keys created.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
}

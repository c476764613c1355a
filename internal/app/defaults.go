package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults holds the application default paths.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
	DBDir      string
	KeyDir     string
}

// GetDefaults resolves default paths, checking environment variables first.
// Environment variables:
//   - DOCLEDGER_CONFIG_PATH: config file location (default: ~/.config/docledger.toml)
//   - DOCLEDGER_HOME: base directory for ledger data (default: ~/.local/share/docledger)
func GetDefaults() (Defaults, error) {
	configPath, err := envOrHome("DOCLEDGER_CONFIG_PATH", ".config", "docledger.toml")
	if err != nil {
		return Defaults{}, err
	}
	baseDir, err := envOrHome("DOCLEDGER_HOME", ".local", "share", "docledger")
	if err != nil {
		return Defaults{}, err
	}

	return Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
		DBDir:      filepath.Join(baseDir, "db"),
		KeyDir:     filepath.Join(baseDir, "keys"),
	}, nil
}

// envOrHome returns $key when set, otherwise the path elems joined under the
// user's home directory.
func envOrHome(key string, elems ...string) (string, error) {
	if path := os.Getenv(key); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, elems...)...), nil
}

package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - FASTPIN_CONFIG_PATH: config file location (default: ~/.config/fastpin.toml)
//   - FASTPIN_HOME: base directory for fastpin data (default: ~/.local/share/fastpin)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"data_dir":    filepath.Join(baseDir, "db"),
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking FASTPIN_CONFIG_PATH
// env var first, then falling back to the default ~/.config/fastpin.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("FASTPIN_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "fastpin.toml"), nil
}

// getBaseDir returns the base directory for fastpin data, checking
// FASTPIN_HOME env var first, then falling back to the XDG default
// ~/.local/share/fastpin.
func getBaseDir() (string, error) {
	if path := os.Getenv("FASTPIN_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "fastpin"), nil
}

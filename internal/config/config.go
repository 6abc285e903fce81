package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for fastpin.
type Config struct {
	InstallID string         `toml:"install_id"`
	BaseDir   string         `toml:"base_dir"`
	LogDir    string         `toml:"log_dir"`
	Language  string         `toml:"language"`
	Database  DatabaseConfig `toml:"database"`
	Monitor   MonitorConfig  `toml:"monitor"`
	Cache     CacheConfig    `toml:"cache"`
	Export    ExportConfig   `toml:"export"`
}

// DatabaseConfig represents configuration for the history database.
// This uses a tagged union pattern - the Type field determines which other
// fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory", or "mysql"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite

	// MySQL-specific fields (only used when Type == "mysql")
	Host     string `toml:"host,omitempty"`
	Port     int    `toml:"port,omitempty"`
	Name     string `toml:"name,omitempty"`
	User     string `toml:"user,omitempty"`
	Password string `toml:"password,omitempty"`
}

// MonitorConfig holds clipboard polling settings.
type MonitorConfig struct {
	IntervalMS   int   `toml:"interval_ms"`    // poll interval; defaults to 500
	MaxItemBytes int64 `toml:"max_item_bytes"` // captures larger than this are skipped; 0 = no limit
}

// CacheConfig holds file-cache settings.
type CacheConfig struct {
	// MaxFileBytes bounds how large a source file may be cached into the
	// store. 0 = no bound.
	MaxFileBytes int64 `toml:"max_file_bytes"`
}

// ExportConfig holds paths to the age key pair used for encrypted exports.
type ExportConfig struct {
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(installID, baseDir string) *Config {
	return &Config{
		InstallID: installID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Language:  "en-US",
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Monitor: MonitorConfig{
			IntervalMS:   500,
			MaxItemBytes: 10 << 20,
		},
		Cache: CacheConfig{
			MaxFileBytes: 64 << 20,
		},
		Export: ExportConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "fastpin.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "fastpin.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

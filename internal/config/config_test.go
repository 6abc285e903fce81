package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		InstallID: "test-install-abc",
		BaseDir:   "/home/user/.local/share/fastpin",
		LogDir:    "/home/user/.local/share/fastpin/log",
		Language:  "en-US",
		Database:  DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/fastpin/db"},
		Monitor:   MonitorConfig{IntervalMS: 250, MaxItemBytes: 1024},
		Cache:     CacheConfig{MaxFileBytes: 4096},
		Export: ExportConfig{
			PublicKeyPath:  "/home/user/.local/share/fastpin/keys/fastpin.pub",
			PrivateKeyPath: "/home/user/.local/share/fastpin/keys/fastpin.key",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.InstallID != original.InstallID {
		t.Errorf("InstallID = %q, want %q", got.InstallID, original.InstallID)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Language != "en-US" {
		t.Errorf("Language = %q, want %q", got.Language, "en-US")
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database.DataDir = %q, want %q", got.Database.DataDir, original.Database.DataDir)
	}
	if got.Monitor.IntervalMS != 250 {
		t.Errorf("Monitor.IntervalMS = %d, want %d", got.Monitor.IntervalMS, 250)
	}
	if got.Monitor.MaxItemBytes != 1024 {
		t.Errorf("Monitor.MaxItemBytes = %d, want %d", got.Monitor.MaxItemBytes, 1024)
	}
	if got.Cache.MaxFileBytes != 4096 {
		t.Errorf("Cache.MaxFileBytes = %d, want %d", got.Cache.MaxFileBytes, 4096)
	}
	if got.Export.PublicKeyPath != original.Export.PublicKeyPath {
		t.Errorf("Export.PublicKeyPath = %q, want %q", got.Export.PublicKeyPath, original.Export.PublicKeyPath)
	}
	if got.Export.PrivateKeyPath != original.Export.PrivateKeyPath {
		t.Errorf("Export.PrivateKeyPath = %q, want %q", got.Export.PrivateKeyPath, original.Export.PrivateKeyPath)
	}
}

func TestManager_ReadMySQL(t *testing.T) {
	input := `
install_id = "i1"

[database]
type = "mysql"
host = "db.example.com"
port = 3306
name = "fastpin"
user = "pins"
password = "secret"
`
	m := &Manager{}
	got, err := m.Read(bytes.NewBufferString(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Database.Type != "mysql" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "mysql")
	}
	if got.Database.Host != "db.example.com" || got.Database.Port != 3306 {
		t.Errorf("Database host = (%q, %d)", got.Database.Host, got.Database.Port)
	}
	if got.Database.Name != "fastpin" || got.Database.User != "pins" {
		t.Errorf("Database identity = (%q, %q)", got.Database.Name, got.Database.User)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("install-1", "/data/fastpin")

	if cfg.InstallID != "install-1" {
		t.Errorf("InstallID = %q, want %q", cfg.InstallID, "install-1")
	}
	if cfg.BaseDir != "/data/fastpin" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/fastpin")
	}
	if cfg.LogDir != "/data/fastpin/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/fastpin/log")
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "sqlite")
	}
	if cfg.Monitor.IntervalMS != 500 {
		t.Errorf("Monitor.IntervalMS = %d, want 500", cfg.Monitor.IntervalMS)
	}
	if cfg.Export.PublicKeyPath != "/data/fastpin/keys/fastpin.pub" {
		t.Errorf("Export.PublicKeyPath = %q, want %q", cfg.Export.PublicKeyPath, "/data/fastpin/keys/fastpin.pub")
	}
	if cfg.Export.PrivateKeyPath != "/data/fastpin/keys/fastpin.key" {
		t.Errorf("Export.PrivateKeyPath = %q, want %q", cfg.Export.PrivateKeyPath, "/data/fastpin/keys/fastpin.key")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fastpin.toml")
		cfg := NewConfig("i1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fastpin.toml")
		cfg := NewConfig("i1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fastpin.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.InstallID != "read-test" {
			t.Errorf("InstallID = %q, want %q", got.InstallID, "read-test")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/fastpin.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"fastpin/internal/config"
	"fastpin/internal/database/migrations"
	"fastpin/internal/fastpin"
)

// DatabaseFile is the name of the SQLite database file under the
// configured data directory.
const DatabaseFile = "history.db"

// NewStoreFromConfig opens the configured database backend, applies any
// pending migrations, and returns a ready Store.
func NewStoreFromConfig(cfg config.DatabaseConfig) (*SQLStore, error) {
	var (
		db      *sql.DB
		dialect string
		err     error
	)

	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dialect = "sqlite"
		db, err = OpenSQLite(SQLitePath(cfg))
	case "memory":
		dialect = "sqlite"
		db, err = OpenSQLite(":memory:")
	case "mysql":
		dialect = "mysql"
		db, err = OpenMySQL(cfg.Host, cfg.Port, cfg.Name, cfg.User, cfg.Password)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db, dialect); err != nil {
		db.Close()
		return nil, err
	}

	return NewSQLStore(db, dialect), nil
}

// OpenerFromConfig returns a StoreOpener that opens a fresh store handle
// on each call. Background operations use this instead of sharing the
// foreground connection.
func OpenerFromConfig(cfg config.DatabaseConfig) fastpin.StoreOpener {
	return func() (fastpin.Store, error) {
		return NewStoreFromConfig(cfg)
	}
}

// SQLitePath returns the path of the SQLite database file for cfg.
func SQLitePath(cfg config.DatabaseConfig) string {
	return filepath.Join(cfg.DataDir, DatabaseFile)
}

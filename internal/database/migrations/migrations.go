package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/sqlite/*.sql files/mysql/*.sql
var migrationFiles embed.FS

// MigrationError reports a failed schema migration. The store layer never
// swallows it; the app layer decides whether "already applied" semantics or
// a hard failure are appropriate.
type MigrationError struct {
	Dialect string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrating %s schema: %v", e.Dialect, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// Up runs all pending migrations for the given dialect ("sqlite" or
// "mysql"), bringing the database to the latest schema version. A database
// already at the latest version is success, not an error.
func Up(db *sql.DB, dialect string) error {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return &MigrationError{Dialect: dialect, Err: err}
	}
	// Note: we don't close m because it would close the db connection.
	// The caller owns the db and is responsible for closing it.

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return &MigrationError{Dialect: dialect, Err: err}
	}

	return nil
}

// Version returns the current schema version and dirty flag. A database
// with no schema at all reports version 0.
func Version(db *sql.DB, dialect string) (uint, bool, error) {
	m, err := newMigrate(db, dialect)
	if err != nil {
		return 0, false, &MigrationError{Dialect: dialect, Err: err}
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, &MigrationError{Dialect: dialect, Err: err}
	}
	return version, dirty, nil
}

// newMigrate creates a migrate instance over the embedded files for the
// given dialect.
func newMigrate(db *sql.DB, dialect string) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, "files/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	var dbDriver migratedb.Driver
	switch dialect {
	case "sqlite":
		dbDriver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case "mysql":
		dbDriver, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		err = fmt.Errorf("unknown dialect: %s", dialect)
	}
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dialect, dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

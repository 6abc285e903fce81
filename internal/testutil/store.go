package testutil

import (
	"testing"

	"fastpin/internal/database"
	"fastpin/internal/database/migrations"
)

// NewTestStore creates a new in-memory SQLite store with all migrations
// applied. The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *database.SQLStore {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.Up(db, "sqlite"); err != nil {
		db.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	store := database.NewSQLStore(db, "sqlite")

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

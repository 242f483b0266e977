// Package databasetest opens throwaway SQLite databases for tests.
package databasetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/iliyamo/vacation-rental/internal/database"
)

// Open returns a migrated SQLite database living in t.TempDir().  It is
// closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, database.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, SQLite))
	require.NoError(t, Migrate(ctx, db, SQLite))

	for _, table := range []string{"users", "ads", "ad_images", "bookings", "comments"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestForUpdate(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", MySQL.ForUpdate())
	assert.Equal(t, "", SQLite.ForUpdate())
}

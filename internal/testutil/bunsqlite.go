// AngelaMos | 2026
// bunsqlite.go

package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var sqliteSchema = []string{`
CREATE TABLE interpretations (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    emoji         TEXT NOT NULL,
    explanation   TEXT NOT NULL,
    owner_user_id TEXT NOT NULL,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CONSTRAINT interpretations_emoji_key UNIQUE (emoji)
)`, `
CREATE TABLE log_entries (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    message    TEXT NOT NULL,
    level      TEXT NOT NULL CHECK (level IN ('INFO', 'WARNING', 'ERROR')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

// NewBunDB returns an in-memory SQLite database with the interpretation
// and log tables. A single connection keeps every query on the same
// in-memory database.
func NewBunDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	for _, stmt := range sqliteSchema {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}

	return db
}

// Package dbtest provides migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/naija-emoji/apiserver/config"
	"github.com/naija-emoji/apiserver/internal/db"
)

// SQLiteConfig returns a config pointing at a fresh SQLite file inside the
// test's temporary directory.
func SQLiteConfig(t testing.TB) config.Config {
	t.Helper()
	return config.Config{
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "naijaemoji.db"),
		},
	}
}

// NewSQLite returns an open, fully migrated SQLite database that is closed
// when the test ends.
func NewSQLite(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	cfg := SQLiteConfig(t)
	if err := db.Migrate(ctx, cfg, db.Up); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

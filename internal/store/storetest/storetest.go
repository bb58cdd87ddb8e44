// Package storetest opens a migrated Postgres database for integration
// tests. Tests are skipped unless TEST_DATABASE_URL is set.
package storetest

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"geoattend/internal/store"
)

// Open returns a clean, migrated database or skips the test.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
		return nil
	}
	ctx := context.Background()
	db, err := store.NewDB(ctx, url)
	if err != nil {
		_ = db.Close()
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Client.ExecContext(ctx, `TRUNCATE attendance, room, users, admin`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db.Client
}

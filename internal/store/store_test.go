package store

import (
	"context"
	"path/filepath"
	"testing"
)

// openTestDB opens a fresh database under the test's temp directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	db, err := Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

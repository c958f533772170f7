package handler

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/agentkits/memory/internal/config"
	"github.com/agentkits/memory/internal/queue"
	"github.com/agentkits/memory/internal/store"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.db")
	db, err := store.Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Handler{
		DB:        db,
		Queue:     queue.New(db),
		Settings:  config.Default(),
		MemoryDir: dir,
		SelfExe:   "/bin/true",
		Log:       slog.New(slog.DiscardHandler),
	}
}

package worker

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/agentkits/memory/internal/provider"
	"github.com/agentkits/memory/internal/queue"
	"github.com/agentkits/memory/internal/store"
)

type fakeAIProvider struct {
	available bool
	response  *string
}

func (f *fakeAIProvider) Name() string      { return "fake" }
func (f *fakeAIProvider) IsAvailable() bool { return f.available }
func (f *fakeAIProvider) Run(ctx context.Context, userPrompt, systemPrompt string, timeoutMs int) *string {
	return f.response
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Name() string      { return "fake" }
func (f *fakeEmbedder) Dimension() int    { return len(f.vec) }
func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	db, err := store.Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return Deps{
		DB:    db,
		Queue: queue.New(db),
		Log:   slog.New(slog.DiscardHandler),
	}
}

var _ provider.AIProvider = (*fakeAIProvider)(nil)
var _ provider.EmbeddingProvider = (*fakeEmbedder)(nil)

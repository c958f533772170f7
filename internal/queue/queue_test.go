package queue

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/store"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	db, err := store.Open(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestEnqueueAndClaim(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, model.TaskEmbed, "observations", "obs-1", 1000); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if _, err := q.Enqueue(ctx, model.TaskEmbed, "observations", "obs-2", 2000); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if _, err := q.Enqueue(ctx, model.TaskEnrich, "observations", "obs-1", 1000); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	claimed, err := q.Claim(ctx, model.TaskEmbed, 10)
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if len(claimed) != 2 {
		t.Fatalf("len(claimed) = %d, want 2", len(claimed))
	}
	if claimed[0].TargetID != "obs-1" {
		t.Errorf("claimed[0].TargetID = %q, want obs-1 (oldest first)", claimed[0].TargetID)
	}
	for _, c := range claimed {
		if c.Status != model.TaskProcessing {
			t.Errorf("claimed task status = %v, want processing", c.Status)
		}
	}

	again, err := q.Claim(ctx, model.TaskEmbed, 10)
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second Claim() returned %d tasks, want 0 (already claimed)", len(again))
	}
}

func TestCompleteRemovesTask(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	task, err := q.Enqueue(ctx, model.TaskEmbed, "observations", "obs-1", 1000)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := q.Complete(ctx, task.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	claimed, err := q.Claim(ctx, model.TaskEmbed, 10)
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if len(claimed) != 0 {
		t.Errorf("Claim() after Complete() returned %d tasks, want 0", len(claimed))
	}
}

func TestFailRetriesThenMarksFailed(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	task, err := q.Enqueue(ctx, model.TaskEmbed, "observations", "obs-1", 1000)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	for i := 0; i < model.MaxRetries-1; i++ {
		if err := q.Fail(ctx, task.ID); err != nil {
			t.Fatalf("Fail() error = %v", err)
		}
		counts, err := q.CountByStatus(ctx)
		if err != nil {
			t.Fatalf("CountByStatus() error = %v", err)
		}
		if counts[model.TaskPending] != 1 {
			t.Errorf("after %d failures, pending count = %d, want 1", i+1, counts[model.TaskPending])
		}
	}

	if err := q.Fail(ctx, task.ID); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	counts, err := q.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts[model.TaskFailed] != 1 {
		t.Errorf("after MaxRetries failures, failed count = %d, want 1", counts[model.TaskFailed])
	}
}

func TestReclaimStale(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, model.TaskEmbed, "observations", "obs-1", 1000); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if _, err := q.Claim(ctx, model.TaskEmbed, 10); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	n, err := q.ReclaimStale(ctx, 2000)
	if err != nil {
		t.Fatalf("ReclaimStale() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ReclaimStale() = %d, want 1", n)
	}

	claimed, err := q.Claim(ctx, model.TaskEmbed, 10)
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if len(claimed) != 1 {
		t.Errorf("Claim() after reclaim = %d tasks, want 1", len(claimed))
	}
}

func TestPendingCount(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	n, err := q.PendingCount(ctx, model.TaskEmbed)
	if err != nil {
		t.Fatalf("PendingCount() error = %v", err)
	}
	if n != 0 {
		t.Errorf("PendingCount() on empty queue = %d, want 0", n)
	}

	if _, err := q.Enqueue(ctx, model.TaskEmbed, "observations", "obs-1", 1000); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	n, err = q.PendingCount(ctx, model.TaskEmbed)
	if err != nil {
		t.Fatalf("PendingCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PendingCount() = %d, want 1", n)
	}
}

package worker

import (
	"context"
	"testing"

	"github.com/agentkits/memory/internal/model"
)

func TestRunCompressObservation(t *testing.T) {
	deps := testDeps(t)
	resp := "ran the test suite, all green"
	deps.AI = &fakeAIProvider{available: true, response: &resp}
	ctx := context.Background()

	seedObservation(t, deps, "obs-1")
	if _, err := deps.Queue.Enqueue(ctx, model.TaskCompress, TargetObservations, "obs-1", 1000); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if err := RunCompress(ctx, t.TempDir(), deps); err != nil {
		t.Fatalf("RunCompress() error = %v", err)
	}

	got, err := deps.DB.GetObservation(ctx, "obs-1")
	if err != nil {
		t.Fatalf("GetObservation() error = %v", err)
	}
	if !got.IsCompressed {
		t.Error("IsCompressed = false, want true")
	}
	if got.CompressedSummary == nil || *got.CompressedSummary != resp {
		t.Errorf("CompressedSummary = %v, want %q", got.CompressedSummary, resp)
	}
}

func TestRunCompressSessionProducesDigestAndEnqueuesEmbed(t *testing.T) {
	deps := testDeps(t)
	resp := "digest text"
	deps.AI = &fakeAIProvider{available: true, response: &resp}
	ctx := context.Background()

	seedObservation(t, deps, "obs-1")
	if _, err := deps.Queue.Enqueue(ctx, model.TaskCompress, TargetSessions, "sess-1", 1000); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if err := RunCompress(ctx, t.TempDir(), deps); err != nil {
		t.Fatalf("RunCompress() error = %v", err)
	}

	digest, err := deps.DB.GetSessionDigest(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSessionDigest() error = %v", err)
	}
	if digest.Digest != resp {
		t.Errorf("Digest = %q, want %q", digest.Digest, resp)
	}

	n, err := deps.Queue.PendingCount(ctx, model.TaskEmbed)
	if err != nil {
		t.Fatalf("PendingCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PendingCount(embed) after compress session = %d, want 1", n)
	}
}

func TestRunCompressObservationAlreadyCompressedIsNoop(t *testing.T) {
	deps := testDeps(t)
	resp := "should not be called twice"
	deps.AI = &fakeAIProvider{available: true, response: &resp}
	ctx := context.Background()

	seedObservation(t, deps, "obs-1")
	if err := deps.DB.CompressObservation(ctx, "obs-1", "already done"); err != nil {
		t.Fatalf("CompressObservation() error = %v", err)
	}
	if _, err := deps.Queue.Enqueue(ctx, model.TaskCompress, TargetObservations, "obs-1", 1000); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	if err := RunCompress(ctx, t.TempDir(), deps); err != nil {
		t.Fatalf("RunCompress() error = %v", err)
	}

	got, err := deps.DB.GetObservation(ctx, "obs-1")
	if err != nil {
		t.Fatalf("GetObservation() error = %v", err)
	}
	if *got.CompressedSummary != "already done" {
		t.Errorf("CompressedSummary = %q, want unchanged %q", *got.CompressedSummary, "already done")
	}
}

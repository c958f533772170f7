package handler

import (
	"context"
	"strings"
	"testing"

	"github.com/agentkits/memory/internal/model"
)

func TestSummarizeBuildsCompletedLineWithCountedActivity(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if _, err := h.DB.CreateSession(ctx, "sess-1", "proj", "fix the bug", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	obs := []*model.Observation{
		{ID: "obs-1", SessionID: "sess-1", Project: "proj", ToolName: "Edit", Timestamp: 1000,
			Type: model.ObsWrite, ContentHash: "h1", FilesModified: []string{"main.go"}},
		{ID: "obs-2", SessionID: "sess-1", Project: "proj", ToolName: "Read", Timestamp: 1001,
			Type: model.ObsRead, ContentHash: "h2", FilesRead: []string{"util.go"}},
		{ID: "obs-3", SessionID: "sess-1", Project: "proj", ToolName: "Bash", Timestamp: 1002,
			Type: model.ObsExecute, ContentHash: "h3"},
	}
	for _, o := range obs {
		if _, _, err := h.DB.InsertObservation(ctx, o); err != nil {
			t.Fatalf("InsertObservation() error = %v", err)
		}
	}

	resp := h.Summarize(ctx, HookInput{SessionID: "sess-1", Project: "proj", Prompt: "fix the bug"})
	if !resp.Continue {
		t.Errorf("Summarize() response = %+v, want continue", resp)
	}

	summary, err := h.DB.LatestSessionSummary(ctx, "sess-1")
	if err != nil {
		t.Fatalf("LatestSessionSummary() error = %v", err)
	}
	for _, want := range []string{"file(s) modified", "file(s) read", "command(s) executed"} {
		if !strings.Contains(summary.Completed, want) {
			t.Errorf("Completed = %q, want it to contain %q", summary.Completed, want)
		}
	}

	session, err := h.DB.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.Status != model.SessionCompleted {
		t.Errorf("Status = %v, want completed", session.Status)
	}

	compressPending, err := h.Queue.PendingCount(ctx, model.TaskCompress)
	if err != nil {
		t.Fatalf("PendingCount(compress) error = %v", err)
	}
	if compressPending != 1 {
		t.Errorf("PendingCount(compress) = %d, want 1", compressPending)
	}
}

func TestSummarizeSpawnsEnrichSummaryWhenTranscriptGiven(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if _, err := h.DB.CreateSession(ctx, "sess-1", "proj", "fix it", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	resp := h.Summarize(ctx, HookInput{
		SessionID: "sess-1", Project: "proj", Prompt: "fix it", TranscriptPath: "/tmp/does-not-matter.jsonl",
	})
	if !resp.Continue {
		t.Errorf("Summarize() response = %+v, want continue", resp)
	}
}

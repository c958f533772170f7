package handler

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/agentkits/memory/internal/model"
)

func TestContextReturnsEmptyGuidanceWhenNoPromptsRecorded(t *testing.T) {
	h := newTestHandler(t)
	resp := h.Context(context.Background(), HookInput{Project: "proj", SessionID: "sess-1"})
	if !strings.Contains(resp.AdditionalContext, "agentkits-memory-context") {
		t.Errorf("Context() AdditionalContext = %q, want the empty-guidance wrapper", resp.AdditionalContext)
	}
}

func TestContextBuildsBriefingWhenActivityExists(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if _, err := h.DB.CreateSession(ctx, "sess-1", "proj", "fix the bug", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := h.DB.SavePrompt(ctx, "sess-1", "proj", "fix the bug", 1000); err != nil {
		t.Fatalf("SavePrompt() error = %v", err)
	}

	resp := h.Context(ctx, HookInput{Project: "proj", SessionID: "sess-1"})
	if !strings.HasPrefix(resp.AdditionalContext, "<agentkits-memory-context>") {
		t.Errorf("Context() AdditionalContext = %q, want a wrapped briefing", resp.AdditionalContext)
	}
}

func TestContextSurfacesPriorSessionActivityForNewSession(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if _, err := h.DB.CreateSession(ctx, "sess-1", "proj", "fix the bug", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := h.DB.SavePrompt(ctx, "sess-1", "proj", "fix the bug", 1000); err != nil {
		t.Fatalf("SavePrompt() error = %v", err)
	}
	obs := &model.Observation{
		ID: "obs-1", SessionID: "sess-1", Project: "proj", ToolName: "Edit",
		Timestamp: 1000, Type: model.ObsWrite, Title: "Edited main.go", ContentHash: "h1",
	}
	if _, _, err := h.DB.InsertObservation(ctx, obs); err != nil {
		t.Fatalf("InsertObservation() error = %v", err)
	}

	if _, err := h.DB.CreateSession(ctx, "sess-2", "proj", "continue the fix", 2000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	resp := h.Context(ctx, HookInput{Project: "proj", SessionID: "sess-2"})
	if !strings.Contains(resp.AdditionalContext, "Recent Activity") {
		t.Errorf("Context() for new session missing %q section: %q", "Recent Activity", resp.AdditionalContext)
	}
	if !strings.Contains(resp.AdditionalContext, "Edited main.go") {
		t.Errorf("Context() for new session missing prior session's observation: %q", resp.AdditionalContext)
	}
}

func TestSpawnIfPendingSkipsWhenLockHeldByLiveProcess(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if _, err := h.Queue.Enqueue(ctx, model.TaskEmbed, "observations", "obs-1", 1000); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	lockPath := filepath.Join(h.MemoryDir, "embed-worker.lock")
	if err := os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// SelfExe intentionally left pointing at a binary that would error loudly
	// if invoked, since spawnIfPending must short-circuit on the held lock
	// before ever reaching spawn().
	h.SelfExe = "/nonexistent/binary/should-not-run"
	h.spawnIfPending(ctx, "embed", model.TaskEmbed, "/tmp/project")
}

func TestSpawnIfPendingNoopWhenQueueEmpty(t *testing.T) {
	h := newTestHandler(t)
	h.SelfExe = "/nonexistent/binary/should-not-run"
	h.spawnIfPending(context.Background(), "embed", model.TaskEmbed, "/tmp/project")
}

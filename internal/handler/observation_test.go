package handler

import (
	"context"
	"testing"

	"github.com/agentkits/memory/internal/model"
)

func TestObservationInsertsAndEnqueuesEmbedAndEnrich(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if _, err := h.DB.CreateSession(ctx, "sess-1", "proj", "fix it", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	resp := h.Observation(ctx, HookInput{
		SessionID: "sess-1", Project: "proj", ToolName: "Edit",
		ToolInput:    map[string]any{"file_path": "main.go"},
		ToolResponse: map[string]any{"success": true},
	})
	if !resp.Continue {
		t.Errorf("Observation() response = %+v, want continue", resp)
	}

	session, err := h.DB.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.ObservationCount != 1 {
		t.Errorf("ObservationCount = %d, want 1", session.ObservationCount)
	}

	embedPending, err := h.Queue.PendingCount(ctx, model.TaskEmbed)
	if err != nil {
		t.Fatalf("PendingCount(embed) error = %v", err)
	}
	if embedPending != 1 {
		t.Errorf("PendingCount(embed) = %d, want 1", embedPending)
	}

	enrichPending, err := h.Queue.PendingCount(ctx, model.TaskEnrich)
	if err != nil {
		t.Fatalf("PendingCount(enrich) error = %v", err)
	}
	if enrichPending != 1 {
		t.Errorf("PendingCount(enrich) = %d, want 1", enrichPending)
	}
}

func TestObservationResubmitDoesNotDoubleCount(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if _, err := h.DB.CreateSession(ctx, "sess-1", "proj", "fix it", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	in := HookInput{
		SessionID: "sess-1", Project: "proj", ToolName: "Edit",
		ToolInput:    map[string]any{"file_path": "main.go"},
		ToolResponse: map[string]any{"success": true},
	}

	if resp := h.Observation(ctx, in); !resp.Continue {
		t.Fatalf("Observation() response = %+v, want continue", resp)
	}
	if resp := h.Observation(ctx, in); !resp.Continue {
		t.Fatalf("Observation() response = %+v, want continue", resp)
	}

	session, err := h.DB.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.ObservationCount != 1 {
		t.Errorf("ObservationCount = %d, want 1 after resubmitting the same observation", session.ObservationCount)
	}
}

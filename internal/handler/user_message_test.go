package handler

import (
	"context"
	"strings"
	"testing"
)

func TestUserMessageReportsCountsForProject(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	if _, err := h.DB.CreateSession(ctx, "sess-1", "proj", "fix it", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := h.DB.SavePrompt(ctx, "sess-1", "proj", "fix it", 1000); err != nil {
		t.Fatalf("SavePrompt() error = %v", err)
	}

	line := h.UserMessage(ctx, HookInput{Project: "proj"})
	if !strings.Contains(line, "1 prior session") {
		t.Errorf("UserMessage() = %q, want it to mention 1 prior session", line)
	}
	if !strings.Contains(line, "1 prompt") {
		t.Errorf("UserMessage() = %q, want it to mention 1 prompt", line)
	}
	if !strings.Contains(line, "proj") {
		t.Errorf("UserMessage() = %q, want it to mention the project name", line)
	}
}

func TestUserMessageOnEmptyProject(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	line := h.UserMessage(ctx, HookInput{Project: "empty-proj"})
	if !strings.Contains(line, "0 prior session") {
		t.Errorf("UserMessage() on empty project = %q, want it to mention 0 prior sessions", line)
	}
}

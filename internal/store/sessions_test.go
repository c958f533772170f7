package store

import (
	"context"
	"errors"
	"testing"

	"github.com/agentkits/memory/internal/model"
)

func TestCreateSessionIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a, err := db.CreateSession(ctx, "sess-1", "proj", "fix the bug", 1000)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	b, err := db.CreateSession(ctx, "sess-1", "proj", "a different prompt", 2000)
	if err != nil {
		t.Fatalf("CreateSession() second call error = %v", err)
	}
	if a.Prompt != b.Prompt || a.StartedAt != b.StartedAt {
		t.Errorf("second CreateSession() mutated the existing row: %+v vs %+v", a, b)
	}
}

func TestCreateSessionRecordsResumeParent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateSession(ctx, "sess-1", "proj", "first", 1_000_000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	// within the 30-minute resume window
	child, err := db.CreateSession(ctx, "sess-2", "proj", "second", 1_000_000+5*60*1000)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if child.ParentSessionID == nil || *child.ParentSessionID != "sess-1" {
		t.Errorf("child.ParentSessionID = %v, want sess-1", child.ParentSessionID)
	}

	// far outside the resume window, in a different project, so no parent
	other, err := db.CreateSession(ctx, "sess-3", "other-proj", "third", 1_000_000+5*60*1000)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if other.ParentSessionID != nil {
		t.Errorf("other.ParentSessionID = %v, want nil (different project)", other.ParentSessionID)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetSession(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession() error = %v, want ErrNotFound", err)
	}
}

func TestCompleteAndArchiveSession(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateSession(ctx, "sess-1", "proj", "prompt", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err := db.CompleteSession(ctx, "sess-1", "did the thing", 2000); err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}

	s, err := db.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if s.Status != model.SessionCompleted {
		t.Errorf("Status = %v, want completed", s.Status)
	}
	if s.Summary == nil || *s.Summary != "did the thing" {
		t.Errorf("Summary = %v, want \"did the thing\"", s.Summary)
	}
	if s.EndedAt == nil || *s.EndedAt != 2000 {
		t.Errorf("EndedAt = %v, want 2000", s.EndedAt)
	}

	if err := db.ArchiveSession(ctx, "sess-1"); err != nil {
		t.Fatalf("ArchiveSession() error = %v", err)
	}
	s, err = db.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if s.Status != model.SessionArchived {
		t.Errorf("Status = %v, want archived", s.Status)
	}
}

func TestIncrementObservationCount(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateSession(ctx, "sess-1", "proj", "prompt", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err := db.IncrementObservationCount(ctx, "sess-1"); err != nil {
		t.Fatalf("IncrementObservationCount() error = %v", err)
	}
	if err := db.IncrementObservationCount(ctx, "sess-1"); err != nil {
		t.Fatalf("IncrementObservationCount() error = %v", err)
	}

	s, err := db.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if s.ObservationCount != 2 {
		t.Errorf("ObservationCount = %d, want 2", s.ObservationCount)
	}
}

func TestRecentSessionsOrderedNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateSession(ctx, "sess-1", "proj", "p1", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := db.CreateSession(ctx, "sess-2", "proj", "p2", 2000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	sessions, err := db.RecentSessions(ctx, "proj", 10)
	if err != nil {
		t.Fatalf("RecentSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	if sessions[0].SessionID != "sess-2" {
		t.Errorf("sessions[0].SessionID = %q, want sess-2 (newest first)", sessions[0].SessionID)
	}
}

func TestDeleteSessionCascade(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateSession(ctx, "sess-1", "proj", "prompt", 1000); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := db.SavePrompt(ctx, "sess-1", "proj", "hello", 1000); err != nil {
		t.Fatalf("SavePrompt() error = %v", err)
	}

	if err := db.DeleteSessionCascade(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSessionCascade() error = %v", err)
	}

	if _, err := db.GetSession(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession() after cascade delete error = %v, want ErrNotFound", err)
	}
	prompts, err := db.RecentPrompts(ctx, "sess-1", 10)
	if err != nil {
		t.Fatalf("RecentPrompts() error = %v", err)
	}
	if len(prompts) != 0 {
		t.Errorf("RecentPrompts() after cascade delete = %v, want empty", prompts)
	}
}

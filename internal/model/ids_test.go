package model

import (
	"strings"
	"testing"
)

func TestNewObservationIDFormat(t *testing.T) {
	id := NewObservationID(1700000000000)
	if !strings.HasPrefix(id, "obs_1700000000000_") {
		t.Errorf("NewObservationID = %q, want prefix obs_1700000000000_", id)
	}
	suffix := strings.TrimPrefix(id, "obs_1700000000000_")
	if len(suffix) != 4 {
		t.Errorf("NewObservationID random suffix len = %d, want 4", len(suffix))
	}
}

func TestNewObservationIDUnique(t *testing.T) {
	a := NewObservationID(1700000000000)
	b := NewObservationID(1700000000000)
	if a == b {
		t.Errorf("NewObservationID produced identical ids for the same timestamp: %q", a)
	}
}

func TestNewImportedSessionIDFormat(t *testing.T) {
	id := NewImportedSessionID(42)
	if !strings.HasPrefix(id, "imported_42_") {
		t.Errorf("NewImportedSessionID = %q, want prefix imported_42_", id)
	}
}

func TestSynthesizeSessionID(t *testing.T) {
	if got := SynthesizeSessionID(42); got != "session_42" {
		t.Errorf("SynthesizeSessionID(42) = %q, want session_42", got)
	}
}

func TestObservationEmbeddingTextPrefersCompressedSummary(t *testing.T) {
	summary := "condensed version"
	o := &Observation{Title: "t", Subtitle: "s", Narrative: "n", CompressedSummary: &summary}
	if got := ObservationEmbeddingText(o); got != summary {
		t.Errorf("ObservationEmbeddingText = %q, want %q", got, summary)
	}

	o2 := &Observation{Title: "Read main.go", Subtitle: "main.go", Narrative: "read it", Concepts: []string{"go"}}
	got := ObservationEmbeddingText(o2)
	if !strings.Contains(got, "Read main.go") || !strings.Contains(got, "go") {
		t.Errorf("ObservationEmbeddingText = %q, want to contain title and concepts", got)
	}
}

package model

import "testing"

func TestContentHashIsStableAndOrderSensitive(t *testing.T) {
	a := ContentHash("session-1", "Read", `{"file_path":"/a"}`)
	b := ContentHash("session-1", "Read", `{"file_path":"/a"}`)
	if a != b {
		t.Errorf("ContentHash is not stable: %q vs %q", a, b)
	}

	c := ContentHash("Read", "session-1", `{"file_path":"/a"}`)
	if a == c {
		t.Errorf("ContentHash should be sensitive to argument order, got equal hashes")
	}
}

func TestContentHashDiffersOnContent(t *testing.T) {
	a := ObservationContentHash("s1", "Read", `{"file_path":"/a"}`)
	b := ObservationContentHash("s1", "Read", `{"file_path":"/b"}`)
	if a == b {
		t.Errorf("ObservationContentHash collided for distinct inputs")
	}
}

func TestPromptContentHash(t *testing.T) {
	a := PromptContentHash("proj", "hello")
	b := PromptContentHash("proj", "hello")
	c := PromptContentHash("proj", "goodbye")
	if a != b {
		t.Errorf("PromptContentHash not stable")
	}
	if a == c {
		t.Errorf("PromptContentHash collided for distinct prompts")
	}
}

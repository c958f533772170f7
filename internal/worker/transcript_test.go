package worker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTranscript(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func assistantLine(t *testing.T, content any) string {
	t.Helper()
	raw, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	line, err := json.Marshal(map[string]json.RawMessage{
		"type":    json.RawMessage(`"assistant"`),
		"message": json.RawMessage(`{"content":` + string(raw) + `}`),
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return string(line)
}

func TestLastAssistantTextMissingFile(t *testing.T) {
	text, err := LastAssistantText(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("LastAssistantText() error = %v", err)
	}
	if text != "" {
		t.Errorf("LastAssistantText() on missing file = %q, want empty", text)
	}
}

func TestLastAssistantTextStringContent(t *testing.T) {
	path := writeTranscript(t, []string{
		assistantLine(t, "first message"),
		`{"type":"user","message":{"content":"ignored"}}`,
		assistantLine(t, "final message"),
	})

	got, err := LastAssistantText(path)
	if err != nil {
		t.Fatalf("LastAssistantText() error = %v", err)
	}
	if got != "final message" {
		t.Errorf("LastAssistantText() = %q, want %q", got, "final message")
	}
}

func TestLastAssistantTextBlockContent(t *testing.T) {
	blocks := []transcriptContentBlock{
		{Type: "text", Text: "part one"},
		{Type: "tool_use", Text: ""},
		{Type: "text", Text: "part two"},
	}
	path := writeTranscript(t, []string{assistantLine(t, blocks)})

	got, err := LastAssistantText(path)
	if err != nil {
		t.Fatalf("LastAssistantText() error = %v", err)
	}
	if got != "part one\npart two" {
		t.Errorf("LastAssistantText() = %q, want %q", got, "part one\npart two")
	}
}

func TestLastAssistantTextStripsSystemReminders(t *testing.T) {
	path := writeTranscript(t, []string{
		assistantLine(t, "before <system-reminder>hidden stuff</system-reminder> after"),
	})

	got, err := LastAssistantText(path)
	if err != nil {
		t.Fatalf("LastAssistantText() error = %v", err)
	}
	if strings.Contains(got, "hidden stuff") {
		t.Errorf("LastAssistantText() = %q, did not strip system-reminder span", got)
	}
	if !strings.Contains(got, "before") || !strings.Contains(got, "after") {
		t.Errorf("LastAssistantText() = %q, stripped too much", got)
	}
}

func TestLastAssistantTextTruncatesToMax(t *testing.T) {
	long := strings.Repeat("x", transcriptMaxChars+500)
	path := writeTranscript(t, []string{assistantLine(t, long)})

	got, err := LastAssistantText(path)
	if err != nil {
		t.Fatalf("LastAssistantText() error = %v", err)
	}
	if len(got) != transcriptMaxChars {
		t.Errorf("len(LastAssistantText()) = %d, want %d", len(got), transcriptMaxChars)
	}
}

func TestLastAssistantTextNoAssistantEntry(t *testing.T) {
	path := writeTranscript(t, []string{`{"type":"user","message":{"content":"hi"}}`})

	got, err := LastAssistantText(path)
	if err != nil {
		t.Fatalf("LastAssistantText() error = %v", err)
	}
	if got != "" {
		t.Errorf("LastAssistantText() with no assistant entry = %q, want empty", got)
	}
}

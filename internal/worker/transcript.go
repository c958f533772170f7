package worker

import (
	"bufio"
	"encoding/json"
	"os"
	"regexp"
	"strings"
)

// transcriptMaxChars bounds the extracted assistant text returned to the
// caller.
const transcriptMaxChars = 5000

type transcriptLine struct {
	Type    string `json:"type"`
	Message struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type transcriptContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var systemReminderPattern = regexp.MustCompile(`(?s)<[a-zA-Z][\w-]*>.*?</[a-zA-Z][\w-]*>`)

// LastAssistantText reads a JSON-lines transcript file backwards and returns
// the concatenated text blocks of the most recent "assistant" entry, with
// any XML-like system-reminder spans stripped and the result capped at
// transcriptMaxChars. Returns "" if the file is missing, empty, or has no
// assistant entry.
func LastAssistantText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	for i := len(lines) - 1; i >= 0; i-- {
		var tl transcriptLine
		if err := json.Unmarshal([]byte(lines[i]), &tl); err != nil {
			continue
		}
		if tl.Type != "assistant" {
			continue
		}
		text := extractAssistantText(tl.Message.Content)
		if text == "" {
			continue
		}
		text = systemReminderPattern.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
		if len(text) > transcriptMaxChars {
			text = text[:transcriptMaxChars]
		}
		return text, nil
	}
	return "", nil
}

func extractAssistantText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var blocks []transcriptContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

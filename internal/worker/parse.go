package worker

import "strings"

// stripJSONFences trims a Markdown code fence (```json ... ``` or ``` ...
// ```) wrapped around a model's JSON response, tolerating surrounding
// whitespace. Text with no fence passes through unchanged.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && strings.TrimSpace(s[:nl]) != "" {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func capToStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// clampConfidence bounds an AI-reported confidence to [0,1] and penalizes
// results whose informative fields are short or empty.
func clampConfidence(reported float64, fields ...string) float64 {
	c := reported
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	nonEmpty := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			nonEmpty++
		}
	}
	if len(fields) == 0 {
		return c
	}
	return c * float64(nonEmpty) / float64(len(fields))
}

package retrieval

import "testing"

func TestSanitizeFTSQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"single term", "bazel", `"bazel"`},
		{"two terms", "go test", `"go" OR "test"`},
		{"strips operators", `bazel;rm -rf`, `"bazel" OR "rm" OR "rf"`},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFTSQuery(tc.query); got != tc.expected {
				t.Errorf("SanitizeFTSQuery(%q) = %q, want %q", tc.query, got, tc.expected)
			}
		})
	}
}

func TestKeywordScore(t *testing.T) {
	tests := []struct {
		name    string
		content string
		query   string
		min     float64
	}{
		{"empty query floors at 0.3", "anything", "", 0.3},
		{"no match floors at 0.3", "anything", "nowhere", 0.3},
		{"early match scores high", "bazel build system", "bazel", 0.9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := keywordScore(tc.content, tc.query)
			if got < tc.min {
				t.Errorf("keywordScore(%q, %q) = %v, want >= %v", tc.content, tc.query, got, tc.min)
			}
		})
	}
}

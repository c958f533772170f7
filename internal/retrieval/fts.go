package retrieval

import (
	"strings"
	"unicode"
)

// SanitizeFTSQuery strips operator characters (keeping letters, digits —
// including CJK ideographs, which Unicode classifies as letters — and
// whitespace), splits on whitespace, and quotes each term so the FTS5
// trigram tokenizer treats it literally, joining terms with OR.
func SanitizeFTSQuery(query string) string {
	var b strings.Builder
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	terms := strings.Fields(b.String())
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " OR ")
}

// keywordScore computes a positional keyword score: a row that reached this
// stage already matched the lexical query, so the floor is 0.3; a direct
// substring hit raises the score toward 1 the earlier it appears.
func keywordScore(content, query string) float64 {
	if query == "" {
		return 0.3
	}
	idx := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if idx < 0 {
		return 0.3
	}
	score := 1 - float64(idx)/500
	if score < 0.3 {
		return 0.3
	}
	return score
}

package model

import (
	"encoding/json"
	"fmt"
)

// MaxPayloadBytes is the ceiling a stored tool_input/tool_response is
// truncated to before persistence.
const MaxPayloadBytes = 5000

// TruncateSentinel is appended to a payload that was cut off.
const TruncateSentinel = "...[truncated]"

// Canonicalize renders an arbitrary payload (already-a-string, a JSON
// object/array, or nil) as a single canonical string suitable for hashing
// and storage. It never panics: unknown shapes fall back to their
// fmt.Sprintf representation.
func Canonicalize(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// TruncatePayload bounds a canonical payload string to MaxPayloadBytes,
// appending TruncateSentinel when truncation occurred.
func TruncatePayload(s string) string {
	if len(s) <= MaxPayloadBytes {
		return s
	}
	return s[:MaxPayloadBytes] + TruncateSentinel
}

// DecodePayload tolerantly decodes a canonical payload string into a map.
// A payload that is not a JSON object (a bare string, a JSON scalar, empty,
// or malformed JSON) decodes to an empty map rather than an error: every
// derivation function downstream treats a missing field as "absent", never
// as a fatal condition.
func DecodePayload(canonical string) map[string]any {
	if canonical == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(canonical), &m); err != nil {
		return map[string]any{}
	}
	return m
}

// StringField extracts a string field from a tolerantly-decoded payload,
// returning "" when absent or of the wrong type.
func StringField(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

package worker

import "testing"

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"fenced with language tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced without language tag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripJSONFences(tc.input); got != tc.expected {
				t.Errorf("stripJSONFences(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestCapToStrings(t *testing.T) {
	if got := capToStrings([]string{"a", "b", "c"}, 2); len(got) != 2 {
		t.Errorf("len(capToStrings(3 items, 2)) = %d, want 2", len(got))
	}
	if got := capToStrings([]string{"a"}, 5); len(got) != 1 {
		t.Errorf("len(capToStrings(1 item, 5)) = %d, want 1", len(got))
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		name     string
		reported float64
		fields   []string
		want     float64
	}{
		{"in range, all fields set", 0.8, []string{"a", "b"}, 0.8},
		{"above 1 clamps", 1.5, []string{"a"}, 1.0},
		{"below 0 clamps", -0.5, []string{"a"}, 0},
		{"no fields passed through unscaled", 0.9, nil, 0.9},
		{"half empty fields halves score", 1.0, []string{"a", ""}, 0.5},
		{"all empty fields zeroes score", 1.0, []string{"", ""}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampConfidence(tc.reported, tc.fields...); got != tc.want {
				t.Errorf("clampConfidence(%v, %v) = %v, want %v", tc.reported, tc.fields, got, tc.want)
			}
		})
	}
}

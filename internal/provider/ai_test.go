package provider

import (
	"context"
	"os"
	"testing"
)

type fakeProvider struct {
	available bool
}

func (f *fakeProvider) Name() string      { return "fake" }
func (f *fakeProvider) IsAvailable() bool { return f.available }
func (f *fakeProvider) Run(ctx context.Context, userPrompt, systemPrompt string, timeoutMs int) *string {
	return nil
}

func TestEnrichmentOverride(t *testing.T) {
	tests := []struct {
		name         string
		env          string
		wantForceOn  bool
		wantForceOff bool
	}{
		{"unset", "", false, false},
		{"true", "true", true, false},
		{"one", "1", true, false},
		{"false", "false", false, true},
		{"zero", "0", false, true},
		{"garbage", "maybe", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("MEMORY_AI", tc.env)
			forceOn, forceOff := EnrichmentOverride()
			if forceOn != tc.wantForceOn || forceOff != tc.wantForceOff {
				t.Errorf("EnrichmentOverride() = (%v, %v), want (%v, %v)", forceOn, forceOff, tc.wantForceOn, tc.wantForceOff)
			}
		})
	}
}

func TestShouldEnrich(t *testing.T) {
	os.Unsetenv("MEMORY_AI")

	if ShouldEnrich(&fakeProvider{available: true}) != true {
		t.Errorf("ShouldEnrich(available) = false, want true")
	}
	if ShouldEnrich(&fakeProvider{available: false}) != false {
		t.Errorf("ShouldEnrich(unavailable) = true, want false")
	}
	if ShouldEnrich(nil) != false {
		t.Errorf("ShouldEnrich(nil) = true, want false")
	}

	t.Setenv("MEMORY_AI", "true")
	if ShouldEnrich(&fakeProvider{available: false}) != true {
		t.Errorf("ShouldEnrich with MEMORY_AI=true override = false, want true")
	}

	t.Setenv("MEMORY_AI", "false")
	if ShouldEnrich(&fakeProvider{available: true}) != false {
		t.Errorf("ShouldEnrich with MEMORY_AI=false override = true, want false")
	}
}

// Package provider implements the AI and embedding abstractions the worker
// pool depends on, plus their concrete transports: a local subprocess chat
// CLI, and two hosted backends shaped after a conventional agent provider
// package (internal/agent/providers/anthropic.go, openai.go).
package provider

import (
	"context"
	"os"
	"strings"
)

// AIProvider runs a single prompt/response exchange against a language
// model. Implementations MUST return a nil text on any
// failure — unavailable, timeout, non-zero exit, empty output — never
// surfacing the failure to the caller as an error value. The caller treats
// a nil result exactly like "the provider had nothing to say".
type AIProvider interface {
	Name() string
	IsAvailable() bool
	Run(ctx context.Context, userPrompt, systemPrompt string, timeoutMs int) *string
}

// EnrichmentOverride reads MEMORY_AI, returning (forceOn, forceOff); both
// are false when the variable is unset or unrecognized.
// It force-enables or force-disables enrichment independent of whatever a
// provider's IsAvailable reports.
func EnrichmentOverride() (forceOn, forceOff bool) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("MEMORY_AI")))
	switch v {
	case "true", "1":
		return true, false
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// ShouldEnrich combines a provider's own availability with the MEMORY_AI
// override to decide whether enrichment work should be attempted at all.
func ShouldEnrich(p AIProvider) bool {
	forceOn, forceOff := EnrichmentOverride()
	if forceOff {
		return false
	}
	if forceOn {
		return true
	}
	return p != nil && p.IsAvailable()
}

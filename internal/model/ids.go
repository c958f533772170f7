package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// randomChars returns n lowercase alphanumeric characters carved out of a
// fresh UUID, the same random-suffix-from-uuid trick used pervasively
// across the pack for short collision-resistant id suffixes.
func randomChars(n int) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(raw) {
		n = len(raw)
	}
	return raw[:n]
}

// NewObservationID mints an id of the form obs_<epoch_ms>_<4 random chars>.
func NewObservationID(now uint64) string {
	return fmt.Sprintf("obs_%d_%s", now, randomChars(4))
}

// NewImportedSessionID mints a fresh session id for an imported session,
// avoiding collision with the id recorded in the export.
func NewImportedSessionID(now uint64) string {
	return fmt.Sprintf("imported_%d_%s", now, randomChars(6))
}

// SynthesizeSessionID produces a fallback session id when the caller did
// not supply one, per the malformed-input error-handling tier.
func SynthesizeSessionID(now uint64) string {
	return fmt.Sprintf("session_%d", now)
}

// ObservationEmbeddingText returns the canonicalized text an observation's
// embedding is computed over.
func ObservationEmbeddingText(o *Observation) string {
	if o.CompressedSummary != nil && *o.CompressedSummary != "" {
		return *o.CompressedSummary
	}
	return strings.Join([]string{o.Title, o.Subtitle, o.Narrative, strings.Join(o.Concepts, " ")}, " ")
}

func SummaryEmbeddingText(s *SessionSummary) string {
	return strings.Join([]string{s.Request, s.Completed, s.NextSteps, s.Notes}, " ")
}

func DigestEmbeddingText(d *SessionDigest) string {
	return d.Digest
}

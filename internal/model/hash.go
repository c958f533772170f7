package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns a stable digest over a canonicalization of an entity's
// defining fields, used for dedup windows. No third-party dependency in the
// retrieved pack offers a content-addressing primitive beyond what
// crypto/sha256 already provides directly, so this is the one place the
// store leans on the standard library rather than the domain stack.
func ContentHash(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// ObservationContentHash hashes the fields that define observation identity
// for the purposes of the 60-second dedup window.
func ObservationContentHash(sessionID, toolName, canonicalToolInput string) string {
	return ContentHash(sessionID, toolName, canonicalToolInput)
}

// PromptContentHash hashes the fields that define prompt identity for the
// 5-minute dedup window.
func PromptContentHash(project, promptText string) string {
	return ContentHash(project, promptText)
}

// MemoryEntryContentHash hashes the fields that define memory-entry identity.
func MemoryEntryContentHash(namespace, key, content string) string {
	return ContentHash(namespace, key, content)
}

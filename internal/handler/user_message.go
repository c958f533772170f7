package handler

import (
	"context"
	"fmt"
)

// UserMessage is read-only: it reports how much prior activity is available
// for the project as a short human-readable status line, meant for a
// diagnostic stream rather than additionalContext.
func (h *Handler) UserMessage(ctx context.Context, in HookInput) string {
	sessions, err := h.DB.RecentSessions(ctx, in.Project, 1_000_000)
	if err != nil {
		h.log().Warn("user-message: count sessions failed", "error", err)
		return "memory: status unavailable"
	}
	observations, err := h.DB.RecentObservationsByProject(ctx, in.Project, 1_000_000)
	if err != nil {
		h.log().Warn("user-message: count observations failed", "error", err)
		return "memory: status unavailable"
	}
	prompts := 0
	for _, s := range sessions {
		p, err := h.DB.RecentPrompts(ctx, s.SessionID, 1_000_000)
		if err != nil {
			continue
		}
		prompts += len(p)
	}

	return fmt.Sprintf("memory: %d prior session(s), %d observation(s), %d prompt(s) available for %s",
		len(sessions), len(observations), prompts, in.Project)
}

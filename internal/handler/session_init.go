package handler

import (
	"context"
	"fmt"

	"github.com/agentkits/memory/internal/model"
)

// SessionInit idempotently upserts a Session, saves the current user prompt
// (with dedup), enqueues its embedding task, and spawns the Embed worker if
// one is not already running.
func (h *Handler) SessionInit(ctx context.Context, in HookInput) HookResponse {
	defer h.sessionLock(in.SessionID)()
	now := model.UnixMilli()

	if _, err := h.DB.CreateSession(ctx, in.SessionID, in.Project, in.Prompt, now); err != nil {
		h.log().Warn("session-init: create session failed", "error", err)
		return ok()
	}

	if in.Prompt != "" {
		p, err := h.DB.SavePrompt(ctx, in.SessionID, in.Project, in.Prompt, now)
		if err != nil {
			h.log().Warn("session-init: save prompt failed", "error", err)
			return ok()
		}
		if _, err := h.Queue.Enqueue(ctx, model.TaskEmbed, "user_prompts", fmt.Sprintf("%d", p.ID), now); err != nil {
			h.log().Warn("session-init: enqueue embed failed", "error", err)
		}
	}

	h.spawnIfPending(ctx, "embed", model.TaskEmbed, in.Cwd)
	return ok()
}

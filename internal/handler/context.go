package handler

import (
	"context"

	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/synth"
)

// Context loads the bounded retrieval view for in.Project and returns it
// as additionalContext. If the store has no recorded activity at
// all, returns short guidance steering the agent toward the save-first
// workflow instead. May spawn idle workers if they have pending work.
func (h *Handler) Context(ctx context.Context, in HookInput) HookResponse {
	defer h.sessionLock(in.SessionID)()
	now := model.UnixMilli()

	prompts, err := h.DB.CountPrompts(ctx)
	if err != nil {
		h.log().Warn("context: count prompts failed", "error", err)
		return ok()
	}
	if prompts == 0 {
		return okWithContext(synth.EmptyGuidance())
	}

	doc, err := synth.Build(ctx, h.DB, in.Project, h.Settings.Context, now)
	if err != nil {
		h.log().Warn("context: build failed", "error", err)
		return ok()
	}

	h.spawnIfPending(ctx, "embed", model.TaskEmbed, in.Cwd)
	h.spawnIfPending(ctx, "enrich", model.TaskEnrich, in.Cwd)
	h.spawnIfPending(ctx, "compress", model.TaskCompress, in.Cwd)

	return okWithContext(doc)
}

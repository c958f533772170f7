package handler

import (
	"context"

	"github.com/agentkits/memory/internal/model"
)

// Observation inserts an Observation using template-only derivation (no AI
// on the hot path), enqueues one embed task and one enrich task, increments
// the session's observation count, and spawns the Embed/Enrich workers if
// their queues are non-empty.
func (h *Handler) Observation(ctx context.Context, in HookInput) HookResponse {
	defer h.sessionLock(in.SessionID)()
	now := model.UnixMilli()

	toolInput := model.TruncatePayload(model.Canonicalize(in.ToolInput))
	toolResponse := model.TruncatePayload(model.Canonicalize(in.ToolResponse))

	latestPrompt, err := h.DB.LatestPromptText(ctx, in.SessionID)
	if err != nil {
		h.log().Warn("observation: latest prompt lookup failed", "error", err)
	}

	derived := model.Derive(model.DerivationInput{
		ToolName:         in.ToolName,
		ToolInputRaw:     toolInput,
		ToolResponseRaw:  toolResponse,
		LatestPromptText: latestPrompt,
	})

	obs := &model.Observation{
		ID:            model.NewObservationID(now),
		SessionID:     in.SessionID,
		Project:       in.Project,
		ToolName:      in.ToolName,
		ToolInput:     toolInput,
		ToolResponse:  toolResponse,
		Cwd:           in.Cwd,
		Timestamp:     now,
		Type:          derived.Type,
		Title:         derived.Title,
		Subtitle:      derived.Subtitle,
		Narrative:     derived.Narrative,
		Facts:         derived.Facts,
		Concepts:      derived.Concepts,
		PromptNumber:  in.PromptNumber,
		FilesRead:     derived.FilesRead,
		FilesModified: derived.FilesModified,
		ContentHash:   model.ObservationContentHash(in.SessionID, in.ToolName, toolInput),
	}

	saved, inserted, err := h.DB.InsertObservation(ctx, obs)
	if err != nil {
		h.log().Warn("observation: insert failed", "error", err)
		return ok()
	}

	if inserted {
		if err := h.DB.IncrementObservationCount(ctx, in.SessionID); err != nil {
			h.log().Warn("observation: increment count failed", "error", err)
		}
	}

	if _, err := h.Queue.Enqueue(ctx, model.TaskEmbed, "observations", saved.ID, now); err != nil {
		h.log().Warn("observation: enqueue embed failed", "error", err)
	}
	if _, err := h.Queue.Enqueue(ctx, model.TaskEnrich, "observations", saved.ID, now); err != nil {
		h.log().Warn("observation: enqueue enrich failed", "error", err)
	}

	h.spawnIfPending(ctx, "embed", model.TaskEmbed, in.Cwd)
	h.spawnIfPending(ctx, "enrich", model.TaskEnrich, in.Cwd)

	return ok()
}

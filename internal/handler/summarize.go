package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentkits/memory/internal/daemon"
	"github.com/agentkits/memory/internal/model"
)

// Summarize aggregates a session's observations into a structured summary,
// persists it, enqueues a compress task for the whole session, marks the
// session completed, and spawns the Compress worker if needed. If a
// transcript path was supplied, it separately fires off a detached
// enrich-summary subprocess that folds AI-derived notes into the summary
// later.
func (h *Handler) Summarize(ctx context.Context, in HookInput) HookResponse {
	defer h.sessionLock(in.SessionID)()
	now := model.UnixMilli()

	observations, err := h.DB.RecentObservations(ctx, in.SessionID, 2000)
	if err != nil {
		h.log().Warn("summarize: load observations failed", "error", err)
		return ok()
	}

	summary := buildSummary(in, observations, now)
	saved, err := h.DB.InsertSessionSummary(ctx, summary)
	if err != nil {
		h.log().Warn("summarize: insert summary failed", "error", err)
		return ok()
	}
	if _, err := h.Queue.Enqueue(ctx, model.TaskEmbed, "session_summaries", fmt.Sprintf("%d", saved.ID), now); err != nil {
		h.log().Warn("summarize: enqueue summary embed failed", "error", err)
	}

	if _, err := h.Queue.Enqueue(ctx, model.TaskCompress, "sessions", in.SessionID, now); err != nil {
		h.log().Warn("summarize: enqueue compress failed", "error", err)
	} else {
		h.spawnIfPending(ctx, "compress", model.TaskCompress, in.Cwd)
	}

	if err := h.DB.CompleteSession(ctx, in.SessionID, summary.Completed, now); err != nil {
		h.log().Warn("summarize: complete session failed", "error", err)
	}

	if in.TranscriptPath != "" {
		h.spawnEnrichSummary(in.SessionID, in.Cwd, in.TranscriptPath)
	}

	return ok()
}

func (h *Handler) spawnEnrichSummary(sessionID, cwd, transcriptPath string) {
	exe := h.SelfExe
	if exe == "" {
		var err error
		exe, err = daemon.SelfPath()
		if err != nil {
			h.log().Warn("summarize: resolve self path failed", "error", err)
			return
		}
	}
	if err := daemon.SpawnDetached(exe, []string{"enrich-summary", sessionID, cwd, transcriptPath}); err != nil {
		h.log().Warn("summarize: spawn enrich-summary failed", "error", err)
	}
}

func buildSummary(in HookInput, observations []*model.Observation, now uint64) *model.SessionSummary {
	var filesRead, filesModified, decisions, errs []string
	seenRead, seenModified := map[string]bool{}, map[string]bool{}
	commandCount := 0

	for _, o := range observations {
		for _, f := range o.FilesRead {
			if !seenRead[f] {
				seenRead[f] = true
				filesRead = append(filesRead, f)
			}
		}
		for _, f := range o.FilesModified {
			if !seenModified[f] {
				seenModified[f] = true
				filesModified = append(filesModified, f)
			}
		}
		if o.Type == model.ObsExecute {
			commandCount++
		}
		for _, fact := range o.Facts {
			switch {
			case strings.Contains(fact, "Errors encountered"):
				errs = append(errs, fmt.Sprintf("%s: %s", o.ToolName, o.Title))
			case strings.HasPrefix(fact, "[DIFF"):
				decisions = append(decisions, fact)
			}
		}
	}

	completed := fmt.Sprintf("%d file(s) modified, %d file(s) read, %d command(s) executed",
		len(filesModified), len(filesRead), commandCount)

	return &model.SessionSummary{
		SessionID:     in.SessionID,
		Project:       in.Project,
		Request:       in.Prompt,
		Completed:     completed,
		FilesRead:     filesRead,
		FilesModified: filesModified,
		NextSteps:     "",
		Notes:         "",
		Decisions:     decisions,
		Errors:        errs,
		PromptNumber:  promptNumberOf(in),
		CreatedAt:     now,
	}
}

func promptNumberOf(in HookInput) int {
	if in.PromptNumber != nil {
		return *in.PromptNumber
	}
	return 0
}

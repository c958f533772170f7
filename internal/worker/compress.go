package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/provider"
)

// TargetSessions marks a compress task that targets a whole session rather
// than a single observation.
const TargetSessions = "sessions"

// CompressTimeoutMs bounds one AI provider call made on behalf of the
// Compress worker.
const CompressTimeoutMs = 20_000

const compressObservationSystemPrompt = `Summarize the following tool invocation in 50 to 150 characters, dense and factual, no preamble.`
const compressSessionSystemPrompt = `Summarize the following coding session in 200 to 500 characters, dense and factual, no preamble.`

// RunCompress drains queued compress tasks. A task whose target_table is
// "observations" compresses one observation; one whose target_table is
// "sessions" compresses every still-uncompressed observation in that
// session and then produces a session digest.
func RunCompress(ctx context.Context, lockDir string, deps Deps) error {
	return run(ctx, lockDir, "compress", deps.Log, func(ctx context.Context) error {
		processed := 0
		var failed []int64
		for processed < BatchLimit {
			tasks, err := deps.Queue.Claim(ctx, model.TaskCompress, 1)
			if err != nil {
				return fmt.Errorf("worker: claim compress task: %w", err)
			}
			if len(tasks) == 0 {
				break
			}
			t := tasks[0]
			var runErr error
			switch t.TargetTable {
			case TargetObservations:
				runErr = compressObservation(ctx, deps, t.TargetID)
			case TargetSessions:
				runErr = compressSession(ctx, deps, t.TargetID)
			default:
				runErr = fmt.Errorf("unknown compress target table %q", t.TargetTable)
			}
			if runErr != nil {
				deps.Log.Warn("compress task failed", "target_table", t.TargetTable, "target_id", t.TargetID, "error", runErr)
				failed = append(failed, t.ID)
			} else {
				_ = deps.Queue.Complete(ctx, t.ID)
			}
			processed++
		}
		for _, id := range failed {
			_ = deps.Queue.Fail(ctx, id)
		}
		return nil
	})
}

func compressObservation(ctx context.Context, deps Deps, observationID string) error {
	if !provider.ShouldEnrich(deps.AI) {
		return fmt.Errorf("compression not available")
	}
	o, err := deps.DB.GetObservation(ctx, observationID)
	if err != nil {
		return err
	}
	if o.IsCompressed {
		return nil
	}
	prompt := fmt.Sprintf("tool: %s\ntitle: %s\nsubtitle: %s\nnarrative: %s", o.ToolName, o.Title, o.Subtitle, o.Narrative)
	text := deps.AI.Run(ctx, prompt, compressObservationSystemPrompt, CompressTimeoutMs)
	if text == nil || strings.TrimSpace(*text) == "" {
		return fmt.Errorf("provider returned no summary")
	}
	return deps.DB.CompressObservation(ctx, o.ID, strings.TrimSpace(*text))
}

func compressSession(ctx context.Context, deps Deps, sessionID string) error {
	if !provider.ShouldEnrich(deps.AI) {
		return fmt.Errorf("compression not available")
	}

	session, err := deps.DB.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	observations, err := deps.DB.RecentObservations(ctx, sessionID, 2000)
	if err != nil {
		return fmt.Errorf("worker: list session observations: %w", err)
	}

	var summaries []string
	var modifiedFiles []string
	for _, o := range observations {
		if !o.IsCompressed {
			if err := compressObservation(ctx, deps, o.ID); err != nil {
				deps.Log.Warn("session compress: observation compress failed", "observation_id", o.ID, "error", err)
				continue
			}
			o, err = deps.DB.GetObservation(ctx, o.ID)
			if err != nil {
				return err
			}
		}
		if o.CompressedSummary != nil {
			summaries = append(summaries, *o.CompressedSummary)
		}
		modifiedFiles = append(modifiedFiles, o.FilesModified...)
	}

	completedLine := ""
	if session.Summary != nil {
		completedLine = *session.Summary
	}

	prompt := fmt.Sprintf("request: %s\ncompleted: %s\nobservations: %s\nmodified files: %s",
		session.Prompt, completedLine, strings.Join(summaries, "; "), strings.Join(modifiedFiles, ", "))
	text := deps.AI.Run(ctx, prompt, compressSessionSystemPrompt, CompressTimeoutMs)
	if text == nil || strings.TrimSpace(*text) == "" {
		return fmt.Errorf("provider returned no digest")
	}

	digest := &model.SessionDigest{
		SessionID:        sessionID,
		Project:          session.Project,
		Digest:           strings.TrimSpace(*text),
		ObservationCount: len(observations),
		CreatedAt:        model.UnixMilli(),
	}
	saved, err := deps.DB.UpsertSessionDigest(ctx, digest)
	if err != nil {
		return fmt.Errorf("worker: save session digest: %w", err)
	}

	_, err = deps.Queue.Enqueue(ctx, model.TaskEmbed, TargetSessionDigests, fmt.Sprintf("%d", saved.ID), model.UnixMilli())
	if err != nil {
		return fmt.Errorf("worker: enqueue digest embed: %w", err)
	}
	return nil
}

package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/agentkits/memory/internal/model"
)

// catchUpConcurrency bounds how many embedding calls the catch-up pass keeps
// in flight at once. Each call is an HTTP round trip to the embedding
// provider; running a handful concurrently shortens the pass without
// overwhelming a local model server.
const catchUpConcurrency = 4

// Target table names used in task_queue.target_table, shared with whatever
// enqueues embed/enrich/compress tasks.
const (
	TargetObservations    = "observations"
	TargetPrompts         = "user_prompts"
	TargetSessionSummaries = "session_summaries"
	TargetSessionDigests  = "session_digests"
)

// RunEmbed drains queued embed tasks, then performs a catch-up pass over
// observations that still have a null embedding, newest first, up to the
// shared batch limit. Prompts, summaries and digests with a null embedding
// are not swept by the catch-up pass. A failed task is handed back to the
// queue only after the claim loop ends, so one run attempts it once.
func RunEmbed(ctx context.Context, lockDir string, deps Deps) error {
	return run(ctx, lockDir, "embed", deps.Log, func(ctx context.Context) error {
		processed := 0
		var failed []int64
		for processed < BatchLimit {
			tasks, err := deps.Queue.Claim(ctx, model.TaskEmbed, 1)
			if err != nil {
				return fmt.Errorf("worker: claim embed task: %w", err)
			}
			if len(tasks) == 0 {
				break
			}
			t := tasks[0]
			if err := embedOne(ctx, deps, t.TargetTable, t.TargetID); err != nil {
				deps.Log.Warn("embed task failed", "target_table", t.TargetTable, "target_id", t.TargetID, "error", err)
				failed = append(failed, t.ID)
			} else {
				_ = deps.Queue.Complete(ctx, t.ID)
			}
			processed++
		}
		for _, id := range failed {
			_ = deps.Queue.Fail(ctx, id)
		}
		return catchUpEmbeddings(ctx, deps, BatchLimit-processed)
	})
}

func embedOne(ctx context.Context, deps Deps, targetTable, targetID string) error {
	if deps.Embed == nil {
		return fmt.Errorf("no embedding provider configured")
	}
	switch targetTable {
	case TargetObservations:
		o, err := deps.DB.GetObservation(ctx, targetID)
		if err != nil {
			return err
		}
		vec, err := deps.Embed.Embed(ctx, model.ObservationEmbeddingText(o))
		if err != nil {
			return err
		}
		return deps.DB.SetObservationEmbedding(ctx, o.ID, vec)
	case TargetPrompts:
		id, err := parsePromptID(targetID)
		if err != nil {
			return err
		}
		text, err := promptTextByID(ctx, deps, id)
		if err != nil {
			return err
		}
		vec, err := deps.Embed.Embed(ctx, text)
		if err != nil {
			return err
		}
		return deps.DB.SetPromptEmbedding(ctx, id, vec)
	case TargetSessionSummaries:
		id, err := parsePromptID(targetID)
		if err != nil {
			return err
		}
		s, err := summaryByID(ctx, deps, id)
		if err != nil {
			return err
		}
		vec, err := deps.Embed.Embed(ctx, model.SummaryEmbeddingText(s))
		if err != nil {
			return err
		}
		return deps.DB.SetSummaryEmbedding(ctx, id, vec)
	case TargetSessionDigests:
		id, err := parsePromptID(targetID)
		if err != nil {
			return err
		}
		g, err := digestByID(ctx, deps, id)
		if err != nil {
			return err
		}
		vec, err := deps.Embed.Embed(ctx, model.DigestEmbeddingText(g))
		if err != nil {
			return err
		}
		return deps.DB.SetDigestEmbedding(ctx, id, vec)
	default:
		return fmt.Errorf("unknown embed target table %q", targetTable)
	}
}

func catchUpEmbeddings(ctx context.Context, deps Deps, remaining int) error {
	if remaining <= 0 || deps.Embed == nil {
		return nil
	}
	obs, err := deps.DB.ObservationsWithNullEmbedding(ctx, remaining)
	if err != nil {
		return fmt.Errorf("worker: catch-up observations: %w", err)
	}
	logCatchUp(deps.Log, len(obs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(catchUpConcurrency)
	for _, o := range obs {
		o := o
		g.Go(func() error {
			vec, err := deps.Embed.Embed(gctx, model.ObservationEmbeddingText(o))
			if err != nil {
				deps.Log.Warn("catch-up embed failed", "observation_id", o.ID, "error", err)
				return nil
			}
			return deps.DB.SetObservationEmbedding(gctx, o.ID, vec)
		})
	}
	return g.Wait()
}

func logCatchUp(log *slog.Logger, n int) {
	if log != nil {
		log.Info("embed catch-up pass", "count", n)
	}
}

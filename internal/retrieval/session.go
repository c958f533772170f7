package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentkits/memory/internal/store"
)

// SearchSession runs hybrid search scoped to one session across its
// observations, prompts, and summaries tables (and its digest, if any),
// scanning up to maxSessionScanRows newest rows per table, and returns a
// single ranked list tagged by source table.
func (e *Engine) SearchSession(ctx context.Context, sessionID, query string, limit int) ([]Hit, error) {
	var queryVec []float32
	if e.Embed != nil {
		if vec, err := e.Embed.Embed(ctx, query); err == nil {
			queryVec = vec
		}
	}

	var all []Hit
	all = append(all, e.scoreObservations(ctx, sessionID, query, queryVec)...)
	all = append(all, e.scorePrompts(ctx, sessionID, query, queryVec)...)
	all = append(all, e.scoreSummaries(ctx, sessionID, query, queryVec)...)
	all = append(all, e.scoreDigest(ctx, sessionID, query, queryVec)...)

	kept := make([]Hit, 0, len(all))
	for _, h := range all {
		if h.FusedScore >= e.Weights.FusedFloor {
			kept = append(kept, h)
		}
	}
	sortByFusedScoreDesc(kept)
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept, nil
}

func (e *Engine) score(sourceTable, id, content, query string, recordVec, queryVec []float32) Hit {
	h := Hit{SourceTable: sourceTable, ID: id, Content: content}
	if strings.Contains(strings.ToLower(content), strings.ToLower(query)) {
		h.KeywordScore = keywordScore(content, query)
	}
	if queryVec != nil && recordVec != nil {
		sim := float64(store.CosineSimilarity(queryVec, recordVec))
		if sim >= e.Weights.SemanticFloor {
			h.SemanticScore = sim
		}
	}
	h.FusedScore = e.Weights.Lexical*h.KeywordScore + e.Weights.Semantic*h.SemanticScore
	return h
}

func (e *Engine) scoreObservations(ctx context.Context, sessionID, query string, queryVec []float32) []Hit {
	obs, err := e.DB.RecentObservations(ctx, sessionID, maxSessionScanRows)
	if err != nil {
		return nil
	}
	out := make([]Hit, 0, len(obs))
	for _, o := range obs {
		content := contentFor("observations", o.Title, o.Subtitle, o.Narrative, strings.Join(o.Concepts, " "))
		if o.CompressedSummary != nil {
			content = *o.CompressedSummary
		}
		out = append(out, e.score("observations", o.ID, content, query, o.Embedding, queryVec))
	}
	return out
}

func (e *Engine) scorePrompts(ctx context.Context, sessionID, query string, queryVec []float32) []Hit {
	prompts, err := e.DB.RecentPrompts(ctx, sessionID, maxSessionScanRows)
	if err != nil {
		return nil
	}
	out := make([]Hit, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, e.score("user_prompts", fmt.Sprintf("%d", p.ID), p.PromptText, query, p.Embedding, queryVec))
	}
	return out
}

func (e *Engine) scoreSummaries(ctx context.Context, sessionID, query string, queryVec []float32) []Hit {
	summaries, err := e.DB.SessionSummaries(ctx, sessionID, maxSessionScanRows)
	if err != nil {
		return nil
	}
	out := make([]Hit, 0, len(summaries))
	for _, s := range summaries {
		content := contentFor("session_summaries", s.Request, s.Completed, s.NextSteps, s.Notes)
		out = append(out, e.score("session_summaries", fmt.Sprintf("%d", s.ID), content, query, s.Embedding, queryVec))
	}
	return out
}

func (e *Engine) scoreDigest(ctx context.Context, sessionID, query string, queryVec []float32) []Hit {
	digest, err := e.DB.GetSessionDigest(ctx, sessionID)
	if err != nil {
		return nil
	}
	return []Hit{e.score("session_digests", strconv.FormatInt(digest.ID, 10), digest.Digest, query, digest.Embedding, queryVec)}
}

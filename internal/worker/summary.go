package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agentkits/memory/internal/provider"
	"github.com/agentkits/memory/internal/store"
)

// EnrichSummaryTimeoutMs bounds the AI call made against a session's
// transcript tail.
const EnrichSummaryTimeoutMs = 20_000

const enrichSummarySystemPrompt = `Given a structured session summary and the last assistant message of the session's transcript, write 1-3 dense sentences of additional notes capturing anything useful the summary's fixed fields do not already show. Respond with plain text only, no preamble, no JSON.`

// RunEnrichSummary reads sessionID's transcript, extracts the last assistant
// message, and asks the AI provider for free-text notes to fold into the
// session's latest summary. A no-op if no summary exists yet, the provider
// is unavailable, or the transcript has no assistant entry.
func RunEnrichSummary(ctx context.Context, deps Deps, sessionID, transcriptPath string) error {
	if !provider.ShouldEnrich(deps.AI) {
		return nil
	}
	summary, err := deps.DB.LatestSessionSummary(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("worker: load summary for enrichment: %w", err)
	}

	text, err := LastAssistantText(transcriptPath)
	if err != nil {
		return fmt.Errorf("worker: read transcript: %w", err)
	}
	if text == "" {
		return nil
	}

	userPrompt := fmt.Sprintf("request: %s\ncompleted: %s\nnext steps: %s\n\ntranscript tail:\n%s",
		summary.Request, summary.Completed, summary.NextSteps, text)
	result := deps.AI.Run(ctx, userPrompt, enrichSummarySystemPrompt, EnrichSummaryTimeoutMs)
	if result == nil || strings.TrimSpace(*result) == "" {
		return fmt.Errorf("provider returned no notes")
	}

	return deps.DB.UpdateSessionSummaryNotes(ctx, summary.ID, strings.TrimSpace(*result))
}

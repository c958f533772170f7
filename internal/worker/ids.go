package worker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/agentkits/memory/internal/model"
)

func parsePromptID(targetID string) (int64, error) {
	id, err := strconv.ParseInt(targetID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("worker: invalid numeric target id %q: %w", targetID, err)
	}
	return id, nil
}

// promptTextByID fetches one user_prompts row's text for embedding.
func promptTextByID(ctx context.Context, deps Deps, id int64) (string, error) {
	p, err := deps.DB.GetPromptByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("worker: prompt text lookup: %w", err)
	}
	return p.PromptText, nil
}

func summaryByID(ctx context.Context, deps Deps, id int64) (*model.SessionSummary, error) {
	return deps.DB.GetSessionSummaryByID(ctx, id)
}

func digestByID(ctx context.Context, deps Deps, id int64) (*model.SessionDigest, error) {
	return deps.DB.GetSessionDigestByID(ctx, id)
}

package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/provider"
)

// EnrichTimeoutMs bounds one AI provider call made on behalf of the Enrich
// worker.
const EnrichTimeoutMs = 20_000

const enrichSystemPrompt = `You analyze a single coding-agent tool invocation and respond with strict JSON only, matching {"subtitle": string, "narrative": string, "facts": string[], "concepts": string[], "confidence": number}. facts has at most 5 entries, concepts at most 8. Do not include any text outside the JSON object.`

type enrichmentResult struct {
	Subtitle   string   `json:"subtitle"`
	Narrative  string   `json:"narrative"`
	Facts      []string `json:"facts"`
	Concepts   []string `json:"concepts"`
	Confidence float64  `json:"confidence"`
}

// RunEnrich drains queued enrich tasks, replacing each observation's
// template-derived fields with an AI-produced structured result. A task
// whose AI call fails, times out, or returns invalid JSON is retried up to
// the queue's retry limit, one attempt per run: a failed task is handed
// back to the queue only after the claim loop ends. On final failure the
// observation's template fields are left unchanged.
func RunEnrich(ctx context.Context, lockDir string, deps Deps) error {
	return run(ctx, lockDir, "enrich", deps.Log, func(ctx context.Context) error {
		if !provider.ShouldEnrich(deps.AI) {
			deps.Log.Info("enrichment disabled, claimed tasks will be failed for a later retry")
		}
		processed := 0
		var failed []int64
		for processed < BatchLimit {
			tasks, err := deps.Queue.Claim(ctx, model.TaskEnrich, 1)
			if err != nil {
				return fmt.Errorf("worker: claim enrich task: %w", err)
			}
			if len(tasks) == 0 {
				break
			}
			t := tasks[0]
			if err := enrichOne(ctx, deps, t.TargetID); err != nil {
				deps.Log.Warn("enrich task failed", "observation_id", t.TargetID, "error", err)
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

func enrichOne(ctx context.Context, deps Deps, observationID string) error {
	if !provider.ShouldEnrich(deps.AI) {
		return fmt.Errorf("enrichment not available")
	}
	o, err := deps.DB.GetObservation(ctx, observationID)
	if err != nil {
		return err
	}

	userPrompt := fmt.Sprintf("tool: %s\ntitle: %s\nnarrative: %s\nfacts: %v",
		o.ToolName, o.Title, o.Narrative, o.Facts)
	text := deps.AI.Run(ctx, userPrompt, enrichSystemPrompt, EnrichTimeoutMs)
	if text == nil {
		return fmt.Errorf("provider returned no output")
	}

	var result enrichmentResult
	if err := json.Unmarshal([]byte(stripJSONFences(*text)), &result); err != nil {
		return fmt.Errorf("invalid enrichment JSON: %w", err)
	}
	if result.Subtitle == "" && result.Narrative == "" && len(result.Facts) == 0 {
		return fmt.Errorf("empty enrichment result")
	}
	result.Facts = capToStrings(result.Facts, 5)
	result.Concepts = capToStrings(result.Concepts, 8)

	return deps.DB.ApplyEnrichment(ctx, o.ID, result.Subtitle, result.Narrative, result.Facts, result.Concepts)
}

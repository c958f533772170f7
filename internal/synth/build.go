package synth

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agentkits/memory/internal/config"
	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/store"
)

const wrapperOpen = "<agentkits-memory-context>"
const wrapperClose = "</agentkits-memory-context>"

const toolGuidance = `Use the memory tools in a progressive-disclosure workflow: search first for candidate entries, inspect the timeline for a session you recognize, then fetch full details only for the rows you actually need.`

// approxCharsPerToken is a rough token estimator, good enough for a
// disclosed-budget footer and nothing load-bearing.
const approxCharsPerToken = 4

// TokenBudget bounds how much of the synthesized document is considered
// "available" for the footer's shown-vs-available accounting.
const TokenBudget = 4000

// Build renders the bounded markdown context document for one project,
// honoring cfg's section toggles and caps. Prompts and observations are
// scoped to the whole project rather than the calling session, so a
// freshly created session's briefing still surfaces prior activity.
func Build(ctx context.Context, db *store.DB, project string, cfg config.ContextConfig, now uint64) (string, error) {
	var sections []string

	if cfg.ShowToolGuidance {
		sections = append(sections, toolGuidance)
	}

	if cfg.ShowSummaries {
		summaries, err := db.RecentSessionSummaries(ctx, project, cfg.MaxSummaries)
		if err != nil {
			return "", fmt.Errorf("synth: load summaries: %w", err)
		}
		if s := renderSummaries(summaries); s != "" {
			sections = append(sections, s)
		}
	}

	if cfg.ShowPrompts {
		prompts, err := db.RecentPromptsByProject(ctx, project, cfg.MaxPrompts)
		if err != nil {
			return "", fmt.Errorf("synth: load prompts: %w", err)
		}
		if s := renderPrompts(prompts); s != "" {
			sections = append(sections, s)
		}
	}

	if cfg.ShowObservations {
		observations, err := db.RecentObservationsByProject(ctx, project, cfg.MaxObservations)
		if err != nil {
			return "", fmt.Errorf("synth: load observations: %w", err)
		}
		if s := renderObservations(observations, now); s != "" {
			sections = append(sections, s)
		}
	}

	body := strings.Join(sections, "\n\n")
	body += "\n\n" + renderFooter(body)

	var b strings.Builder
	b.WriteString(wrapperOpen)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(wrapperClose)
	return b.String(), nil
}

// EmptyGuidance is returned in place of a full document when the store has
// no recorded activity at all, steering the agent toward the save-first
// workflow instead of showing an empty shell.
func EmptyGuidance() string {
	return wrapperOpen + "\n" +
		"No memory recorded yet for this project. Use the observation and summarize commands as you work so future sessions have context to draw on.\n" +
		wrapperClose
}

func renderSummaries(summaries []*model.SessionSummary) string {
	if len(summaries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Previous Session Summaries\n")
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf("- **%s** — %s\n", truncate(s.Request, 100), truncate(s.Completed, 150)))
		if len(s.FilesModified) > 0 {
			b.WriteString(fmt.Sprintf("  - files: %s\n", strings.Join(s.FilesModified, ", ")))
		}
		if len(s.Decisions) > 0 {
			b.WriteString(fmt.Sprintf("  - decisions: %s\n", strings.Join(s.Decisions, "; ")))
		}
		if len(s.Errors) > 0 {
			b.WriteString(fmt.Sprintf("  - errors: %s\n", strings.Join(s.Errors, "; ")))
		}
		if s.NextSteps != "" {
			b.WriteString(fmt.Sprintf("  - next: %s\n", truncate(s.NextSteps, 150)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPrompts(prompts []*model.UserPrompt) string {
	if len(prompts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Recent prompts\n")
	for _, p := range prompts {
		b.WriteString(fmt.Sprintf("- #%d %s\n", p.PromptNumber, truncate(p.PromptText, 200)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderObservations(observations []*model.Observation, now uint64) string {
	if len(observations) == 0 {
		return ""
	}
	grouped := map[int][]*model.Observation{}
	var unordered []*model.Observation
	for _, o := range observations {
		if o.PromptNumber != nil {
			grouped[*o.PromptNumber] = append(grouped[*o.PromptNumber], o)
		} else {
			unordered = append(unordered, o)
		}
	}

	var b strings.Builder
	b.WriteString("## Recent Activity\n")

	if len(grouped) > 0 {
		numbers := make([]int, 0, len(grouped))
		for n := range grouped {
			numbers = append(numbers, n)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(numbers)))
		for _, n := range numbers {
			b.WriteString(fmt.Sprintf("### Prompt #%d\n", n))
			for _, o := range grouped[n] {
				b.WriteString(observationLine(o, now))
			}
		}
	}
	for _, o := range unordered {
		b.WriteString(observationLine(o, now))
	}
	return strings.TrimRight(b.String(), "\n")
}

func observationLine(o *model.Observation, now uint64) string {
	text := o.Title
	if o.CompressedSummary != nil {
		text = *o.CompressedSummary
	} else if o.Subtitle != "" {
		text = o.Subtitle
	} else if o.Title == "" {
		text = o.ToolName
	}

	var intents []string
	for _, c := range o.Concepts {
		if strings.HasPrefix(c, "intent:") {
			intents = append(intents, c)
		}
	}

	line := fmt.Sprintf("- %s %s", typeIcon(o.Type), truncate(text, 200))
	if len(intents) > 0 {
		line += " " + strings.Join(intents, " ")
	}
	line += fmt.Sprintf(" (%s, %s)\n", RelativeTime(o.Timestamp, now), o.ID)
	return line
}

func typeIcon(t model.ObservationType) string {
	switch t {
	case model.ObsRead:
		return "📖"
	case model.ObsWrite:
		return "✏️"
	case model.ObsExecute:
		return "⚙️"
	case model.ObsSearch:
		return "🔍"
	default:
		return "•"
	}
}

func renderFooter(body string) string {
	shown := len(body) / approxCharsPerToken
	return fmt.Sprintf("---\n_~%d / %d tokens shown_", shown, TokenBudget)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

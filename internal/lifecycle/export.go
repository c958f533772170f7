package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/agentkits/memory/internal/model"
)

// ExportVersion is the export format's version field.
const ExportVersion = 1

// ExportDocument is the top-level export JSON shape.
type ExportDocument struct {
	Version  int              `json:"version"`
	Project  string           `json:"project"`
	Sessions []ExportedSession `json:"sessions"`
}

// ExportedSession nests a session's full activity for export/import.
type ExportedSession struct {
	Session      *model.Session        `json:"session"`
	Prompts      []*model.UserPrompt   `json:"prompts"`
	Observations []*model.Observation  `json:"observations"`
	Summary      *model.SessionSummary `json:"summary,omitempty"`
}

// Export gathers every session for a project, with their nested prompts,
// observations, and latest summary, into one export document.
func (m *Manager) Export(ctx context.Context, project string) (*ExportDocument, error) {
	sessions, err := m.DB.RecentSessions(ctx, project, 1_000_000)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: list sessions for export: %w", err)
	}

	doc := &ExportDocument{Version: ExportVersion, Project: project}
	for _, s := range sessions {
		prompts, err := m.DB.RecentPrompts(ctx, s.SessionID, 1_000_000)
		if err != nil {
			return nil, fmt.Errorf("lifecycle: export prompts for %s: %w", s.SessionID, err)
		}
		observations, err := m.DB.RecentObservations(ctx, s.SessionID, 1_000_000)
		if err != nil {
			return nil, fmt.Errorf("lifecycle: export observations for %s: %w", s.SessionID, err)
		}
		summary, err := m.DB.LatestSessionSummary(ctx, s.SessionID)
		var summaryPtr *model.SessionSummary
		if err == nil {
			summaryPtr = summary
		}

		doc.Sessions = append(doc.Sessions, ExportedSession{
			Session:      s,
			Prompts:      prompts,
			Observations: observations,
			Summary:      summaryPtr,
		})
	}
	return doc, nil
}

// ExportToFile writes an export document as JSON to path.
func (m *Manager) ExportToFile(ctx context.Context, project, path string) error {
	doc, err := m.Export(ctx, project)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("lifecycle: marshal export: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("lifecycle: write export file: %w", err)
	}
	return nil
}

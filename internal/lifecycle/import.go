package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/agentkits/memory/internal/model"
)

// ImportWindowMillis is the dedup window applied to prompts and
// observations within one import run. It equals the live prompt dedup
// window; live observation dedup uses a shorter 60-second window.
const ImportWindowMillis = 5 * 60 * 1000

// ImportResult summarizes what one import run did.
type ImportResult struct {
	SessionsImported     int `json:"sessionsImported"`
	PromptsImported      int `json:"promptsImported"`
	PromptsSkipped       int `json:"promptsSkipped"`
	ObservationsImported int `json:"observationsImported"`
	ObservationsSkipped  int `json:"observationsSkipped"`
}

// ImportFromFile reads an export document from path and imports it in one
// transaction, assigning every session a fresh imported_<epoch>_<random>
// id, deduplicating prompts and observations by content hash within the
// import window, and enqueuing fresh embed tasks for every imported row.
func (m *Manager) ImportFromFile(ctx context.Context, path string, now uint64) (*ImportResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: read import file: %w", err)
	}
	var doc ExportDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("lifecycle: parse import file: %w", err)
	}

	tx, err := m.DB.Conn().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: begin import: %w", err)
	}
	defer tx.Rollback()

	result := &ImportResult{}
	for _, es := range doc.Sessions {
		newSessionID := model.NewImportedSessionID(now)

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (session_id, project, prompt, started_at, ended_at, observation_count, summary, status, parent_session_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
			newSessionID, doc.Project, es.Session.Prompt, es.Session.StartedAt, es.Session.EndedAt,
			es.Session.ObservationCount, es.Session.Summary, es.Session.Status,
		); err != nil {
			return nil, fmt.Errorf("lifecycle: import session: %w", err)
		}
		result.SessionsImported++

		for _, p := range es.Prompts {
			imported, newID, err := importPrompt(ctx, tx, newSessionID, doc.Project, p, now)
			if err != nil {
				return nil, err
			}
			if imported {
				result.PromptsImported++
				if _, err := m.Queue.Enqueue(ctx, model.TaskEmbed, "user_prompts", fmt.Sprintf("%d", newID), now); err != nil {
					return nil, fmt.Errorf("lifecycle: enqueue imported prompt embed: %w", err)
				}
			} else {
				result.PromptsSkipped++
			}
		}

		for _, o := range es.Observations {
			imported, newID, err := importObservation(ctx, tx, newSessionID, doc.Project, o, now)
			if err != nil {
				return nil, err
			}
			if imported {
				result.ObservationsImported++
				if _, err := m.Queue.Enqueue(ctx, model.TaskEmbed, "observations", newID, now); err != nil {
					return nil, fmt.Errorf("lifecycle: enqueue imported observation embed: %w", err)
				}
			} else {
				result.ObservationsSkipped++
			}
		}

		if es.Summary != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO session_summaries (session_id, project, request, completed, files_read, files_modified, next_steps, notes, decisions, errors, prompt_number, created_at, embedding)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
				newSessionID, doc.Project, es.Summary.Request, es.Summary.Completed,
				mustJSON(es.Summary.FilesRead), mustJSON(es.Summary.FilesModified), es.Summary.NextSteps, es.Summary.Notes,
				mustJSON(es.Summary.Decisions), mustJSON(es.Summary.Errors), es.Summary.PromptNumber, now,
			); err != nil {
				return nil, fmt.Errorf("lifecycle: import summary: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("lifecycle: commit import: %w", err)
	}
	return result, nil
}

func importPrompt(ctx context.Context, tx *sql.Tx, sessionID, project string, p *model.UserPrompt, now uint64) (bool, int64, error) {
	var existing int
	row := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_prompts up JOIN sessions s ON up.session_id = s.session_id
		WHERE up.content_hash = ? AND s.project = ? AND up.created_at >= ?`,
		p.ContentHash, project, now-ImportWindowMillis)
	if err := row.Scan(&existing); err != nil {
		return false, 0, fmt.Errorf("lifecycle: prompt dedup check: %w", err)
	}
	if existing > 0 {
		return false, 0, nil
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO user_prompts (session_id, prompt_number, prompt_text, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, p.PromptNumber, p.PromptText, p.ContentHash, now)
	if err != nil {
		return false, 0, fmt.Errorf("lifecycle: insert imported prompt: %w", err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return false, 0, fmt.Errorf("lifecycle: imported prompt id: %w", err)
	}
	return true, newID, nil
}

func importObservation(ctx context.Context, tx *sql.Tx, sessionID, project string, o *model.Observation, now uint64) (bool, string, error) {
	var existing int
	row := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM observations WHERE content_hash = ? AND project = ? AND timestamp >= ?`,
		o.ContentHash, project, now-ImportWindowMillis)
	if err := row.Scan(&existing); err != nil {
		return false, "", fmt.Errorf("lifecycle: observation dedup check: %w", err)
	}
	if existing > 0 {
		return false, "", nil
	}

	newID := model.NewObservationID(now)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO observations (
			id, session_id, project, tool_name, tool_input, tool_response, cwd, timestamp,
			type, title, subtitle, narrative, facts, concepts, prompt_number,
			files_read, files_modified, content_hash, compressed_summary, is_compressed, embedding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		newID, sessionID, project, o.ToolName, o.ToolInput, o.ToolResponse, o.Cwd, now,
		o.Type, o.Title, o.Subtitle, o.Narrative, mustJSON(o.Facts), mustJSON(o.Concepts), o.PromptNumber,
		mustJSON(o.FilesRead), mustJSON(o.FilesModified), o.ContentHash, o.CompressedSummary, boolToInt(o.IsCompressed),
	)
	if err != nil {
		return false, "", fmt.Errorf("lifecycle: insert imported observation: %w", err)
	}
	return true, newID, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

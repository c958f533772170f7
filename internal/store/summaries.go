package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentkits/memory/internal/model"
)

// InsertSessionSummary records one summary snapshot for a session.
func (d *DB) InsertSessionSummary(ctx context.Context, s *model.SessionSummary) (*model.SessionSummary, error) {
	filesRead, _ := json.Marshal(s.FilesRead)
	filesModified, _ := json.Marshal(s.FilesModified)
	decisions, _ := json.Marshal(s.Decisions)
	errs, _ := json.Marshal(s.Errors)

	res, err := d.conn.ExecContext(ctx, `
		INSERT INTO session_summaries (session_id, project, request, completed, files_read, files_modified, next_steps, notes, decisions, errors, prompt_number, created_at, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.Project, s.Request, s.Completed, string(filesRead), string(filesModified),
		s.NextSteps, s.Notes, string(decisions), string(errs), s.PromptNumber, s.CreatedAt, encodeEmbedding(s.Embedding))
	if err != nil {
		return nil, fmt.Errorf("store: insert session summary: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: summary last insert id: %w", err)
	}
	s.ID = id
	return s, nil
}

// LatestSessionSummary fetches the newest summary for a session.
func (d *DB) LatestSessionSummary(ctx context.Context, sessionID string) (*model.SessionSummary, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, session_id, project, request, completed, files_read, files_modified, next_steps, notes, decisions, errors, prompt_number, created_at, embedding
		FROM session_summaries WHERE session_id = ? ORDER BY created_at DESC LIMIT 1`, sessionID)
	return scanSummary(row)
}

func scanSummary(row *sql.Row) (*model.SessionSummary, error) {
	var s model.SessionSummary
	var filesReadJSON, filesModifiedJSON, decisionsJSON, errorsJSON string
	var embedding []byte
	err := row.Scan(&s.ID, &s.SessionID, &s.Project, &s.Request, &s.Completed, &filesReadJSON, &filesModifiedJSON,
		&s.NextSteps, &s.Notes, &decisionsJSON, &errorsJSON, &s.PromptNumber, &s.CreatedAt, &embedding)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan session summary: %w", err)
	}
	_ = json.Unmarshal([]byte(filesReadJSON), &s.FilesRead)
	_ = json.Unmarshal([]byte(filesModifiedJSON), &s.FilesModified)
	_ = json.Unmarshal([]byte(decisionsJSON), &s.Decisions)
	_ = json.Unmarshal([]byte(errorsJSON), &s.Errors)
	s.Embedding = decodeEmbedding(embedding)
	return &s, nil
}

// RecentSessionSummaries returns up to limit summaries for a project,
// newest first, one per session (the latest snapshot for each).
func (d *DB) RecentSessionSummaries(ctx context.Context, project string, limit int) ([]*model.SessionSummary, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, session_id, project, request, completed, files_read, files_modified, next_steps, notes, decisions, errors, prompt_number, created_at, embedding
		FROM session_summaries WHERE project = ?
		GROUP BY session_id HAVING MAX(created_at)
		ORDER BY created_at DESC LIMIT ?`, project, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent session summaries: %w", err)
	}
	defer rows.Close()

	var out []*model.SessionSummary
	for rows.Next() {
		var s model.SessionSummary
		var filesReadJSON, filesModifiedJSON, decisionsJSON, errorsJSON string
		var embedding []byte
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Project, &s.Request, &s.Completed, &filesReadJSON, &filesModifiedJSON,
			&s.NextSteps, &s.Notes, &decisionsJSON, &errorsJSON, &s.PromptNumber, &s.CreatedAt, &embedding); err != nil {
			return nil, fmt.Errorf("store: scan summary row: %w", err)
		}
		_ = json.Unmarshal([]byte(filesReadJSON), &s.FilesRead)
		_ = json.Unmarshal([]byte(filesModifiedJSON), &s.FilesModified)
		_ = json.Unmarshal([]byte(decisionsJSON), &s.Decisions)
		_ = json.Unmarshal([]byte(errorsJSON), &s.Errors)
		s.Embedding = decodeEmbedding(embedding)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// SessionSummaries returns up to limit summary snapshots for one session,
// newest first, for the retrieval engine's session scan.
func (d *DB) SessionSummaries(ctx context.Context, sessionID string, limit int) ([]*model.SessionSummary, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, session_id, project, request, completed, files_read, files_modified, next_steps, notes, decisions, errors, prompt_number, created_at, embedding
		FROM session_summaries WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: session summaries: %w", err)
	}
	defer rows.Close()

	var out []*model.SessionSummary
	for rows.Next() {
		var s model.SessionSummary
		var filesReadJSON, filesModifiedJSON, decisionsJSON, errorsJSON string
		var embedding []byte
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Project, &s.Request, &s.Completed, &filesReadJSON, &filesModifiedJSON,
			&s.NextSteps, &s.Notes, &decisionsJSON, &errorsJSON, &s.PromptNumber, &s.CreatedAt, &embedding); err != nil {
			return nil, fmt.Errorf("store: scan session summary row: %w", err)
		}
		_ = json.Unmarshal([]byte(filesReadJSON), &s.FilesRead)
		_ = json.Unmarshal([]byte(filesModifiedJSON), &s.FilesModified)
		_ = json.Unmarshal([]byte(decisionsJSON), &s.Decisions)
		_ = json.Unmarshal([]byte(errorsJSON), &s.Errors)
		s.Embedding = decodeEmbedding(embedding)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// GetSessionSummaryByID fetches one summary row by its primary key, used by
// the Embed worker to resolve a queued embed task's target.
func (d *DB) GetSessionSummaryByID(ctx context.Context, id int64) (*model.SessionSummary, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, session_id, project, request, completed, files_read, files_modified, next_steps, notes, decisions, errors, prompt_number, created_at, embedding
		FROM session_summaries WHERE id = ?`, id)
	return scanSummary(row)
}

// GetSessionDigestByID fetches one digest row by its primary key, used by
// the Embed worker to resolve a queued embed task's target.
func (d *DB) GetSessionDigestByID(ctx context.Context, id int64) (*model.SessionDigest, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, session_id, project, digest, observation_count, created_at, embedding
		FROM session_digests WHERE id = ?`, id)
	var g model.SessionDigest
	var embedding []byte
	if err := row.Scan(&g.ID, &g.SessionID, &g.Project, &g.Digest, &g.ObservationCount, &g.CreatedAt, &embedding); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan session digest by id: %w", err)
	}
	g.Embedding = decodeEmbedding(embedding)
	return &g, nil
}

// GetPromptByID fetches one user_prompts row by its primary key, used by
// the Embed worker to resolve a queued embed task's target.
func (d *DB) GetPromptByID(ctx context.Context, id int64) (*model.UserPrompt, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, session_id, prompt_number, prompt_text, content_hash, created_at
		FROM user_prompts WHERE id = ?`, id)
	return scanPromptRow(row)
}

// UpsertSessionDigest replaces any existing digest for a session.
func (d *DB) UpsertSessionDigest(ctx context.Context, g *model.SessionDigest) (*model.SessionDigest, error) {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO session_digests (session_id, project, digest, observation_count, created_at, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET digest = excluded.digest, observation_count = excluded.observation_count, created_at = excluded.created_at, embedding = excluded.embedding`,
		g.SessionID, g.Project, g.Digest, g.ObservationCount, g.CreatedAt, encodeEmbedding(g.Embedding))
	if err != nil {
		return nil, fmt.Errorf("store: upsert session digest: %w", err)
	}
	return d.GetSessionDigest(ctx, g.SessionID)
}

// GetSessionDigest fetches the digest for a session, if any.
func (d *DB) GetSessionDigest(ctx context.Context, sessionID string) (*model.SessionDigest, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, session_id, project, digest, observation_count, created_at, embedding
		FROM session_digests WHERE session_id = ?`, sessionID)
	var g model.SessionDigest
	var embedding []byte
	if err := row.Scan(&g.ID, &g.SessionID, &g.Project, &g.Digest, &g.ObservationCount, &g.CreatedAt, &embedding); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan session digest: %w", err)
	}
	g.Embedding = decodeEmbedding(embedding)
	return &g, nil
}

// UpdateSessionSummaryNotes overwrites a summary's free-text notes field,
// used by the enrich-summary subprocess to fold in context extracted from
// the session transcript after the synchronous summarize handler returns.
func (d *DB) UpdateSessionSummaryNotes(ctx context.Context, id int64, notes string) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE session_summaries SET notes = ? WHERE id = ?`, notes, id)
	if err != nil {
		return fmt.Errorf("store: update session summary notes: %w", err)
	}
	return nil
}

// SetSummaryEmbedding writes the embedding vector for one session summary.
func (d *DB) SetSummaryEmbedding(ctx context.Context, id int64, embedding []float32) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE session_summaries SET embedding = ? WHERE id = ?`, encodeEmbedding(embedding), id)
	if err != nil {
		return fmt.Errorf("store: set summary embedding: %w", err)
	}
	return nil
}

// SetDigestEmbedding writes the embedding vector for one session digest.
func (d *DB) SetDigestEmbedding(ctx context.Context, id int64, embedding []float32) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE session_digests SET embedding = ? WHERE id = ?`, encodeEmbedding(embedding), id)
	if err != nil {
		return fmt.Errorf("store: set digest embedding: %w", err)
	}
	return nil
}

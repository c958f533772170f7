package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agentkits/memory/internal/model"
)

// PromptDedupWindowMillis is the lookback window for prompt content-hash
// dedup.
const PromptDedupWindowMillis = 5 * 60 * 1000

// SavePrompt inserts a UserPrompt, assigning the next prompt_number for the
// session. If a prompt with the same content hash and project was recorded
// within the dedup window, that row is returned unchanged instead.
func (d *DB) SavePrompt(ctx context.Context, sessionID, project, promptText string, now uint64) (*model.UserPrompt, error) {
	hash := model.PromptContentHash(project, promptText)

	row := d.conn.QueryRowContext(ctx, `
		SELECT up.id, up.session_id, up.prompt_number, up.prompt_text, up.content_hash, up.created_at
		FROM user_prompts up
		JOIN sessions s ON s.session_id = up.session_id
		WHERE up.content_hash = ? AND s.project = ? AND up.created_at >= ?
		ORDER BY up.created_at DESC LIMIT 1`,
		hash, project, now-PromptDedupWindowMillis)
	if p, err := scanPromptRow(row); err == nil {
		return p, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin save prompt: %w", err)
	}
	defer tx.Rollback()

	var nextNumber int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(prompt_number), 0) + 1 FROM user_prompts WHERE session_id = ?`, sessionID).Scan(&nextNumber); err != nil {
		return nil, fmt.Errorf("store: next prompt number: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO user_prompts (session_id, prompt_number, prompt_text, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`, sessionID, nextNumber, promptText, hash, now)
	if err != nil {
		return nil, fmt.Errorf("store: insert prompt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: prompt last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit save prompt: %w", err)
	}

	return &model.UserPrompt{
		ID: id, SessionID: sessionID, PromptNumber: nextNumber,
		PromptText: promptText, ContentHash: hash, CreatedAt: now,
	}, nil
}

func scanPromptRow(row *sql.Row) (*model.UserPrompt, error) {
	var p model.UserPrompt
	if err := row.Scan(&p.ID, &p.SessionID, &p.PromptNumber, &p.PromptText, &p.ContentHash, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan prompt: %w", err)
	}
	return &p, nil
}

// SetPromptEmbedding writes the embedding vector for one prompt.
func (d *DB) SetPromptEmbedding(ctx context.Context, id int64, embedding []float32) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE user_prompts SET embedding = ? WHERE id = ?`, encodeEmbedding(embedding), id)
	if err != nil {
		return fmt.Errorf("store: set prompt embedding: %w", err)
	}
	return nil
}

// RecentPrompts returns up to limit prompts for a session, newest first.
func (d *DB) RecentPrompts(ctx context.Context, sessionID string, limit int) ([]*model.UserPrompt, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, session_id, prompt_number, prompt_text, content_hash, created_at
		FROM user_prompts WHERE session_id = ? ORDER BY prompt_number DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent prompts: %w", err)
	}
	defer rows.Close()

	var out []*model.UserPrompt
	for rows.Next() {
		var p model.UserPrompt
		if err := rows.Scan(&p.ID, &p.SessionID, &p.PromptNumber, &p.PromptText, &p.ContentHash, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// RecentPromptsByProject returns up to limit prompts for a project across
// all its sessions, newest first.
func (d *DB) RecentPromptsByProject(ctx context.Context, project string, limit int) ([]*model.UserPrompt, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT up.id, up.session_id, up.prompt_number, up.prompt_text, up.content_hash, up.created_at
		FROM user_prompts up
		JOIN sessions s ON s.session_id = up.session_id
		WHERE s.project = ? ORDER BY up.created_at DESC LIMIT ?`, project, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent prompts by project: %w", err)
	}
	defer rows.Close()

	var out []*model.UserPrompt
	for rows.Next() {
		var p model.UserPrompt
		if err := rows.Scan(&p.ID, &p.SessionID, &p.PromptNumber, &p.PromptText, &p.ContentHash, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// LatestPromptText returns the most recent prompt text for a session, or
// "" when the session has none, for use by intent detection.
func (d *DB) LatestPromptText(ctx context.Context, sessionID string) (string, error) {
	var text string
	err := d.conn.QueryRowContext(ctx, `SELECT prompt_text FROM user_prompts WHERE session_id = ? ORDER BY prompt_number DESC LIMIT 1`, sessionID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: latest prompt text: %w", err)
	}
	return text, nil
}

// CountPrompts returns the total number of prompts recorded, for the
// lifecycle statistics reporter.
func (d *DB) CountPrompts(ctx context.Context) (int, error) {
	var n int
	if err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_prompts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count prompts: %w", err)
	}
	return n, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agentkits/memory/internal/model"
)

// ErrNotFound is returned when a lookup by id finds no row.
var ErrNotFound = errors.New("store: not found")

// ResumeWindowMillis is the lookback window used for resume detection when
// creating a new session in a project that already has recent activity.
const ResumeWindowMillis = 30 * 60 * 1000

// CreateSession upserts a Session. A session with an already-known
// session_id is a no-op and the existing row is returned. On first creation
// for a project, if another session in the same project started within the
// last 30 minutes, the new session records it as its parent (resume
// detection).
func (d *DB) CreateSession(ctx context.Context, sessionID, project, prompt string, now uint64) (*model.Session, error) {
	if existing, err := d.GetSession(ctx, sessionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var parentID *string
	row := d.conn.QueryRowContext(ctx, `
		SELECT session_id FROM sessions
		WHERE project = ? AND session_id != ? AND started_at >= ?
		ORDER BY started_at DESC LIMIT 1`,
		project, sessionID, now-ResumeWindowMillis)
	var parent string
	if err := row.Scan(&parent); err == nil {
		parentID = &parent
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("store: resume lookup: %w", err)
	}

	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO sessions (session_id, project, prompt, started_at, observation_count, status, parent_session_id)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		sessionID, project, prompt, now, model.SessionActive, parentID)
	if err != nil {
		return nil, fmt.Errorf("store: insert session: %w", err)
	}

	return d.GetSession(ctx, sessionID)
}

// GetSession fetches one session by id.
func (d *DB) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT session_id, project, prompt, started_at, ended_at, observation_count, summary, status, parent_session_id
		FROM sessions WHERE session_id = ?`, sessionID)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*model.Session, error) {
	var s model.Session
	var endedAt sql.NullInt64
	var summary, parentID sql.NullString
	var status string
	if err := row.Scan(&s.SessionID, &s.Project, &s.Prompt, &s.StartedAt, &endedAt, &s.ObservationCount, &summary, &status, &parentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan session: %w", err)
	}
	if endedAt.Valid {
		v := uint64(endedAt.Int64)
		s.EndedAt = &v
	}
	if summary.Valid {
		s.Summary = &summary.String
	}
	if parentID.Valid {
		s.ParentSessionID = &parentID.String
	}
	s.Status = model.SessionStatus(status)
	return &s, nil
}

// IncrementObservationCount bumps a session's observation_count by one.
func (d *DB) IncrementObservationCount(ctx context.Context, sessionID string) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE sessions SET observation_count = observation_count + 1 WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("store: increment observation count: %w", err)
	}
	return nil
}

// CompleteSession transitions a session to completed, setting its summary
// text and end time.
func (d *DB) CompleteSession(ctx context.Context, sessionID, summary string, now uint64) error {
	_, err := d.conn.ExecContext(ctx, `
		UPDATE sessions SET status = ?, summary = ?, ended_at = ? WHERE session_id = ?`,
		model.SessionCompleted, summary, now, sessionID)
	if err != nil {
		return fmt.Errorf("store: complete session: %w", err)
	}
	return nil
}

// ArchiveSession transitions a completed session to archived.
func (d *DB) ArchiveSession(ctx context.Context, sessionID string) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE sessions SET status = ? WHERE session_id = ?`, model.SessionArchived, sessionID)
	if err != nil {
		return fmt.Errorf("store: archive session: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions for a project, newest first.
func (d *DB) RecentSessions(ctx context.Context, project string, limit int) ([]*model.Session, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT session_id, project, prompt, started_at, ended_at, observation_count, summary, status, parent_session_id
		FROM sessions WHERE project = ? ORDER BY started_at DESC LIMIT ?`, project, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent sessions: %w", err)
	}
	defer rows.Close()

	var out []*model.Session
	for rows.Next() {
		var s model.Session
		var endedAt sql.NullInt64
		var summary, parentID sql.NullString
		var status string
		if err := rows.Scan(&s.SessionID, &s.Project, &s.Prompt, &s.StartedAt, &endedAt, &s.ObservationCount, &summary, &status, &parentID); err != nil {
			return nil, fmt.Errorf("store: scan session row: %w", err)
		}
		if endedAt.Valid {
			v := uint64(endedAt.Int64)
			s.EndedAt = &v
		}
		if summary.Valid {
			s.Summary = &summary.String
		}
		if parentID.Valid {
			s.ParentSessionID = &parentID.String
		}
		s.Status = model.SessionStatus(status)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// SessionsByStatusOlderThan returns completed sessions whose ended_at is
// before the cutoff, used by the lifecycle manager's archive step.
func (d *DB) SessionsByStatusOlderThan(ctx context.Context, status model.SessionStatus, cutoff uint64) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT session_id FROM sessions WHERE status = ? AND ended_at IS NOT NULL AND ended_at < ?`, status, cutoff)
	if err != nil {
		return nil, fmt.Errorf("store: sessions older than: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountSessionsByStatus returns the number of sessions in each status, for
// the lifecycle statistics reporter.
func (d *DB) CountSessionsByStatus(ctx context.Context) (map[model.SessionStatus]int, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT status, COUNT(*) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("store: count sessions by status: %w", err)
	}
	defer rows.Close()

	out := map[model.SessionStatus]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.SessionStatus(status)] = n
	}
	return out, rows.Err()
}

// DeleteSessionCascade removes a session and every row that references it
// (observations, prompts, summaries, digests, queued tasks targeting those
// rows) inside one transaction. Deletes are explicit rather than via
// foreign-key cascade because the task queue and memory index must be
// cleaned in lockstep.
func (d *DB) DeleteSessionCascade(ctx context.Context, sessionID string) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin delete tx: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM task_queue WHERE target_id IN (SELECT id FROM observations WHERE session_id = ?)`,
		`DELETE FROM observations WHERE session_id = ?`,
		`DELETE FROM user_prompts WHERE session_id = ?`,
		`DELETE FROM session_summaries WHERE session_id = ?`,
		`DELETE FROM session_digests WHERE session_id = ?`,
		`DELETE FROM sessions WHERE session_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, sessionID); err != nil {
			return fmt.Errorf("store: cascade delete: %w", err)
		}
	}
	return tx.Commit()
}

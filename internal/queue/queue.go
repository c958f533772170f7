// Package queue implements the durable task queue that decouples the
// synchronous event handlers from the background embed/enrich/compress
// workers. Every enqueue is a plain insert; every claim is a single
// transaction that SQLite's WAL writer serializes against every other
// writer in the process, standing in for the SELECT ... FOR UPDATE SKIP
// LOCKED pattern a multi-writer database would use instead.
package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/store"
)

// Queue wraps a *store.DB with task-queue operations.
type Queue struct {
	db *store.DB
}

// New wraps a store for queue operations.
func New(db *store.DB) *Queue {
	return &Queue{db: db}
}

// Enqueue adds one pending task targeting a row in another table.
func (q *Queue) Enqueue(ctx context.Context, taskType model.TaskType, targetTable, targetID string, now uint64) (*model.Task, error) {
	res, err := q.db.Conn().ExecContext(ctx, `
		INSERT INTO task_queue (task_type, target_table, target_id, created_at, status, retry_count)
		VALUES (?, ?, ?, ?, ?, 0)`,
		taskType, targetTable, targetID, now, model.TaskPending)
	if err != nil {
		return nil, fmt.Errorf("queue: enqueue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("queue: enqueue last insert id: %w", err)
	}
	return &model.Task{
		ID: id, TaskType: taskType, TargetTable: targetTable, TargetID: targetID,
		CreatedAt: now, Status: model.TaskPending, RetryCount: 0,
	}, nil
}

// Claim atomically selects up to limit pending tasks of a given type, ordered
// oldest first, and transitions them to processing within one transaction so
// no other worker of the same type can claim the same row.
func (q *Queue) Claim(ctx context.Context, taskType model.TaskType, limit int) ([]*model.Task, error) {
	tx, err := q.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("queue: begin claim: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, task_type, target_table, target_id, created_at, status, retry_count
		FROM task_queue WHERE task_type = ? AND status = ? ORDER BY created_at ASC LIMIT ?`,
		taskType, model.TaskPending, limit)
	if err != nil {
		return nil, fmt.Errorf("queue: select claimable: %w", err)
	}

	var tasks []*model.Task
	for rows.Next() {
		var t model.Task
		var tt, status string
		if err := rows.Scan(&t.ID, &tt, &t.TargetTable, &t.TargetID, &t.CreatedAt, &status, &t.RetryCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("queue: scan claimable: %w", err)
		}
		t.TaskType = model.TaskType(tt)
		t.Status = model.TaskStatus(status)
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, t := range tasks {
		if _, err := tx.ExecContext(ctx, `UPDATE task_queue SET status = ? WHERE id = ?`, model.TaskProcessing, t.ID); err != nil {
			return nil, fmt.Errorf("queue: mark processing: %w", err)
		}
		t.Status = model.TaskProcessing
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("queue: commit claim: %w", err)
	}
	return tasks, nil
}

// Complete removes a successfully processed task from the queue.
func (q *Queue) Complete(ctx context.Context, id int64) error {
	_, err := q.db.Conn().ExecContext(ctx, `DELETE FROM task_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("queue: complete: %w", err)
	}
	return nil
}

// Fail records a processing failure. Below model.MaxRetries the task is
// returned to pending for another attempt; at the limit it is marked failed
// and never reclaimed again.
func (q *Queue) Fail(ctx context.Context, id int64) error {
	row := q.db.Conn().QueryRowContext(ctx, `SELECT retry_count FROM task_queue WHERE id = ?`, id)
	var retryCount int
	if err := row.Scan(&retryCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("queue: fail lookup: %w", err)
	}

	retryCount++
	status := model.TaskPending
	if retryCount >= model.MaxRetries {
		status = model.TaskFailed
	}
	_, err := q.db.Conn().ExecContext(ctx, `UPDATE task_queue SET retry_count = ?, status = ? WHERE id = ?`, retryCount, status, id)
	if err != nil {
		return fmt.Errorf("queue: fail update: %w", err)
	}
	return nil
}

// ReclaimStale returns stuck processing tasks (left behind by a worker that
// crashed mid-batch) back to pending. A task is stale once its age exceeds
// the caller-supplied threshold, computed against its created_at since the
// queue does not separately track claim time.
func (q *Queue) ReclaimStale(ctx context.Context, olderThan uint64) (int, error) {
	res, err := q.db.Conn().ExecContext(ctx, `
		UPDATE task_queue SET status = ? WHERE status = ? AND created_at < ?`,
		model.TaskPending, model.TaskProcessing, olderThan)
	if err != nil {
		return 0, fmt.Errorf("queue: reclaim stale: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("queue: reclaim stale rows affected: %w", err)
	}
	return int(n), nil
}

// PendingCount returns the number of pending tasks of one type, used by
// handlers to decide whether spawning a worker is worthwhile.
func (q *Queue) PendingCount(ctx context.Context, taskType model.TaskType) (int, error) {
	var n int
	err := q.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM task_queue WHERE task_type = ? AND status = ?`, taskType, model.TaskPending).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("queue: pending count: %w", err)
	}
	return n, nil
}

// CountByStatus returns the number of tasks in each status, for the
// lifecycle statistics reporter.
func (q *Queue) CountByStatus(ctx context.Context) (map[model.TaskStatus]int, error) {
	rows, err := q.db.Conn().QueryContext(ctx, `SELECT status, COUNT(*) FROM task_queue GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue: count by status: %w", err)
	}
	defer rows.Close()

	out := map[model.TaskStatus]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.TaskStatus(status)] = n
	}
	return out, rows.Err()
}

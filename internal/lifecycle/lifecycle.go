// Package lifecycle implements the on-demand compress/archive/delete/vacuum
// pass and the statistics reporter over the store. Never runs
// automatically — only when a caller (the lifecycle CLI subcommand)
// invokes it.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/queue"
	"github.com/agentkits/memory/internal/store"
)

// compressBatchLimit bounds how many compress tasks one pass enqueues, so a
// huge backlog of aging observations cannot flood the task queue in one
// call.
const compressBatchLimit = 100

const millisPerDay = 24 * 60 * 60 * 1000

// Config mirrors the external lifecycle configuration shape.
type Config struct {
	CompressAfterDays int
	ArchiveAfterDays  int
	AutoDelete        bool
	DeleteAfterDays   int
	AutoVacuum        bool
}

// DefaultConfig is the default lifecycle configuration.
var DefaultConfig = Config{
	CompressAfterDays: 7,
	ArchiveAfterDays:  30,
	AutoDelete:        false,
	DeleteAfterDays:   90,
	AutoVacuum:        true,
}

// Result reports what one Run call did.
type Result struct {
	CompressTasksEnqueued int      `json:"compressTasksEnqueued"`
	SessionsArchived      int      `json:"sessionsArchived"`
	SessionsDeleted       int      `json:"sessionsDeleted"`
	Vacuumed              bool     `json:"vacuumed"`
	DeletedSessionIDs     []string `json:"deletedSessionIds,omitempty"`
}

// Manager runs lifecycle passes and reports statistics over one store.
type Manager struct {
	DB    *store.DB
	Queue *queue.Queue
}

// New wraps a store and queue for lifecycle operations.
func New(db *store.DB, q *queue.Queue) *Manager {
	return &Manager{DB: db, Queue: q}
}

// Run performs the compress/archive/delete/vacuum pass in order.
func (m *Manager) Run(ctx context.Context, cfg Config, now uint64) (*Result, error) {
	result := &Result{}

	compressCutoff := now - uint64(cfg.CompressAfterDays)*millisPerDay
	ids, err := m.DB.ObservationsUncompressedOlderThan(ctx, compressCutoff, compressBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: find uncompressed observations: %w", err)
	}
	for _, id := range ids {
		if _, err := m.Queue.Enqueue(ctx, model.TaskCompress, "observations", id, now); err != nil {
			return nil, fmt.Errorf("lifecycle: enqueue compress task: %w", err)
		}
		result.CompressTasksEnqueued++
	}

	archiveCutoff := now - uint64(cfg.ArchiveAfterDays)*millisPerDay
	toArchive, err := m.DB.SessionsByStatusOlderThan(ctx, model.SessionCompleted, archiveCutoff)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: find sessions to archive: %w", err)
	}
	for _, id := range toArchive {
		if err := m.DB.ArchiveSession(ctx, id); err != nil {
			return nil, fmt.Errorf("lifecycle: archive session %s: %w", id, err)
		}
		result.SessionsArchived++
	}

	if cfg.AutoDelete {
		deleteCutoff := now - uint64(cfg.DeleteAfterDays)*millisPerDay
		toDelete, err := m.DB.SessionsByStatusOlderThan(ctx, model.SessionArchived, deleteCutoff)
		if err != nil {
			return nil, fmt.Errorf("lifecycle: find sessions to delete: %w", err)
		}
		for _, id := range toDelete {
			if err := m.DB.DeleteSessionCascade(ctx, id); err != nil {
				return nil, fmt.Errorf("lifecycle: delete session %s: %w", id, err)
			}
			result.SessionsDeleted++
			result.DeletedSessionIDs = append(result.DeletedSessionIDs, id)
		}
	}

	if result.SessionsDeleted > 0 && cfg.AutoVacuum {
		if err := m.DB.Vacuum(ctx); err != nil {
			return nil, fmt.Errorf("lifecycle: vacuum: %w", err)
		}
		result.Vacuumed = true
	}

	return result, nil
}

// Stats is the lifecycle statistics reporter's output.
type Stats struct {
	SessionsByStatus          map[model.SessionStatus]int `json:"sessionsByStatus"`
	CompressedObservations    int                         `json:"compressedObservations"`
	UncompressedObservations  int                         `json:"uncompressedObservations"`
	TotalPrompts              int                         `json:"totalPrompts"`
	DatabaseBytes             int64                       `json:"databaseBytes"`
}

// Statistics returns counts of sessions by status, observations by
// compression state, total prompts, and the database file's byte size.
func (m *Manager) Statistics(ctx context.Context) (*Stats, error) {
	sessionsByStatus, err := m.DB.CountSessionsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: count sessions: %w", err)
	}
	compressed, uncompressed, err := m.DB.CountObservationsByCompression(ctx)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: count observations: %w", err)
	}
	totalPrompts, err := m.DB.CountPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: count prompts: %w", err)
	}
	size, err := fileSize(m.DB.Path())
	if err != nil {
		return nil, fmt.Errorf("lifecycle: stat database file: %w", err)
	}

	return &Stats{
		SessionsByStatus:         sessionsByStatus,
		CompressedObservations:   compressed,
		UncompressedObservations: uncompressed,
		TotalPrompts:             totalPrompts,
		DatabaseBytes:            size,
	}, nil
}

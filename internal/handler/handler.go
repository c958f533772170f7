package handler

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/agentkits/memory/internal/config"
	"github.com/agentkits/memory/internal/daemon"
	"github.com/agentkits/memory/internal/model"
	"github.com/agentkits/memory/internal/queue"
	"github.com/agentkits/memory/internal/store"
)

// Handler bundles what every event handler needs: the store, the task
// queue, the persisted settings, and the means to spawn a worker of this
// same binary.
type Handler struct {
	DB        *store.DB
	Queue     *queue.Queue
	Settings  config.Settings
	MemoryDir string
	SelfExe   string
	Log       *slog.Logger

	locksOnce sync.Once
	locks     *sessionLocker
}

func (h *Handler) sessionLock(sessionID string) func() {
	h.locksOnce.Do(func() { h.locks = newSessionLocker() })
	return h.locks.lock(sessionID)
}

func (h *Handler) log() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}

func (h *Handler) lockPath(worker string) string {
	return filepath.Join(h.MemoryDir, worker+"-worker.lock")
}

// spawnIfPending spawns workerCmd (a subcommand of this same binary) as a
// detached subprocess if its worker's lock is not already held by a live
// process and its task type has pending work. Never returns an error to the
// caller — a spawn failure is logged and otherwise ignored, matching every
// handler's swallow-everything contract.
func (h *Handler) spawnIfPending(ctx context.Context, worker string, taskType model.TaskType, cwd string) {
	lockPath := h.lockPath(worker)
	if daemon.IsLocked(lockPath) {
		return
	}
	n, err := h.Queue.PendingCount(ctx, taskType)
	if err != nil {
		h.log().Warn("spawn check: pending count failed", "worker", worker, "error", err)
		return
	}
	if n == 0 {
		return
	}
	h.spawn(worker+"-session", cwd)
}

func (h *Handler) spawn(subcommand, cwd string) {
	exe := h.SelfExe
	if exe == "" {
		var err error
		exe, err = daemon.SelfPath()
		if err != nil {
			h.log().Warn("spawn: resolve self path failed", "error", err)
			return
		}
	}
	if err := daemon.SpawnDetached(exe, []string{subcommand, cwd}); err != nil {
		h.log().Warn("spawn: start worker failed", "subcommand", subcommand, "error", err)
	}
}

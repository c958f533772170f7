// Package worker implements the three background task processors — Embed,
// Enrich, Compress — that share one skeleton: acquire a PID lock, install a
// watchdog, drain the task queue up to a batch limit, release the lock on
// exit. The lock/watchdog primitives live in internal/daemon.
package worker

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/agentkits/memory/internal/daemon"
	"github.com/agentkits/memory/internal/provider"
	"github.com/agentkits/memory/internal/queue"
	"github.com/agentkits/memory/internal/store"
)

// BatchLimit bounds how many tasks a single worker invocation drains before
// exiting, keeping one run short enough that a handler's detached spawn
// never accumulates an unbounded backlog of live processes.
const BatchLimit = 200

// Deps bundles what every worker needs.
type Deps struct {
	DB    *store.DB
	Queue *queue.Queue
	AI    provider.AIProvider
	Embed provider.EmbeddingProvider
	Log   *slog.Logger
}

// run acquires name's lock file under lockDir, installs the watchdog and
// signal handlers, and calls body with a context that is canceled on
// SIGINT/SIGTERM or watchdog expiry. Exits quietly (nil error) if another
// live process already holds the lock.
func run(ctx context.Context, lockDir, name string, log *slog.Logger, body func(context.Context) error) error {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "worker", "worker", name)

	lockPath := filepath.Join(lockDir, name+"-worker.lock")
	lock, err := daemon.Acquire(lockPath)
	if err != nil {
		if err == daemon.ErrHeld {
			log.Info("lock held by a live process, exiting")
			return nil
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn("release lock failed", "error", err)
		}
	}()

	watchCtx, cancelWatch := daemon.WithWatchdog(ctx, log)
	defer cancelWatch()

	sigCtx, stopSignals := signal.NotifyContext(watchCtx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info("worker started")
	err = body(sigCtx)
	log.Info("worker finished", "error", err)
	return err
}

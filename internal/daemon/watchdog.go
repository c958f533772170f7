package daemon

import (
	"context"
	"log/slog"
	"time"
)

// WatchdogTimeout is the maximum time a worker may run before it
// self-terminates even if its queue never empties, bounding a runaway
// worker's lifetime to one batch cycle or five minutes, whichever comes
// first.
const WatchdogTimeout = 5 * time.Minute

// WithWatchdog returns a context that is canceled after WatchdogTimeout, and
// a cancel func the worker must call once it exits normally to release
// the timer early.
func WithWatchdog(parent context.Context, log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, WatchdogTimeout)
	if log != nil {
		go func() {
			<-ctx.Done()
			if ctx.Err() == context.DeadlineExceeded {
				log.Warn("worker watchdog fired", "timeout", WatchdogTimeout)
			}
		}()
	}
	return ctx, cancel
}

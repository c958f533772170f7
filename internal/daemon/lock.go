// Package daemon implements the PID lock file protocol workers use to
// guarantee at most one instance of a given worker type runs at a time, plus
// the detached-spawn helper handlers use to start a worker in the
// background. The liveness-probing shape follows the usual service-runtime
// inspector pattern (internal/daemon/launchd.go, systemd.go), which parses
// a PID out of persisted state and treats an unreachable process as stale;
// this package adapts that idea to a plain lock file instead of an OS
// service manager, since this system has no installer.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrHeld is returned by Acquire when a live process already holds the lock.
var ErrHeld = errors.New("daemon: lock held by a live process")

// Lock represents an acquired PID lock file at Path.
type Lock struct {
	Path string
}

// Acquire creates path exclusively, writing the current PID. If path
// already exists, its PID is read and probed for liveness: a dead or
// unparseable holder is treated as abandoned and the lock file is replaced;
// a live holder yields ErrHeld.
func Acquire(path string) (*Lock, error) {
	if err := tryCreate(path); err == nil {
		return &Lock{Path: path}, nil
	} else if !os.IsExist(err) {
		return nil, fmt.Errorf("daemon: create lock file: %w", err)
	}

	pid, err := readPID(path)
	if err == nil && processAlive(pid) {
		return nil, ErrHeld
	}

	// Stale lock: the holder is gone or unreadable. Replace it.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("daemon: remove stale lock: %w", err)
	}
	if err := tryCreate(path); err != nil {
		if os.IsExist(err) {
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("daemon: create lock file after reclaim: %w", err)
	}
	return &Lock{Path: path}, nil
}

func tryCreate(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(strconv.Itoa(os.Getpid()))
	return err
}

func readPID(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

// processAlive sends signal 0 to pid, the standard liveness probe: the
// kernel still performs permission and existence checks without actually
// delivering anything.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

// IsLocked reports whether path is currently held by a live process, without
// acquiring or modifying it. Handlers use this before spawning a worker to
// avoid fork-bombing a worker type that is already running.
func IsLocked(path string) bool {
	pid, err := readPID(path)
	if err != nil {
		return false
	}
	return processAlive(pid)
}

// Release removes the lock file. Safe to call on an already-removed lock.
func (l *Lock) Release() error {
	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("daemon: release lock: %w", err)
	}
	return nil
}

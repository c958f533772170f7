package worker

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestRunInvokesBodyAndReleasesLock(t *testing.T) {
	dir := t.TempDir()
	called := false

	err := run(context.Background(), dir, "embed", nil, func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !called {
		t.Error("run() did not invoke body")
	}
	if _, err := os.Stat(filepath.Join(dir, "embed-worker.lock")); !os.IsNotExist(err) {
		t.Errorf("lock file still present after run() returned: %v", err)
	}
}

func TestRunExitsQuietlyWhenLockHeldByLiveProcess(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "embed-worker.lock")
	if err := os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	called := false
	err := run(context.Background(), dir, "embed", nil, func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("run() error = %v, want nil (lock held)", err)
	}
	if called {
		t.Error("run() invoked body despite lock being held by a live process")
	}
}

func TestRunPropagatesBodyError(t *testing.T) {
	dir := t.TempDir()
	wantErr := os.ErrClosed

	err := run(context.Background(), dir, "enrich", nil, func(ctx context.Context) error {
		return wantErr
	})
	if err != wantErr {
		t.Errorf("run() error = %v, want %v", err, wantErr)
	}
}

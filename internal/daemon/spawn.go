package daemon

import (
	"fmt"
	"os"
	"os/exec"
)

// SpawnDetached starts exe with args as a background process detached from
// the caller's stdio, returning immediately without waiting. Handlers use
// this to start a worker the first time its queue becomes non-empty.
func SpawnDetached(exe string, args []string) error {
	cmd := exec.Command(exe, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("daemon: spawn %s: %w", exe, err)
	}
	return cmd.Process.Release()
}

// SelfPath returns the path to the currently running executable, for
// re-spawning worker subcommands of this same binary.
func SelfPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("daemon: resolve self path: %w", err)
	}
	return exe, nil
}

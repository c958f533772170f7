//go:build windows

package daemon

import "syscall"

// detachedAttr has no session-leader equivalent wired up on Windows; the
// child still detaches because stdio is nil and the parent never waits.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

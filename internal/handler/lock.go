package handler

import "sync"

// sessionLocker serializes handler invocations for the same session within
// one process, so two hook calls racing on the same session_id (a handler
// that both writes and spawns an inline catch-up drain can re-enter) never
// interleave writes. Cross-process contention is the store's concern
// (WAL + busy-timeout); this is purely an in-process guard.
type sessionLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocker() *sessionLocker {
	return &sessionLocker{locks: make(map[string]*sync.Mutex)}
}

func (s *sessionLocker) lock(sessionID string) func() {
	s.mu.Lock()
	m, ok := s.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[sessionID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

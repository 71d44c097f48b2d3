package service

import (
	"sync"

	"github.com/google/uuid"
)

// sessionLocks serializes submissions per session: concurrent submissions
// to the same session queue behind one mutex while submissions to different
// sessions never block each other. Entries are reference-counted so the map
// does not grow with every session ever seen.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[uuid.UUID]*sessionLock),
	}
}

// acquire blocks until the session's lock is held and returns the release
// function. A later submission waits, it is never dropped.
func (l *sessionLocks) acquire(sessionID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

package service

import "sync"

// documentLocks is a mutex keyed by document ID. The processing status
// guard is check-then-act; this closes the race between reading the
// status and writing Processing when the same document is triggered
// concurrently.
type documentLocks struct {
	mu    sync.Mutex
	locks map[int64]*documentLock
}

type documentLock struct {
	mu   sync.Mutex
	refs int
}

func newDocumentLocks() *documentLocks {
	return &documentLocks{locks: make(map[int64]*documentLock)}
}

func (l *documentLocks) Lock(documentID int64) {
	l.mu.Lock()
	entry, ok := l.locks[documentID]
	if !ok {
		entry = &documentLock{}
		l.locks[documentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *documentLocks) Unlock(documentID int64) {
	l.mu.Lock()
	entry := l.locks[documentID]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, documentID)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}

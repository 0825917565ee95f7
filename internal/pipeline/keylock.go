package pipeline

import "sync"

// keyLock hands out one mutex per key and forgets it once nobody holds or
// waits on it.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*refMutex)}
}

func (l *keyLock) Lock(key string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &refMutex{}
		l.locks[key] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *keyLock) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

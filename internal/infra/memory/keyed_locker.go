// File: internal/infra/memory/keyed_locker.go
package memory

import (
	"context"
	"sync"

	"care-compass/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.Locker = (*KeyedLocker)(nil)

// KeyedLocker hands out one in-process lock per key. Entries are refcounted
// and removed once no goroutine holds or waits on them, so the map does not
// grow with the total number of sessions ever seen.
type KeyedLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{entries: map[string]*lockEntry{}}
}

func (l *KeyedLocker) retain(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *KeyedLocker) release(key string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Lock blocks until the key's lock is held or ctx is done.
func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	e := l.retain(key)
	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.sem
				l.release(key, e)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}
}

// TryLock acquires the lock only if it is free; the sweep uses this so it
// never waits behind an in-flight message.
func (l *KeyedLocker) TryLock(key string) (func(), bool) {
	e := l.retain(key)
	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.sem
				l.release(key, e)
			})
		}, true
	default:
		l.release(key, e)
		return nil, false
	}
}

package repository

import "context"

// Locker serializes work per key. Message handling takes the session's lock
// for the whole read-modify-write (including the model call); the expiry
// sweep uses TryLock so it never evicts a session out from under an in-flight
// message.
type Locker interface {
	// Lock blocks until the key's lock is held or ctx is done. The returned
	// function releases the lock.
	Lock(ctx context.Context, key string) (unlock func(), err error)

	// TryLock acquires the lock only if it is free.
	TryLock(key string) (unlock func(), ok bool)
}

// File: internal/infra/memory/session_store.go
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"care-compass/internal/domain"
	"care-compass/internal/domain/model"
	"care-compass/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps sessions in a process-local map. It hands out deep
// copies, so callers mutate a snapshot and publish it with Put. The map lock
// guards insert/remove/lookup only; per-session serialization is the Locker's
// job and the two are never held in an order that can deadlock (session lock
// first, map lock second, always briefly).
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	timeout  time.Duration
	locks    repository.Locker
}

// NewSessionStore builds a store with the given idle timeout. The locker must
// be the same instance message handling uses, so the sweep can skip sessions
// that are mid-message.
func NewSessionStore(timeout time.Duration, locks repository.Locker) *SessionStore {
	if timeout <= 0 {
		timeout = 60 * time.Minute
	}
	return &SessionStore{
		sessions: map[string]*model.Session{},
		timeout:  timeout,
		locks:    locks,
	}
}

func (s *SessionStore) Create(ctx context.Context, userID string) (*model.Session, error) {
	sess := model.NewSession(uuid.NewString(), userID)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess.Clone(), nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if sess.Expired(time.Now().UTC(), s.timeout) {
		// Evict eagerly; ids are uuids and never reused.
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, domain.ErrSessionExpired
	}
	return sess.Clone(), nil
}

func (s *SessionStore) Put(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		// The session vanished under a held lock; fatal to this request only.
		return domain.ErrStoreCorruption
	}
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	return existed, nil
}

// SweepExpired evicts idle sessions. Sessions whose lock is currently held
// are skipped and picked up on the next cycle rather than blocked on.
func (s *SessionStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.RLock()
	candidates := make([]string, 0)
	for id, sess := range s.sessions {
		if sess.Expired(now, s.timeout) {
			candidates = append(candidates, id)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range candidates {
		unlock, ok := s.locks.TryLock(id)
		if !ok {
			continue
		}
		s.mu.Lock()
		if sess, present := s.sessions[id]; present && sess.Expired(now, s.timeout) {
			delete(s.sessions, id)
			removed++
		}
		s.mu.Unlock()
		unlock()
	}
	return removed, nil
}

func (s *SessionStore) Stats(ctx context.Context) (repository.SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := repository.SessionStats{ActiveCount: len(s.sessions)}
	now := time.Now().UTC()
	for _, sess := range s.sessions {
		if age := now.Sub(sess.CreatedAt); age > st.OldestSessionAge {
			st.OldestSessionAge = age
		}
	}
	return st, nil
}

package repository

import (
	"context"
	"time"

	"care-compass/internal/domain/model"
)

// SessionStats is a read-only diagnostic snapshot of the store.
type SessionStats struct {
	ActiveCount      int           `json:"active_count"`
	OldestSessionAge time.Duration `json:"oldest_session_age"`
}

// SessionStore owns chat session lifecycle. Implementations hand out isolated
// copies: mutations are visible only after Put. Expired sessions are reported
// as domain.ErrSessionExpired by Get and evicted eagerly; ids are never
// reused (they are generated, not recycled).
type SessionStore interface {
	// Create allocates a fresh session in greeting state. Never fails for
	// the in-memory store; the error is part of the port for durable backends.
	Create(ctx context.Context, userID string) (*model.Session, error)

	Get(ctx context.Context, id string) (*model.Session, error)

	// Put writes back a mutated session.
	Put(ctx context.Context, s *model.Session) error

	// Delete removes the session if present and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// SweepExpired evicts every session idle past the timeout and returns the
	// number removed. Sessions currently mid-message are skipped, not blocked.
	SweepExpired(ctx context.Context, now time.Time) (int, error)

	Stats(ctx context.Context) (SessionStats, error)
}

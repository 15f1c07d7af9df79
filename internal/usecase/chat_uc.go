// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"care-compass/internal/domain"
	"care-compass/internal/domain/model"
	"care-compass/internal/domain/ports/adapter"
	"care-compass/internal/domain/ports/repository"
	"care-compass/internal/infra/logging"
	"care-compass/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// ChatReply is the envelope returned for every handled message.
type ChatReply struct {
	Response    string                  `json:"response"`
	SessionID   string                  `json:"session_id"`
	Intent      model.Intent            `json:"intent"`
	State       model.ConversationState `json:"conversation_state"`
	Suggestions []string                `json:"suggestions"`
	Disclaimer  string                  `json:"disclaimer"`
}

// SessionSummary mirrors the diagnostic session view.
type SessionSummary struct {
	SessionID       string                  `json:"session_id"`
	MessageCount    int                     `json:"message_count"`
	State           model.ConversationState `json:"current_state"`
	Location        string                  `json:"user_location,omitempty"`
	DurationMinutes int                     `json:"session_duration_minutes"`
	LastActiveAt    time.Time               `json:"last_activity"`
}

type ChatUseCase interface {
	CreateSession(ctx context.Context, userID string) (*model.Session, string, error)
	HandleMessage(ctx context.Context, sessionID, userID, message string) (*ChatReply, error)
	EndSession(ctx context.Context, sessionID string) (bool, error)
	Summary(ctx context.Context, sessionID string) (*SessionSummary, error)
	SweepExpired(ctx context.Context) (int, error)
	Stats(ctx context.Context) (repository.SessionStats, error)
}

type chatUC struct {
	sessions  repository.SessionStore
	locks     repository.Locker
	ai        adapter.ModelClient
	modelName string
	timeout   time.Duration
	log       *zerolog.Logger
}

func NewChatUseCase(sessions repository.SessionStore, locks repository.Locker, ai adapter.ModelClient, modelTimeout time.Duration, logger *zerolog.Logger) *chatUC {
	if modelTimeout <= 0 {
		modelTimeout = 30 * time.Second
	}
	l := logger.With().Str("component", "ChatUC").Logger()
	return &chatUC{
		sessions: sessions,
		locks:    locks,
		ai:       ai,
		// Resolved once; message handling must stay free of side lookups.
		modelName: ai.GetModelInfo().Name,
		timeout:   modelTimeout,
		log:       &l,
	}
}

func (c *chatUC) CreateSession(ctx context.Context, userID string) (*model.Session, string, error) {
	s, err := c.sessions.Create(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	c.log.Debug().Str("session_id", s.ID).Msg("session created")
	return s, WelcomeMessage, nil
}

// HandleMessage runs the full turn: resolve session, classify, compose, call
// the model, then mutate session state. The session lock is held across the
// model call so two messages racing on one session serialize rather than
// interleave their read-modify-write.
func (c *chatUC) HandleMessage(ctx context.Context, sessionID, userID, message string) (*ChatReply, error) {
	defer logging.TraceDuration(c.log, "ChatUC.HandleMessage")()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrInvalidArgument
	}

	s, unlock, err := c.resolveSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	intent := ClassifyIntent(message)
	next := model.NextState(s.State, intent)
	prompt := ComposePrompt(s, intent, message)

	metrics.AddPromptTokens(c.modelName, c.ai.CountTokens(prompt))

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()
	reply, err := c.ai.Complete(callCtx, prompt)
	metrics.ObserveModelCall(c.modelName, time.Since(start), err == nil)
	if err != nil {
		// Recovered locally: canned reply, no session mutation, so a retry
		// with the same message sees the session exactly as before.
		c.log.Warn().Err(err).Str("session_id", s.ID).Msg("model call failed, returning fallback")
		return &ChatReply{
			Response:    FallbackReply,
			SessionID:   s.ID,
			Intent:      intent,
			State:       s.State,
			Suggestions: SuggestionsFor(s.State),
			Disclaimer:  Disclaimer,
		}, nil
	}

	s.AddTurn(model.RoleUser, message, intent)
	s.AddTurn(model.RoleAssistant, reply, "")
	s.State = next
	if intent == model.IntentLocationSearch {
		if loc := ExtractLocation(message); loc != "" {
			s.SetContext("location", loc)
		}
	}
	s.Touch()
	if err := c.sessions.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	metrics.IncChatMessages(string(intent))

	return &ChatReply{
		Response:    reply,
		SessionID:   s.ID,
		Intent:      intent,
		State:       next,
		Suggestions: SuggestionsFor(next),
		Disclaimer:  Disclaimer,
	}, nil
}

// resolveSession returns a locked session: the provided one when it is alive,
// otherwise a transparently created replacement. The map-level store lock and
// the per-session lock are never held together.
func (c *chatUC) resolveSession(ctx context.Context, sessionID, userID string) (*model.Session, func(), error) {
	if sessionID != "" {
		unlock, err := c.locks.Lock(ctx, sessionID)
		if err != nil {
			return nil, nil, err
		}
		s, err := c.sessions.Get(ctx, sessionID)
		if err == nil {
			return s, unlock, nil
		}
		unlock()
		if !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrSessionExpired) {
			return nil, nil, err
		}
		c.log.Debug().Str("session_id", sessionID).Msg("session unknown or expired, creating a fresh one")
	}
	s, err := c.sessions.Create(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	unlock, err := c.locks.Lock(ctx, s.ID)
	if err != nil {
		return nil, nil, err
	}
	return s, unlock, nil
}

func (c *chatUC) EndSession(ctx context.Context, sessionID string) (bool, error) {
	unlock, err := c.locks.Lock(ctx, sessionID)
	if err != nil {
		return false, err
	}
	defer unlock()
	return c.sessions.Delete(ctx, sessionID)
}

func (c *chatUC) Summary(ctx context.Context, sessionID string) (*SessionSummary, error) {
	s, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &SessionSummary{
		SessionID:       s.ID,
		MessageCount:    len(s.History),
		State:           s.State,
		Location:        s.Context["location"],
		DurationMinutes: int(time.Since(s.CreatedAt).Minutes()),
		LastActiveAt:    s.LastActiveAt,
	}, nil
}

func (c *chatUC) SweepExpired(ctx context.Context) (int, error) {
	n, err := c.sessions.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		return n, err
	}
	if n > 0 {
		metrics.AddSessionsSwept(n)
		c.log.Info().Int("count", n).Msg("expired sessions evicted")
	}
	return n, nil
}

func (c *chatUC) Stats(ctx context.Context) (repository.SessionStats, error) {
	st, err := c.sessions.Stats(ctx)
	if err == nil {
		metrics.SetActiveSessions(st.ActiveCount)
	}
	return st, err
}

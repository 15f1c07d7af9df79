package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ConversationState is the current phase of a session's dialogue. It is used
// to select response framing, not to gate which messages are allowed: any
// state may transition to any other based on the next message's intent.
type ConversationState string

const (
	StateGreeting          ConversationState = "greeting"
	StateLocationSearch    ConversationState = "location_search"
	StateServiceInquiry    ConversationState = "service_inquiry"
	StateClinicDiscussion  ConversationState = "clinic_discussion"
	StateInsuranceHelp     ConversationState = "insurance_help"
	StateEmergencyGuidance ConversationState = "emergency_guidance"
	StateGeneralHealth     ConversationState = "general_health"
)

// AllStates lists every valid conversation state.
var AllStates = []ConversationState{
	StateGreeting,
	StateLocationSearch,
	StateServiceInquiry,
	StateClinicDiscussion,
	StateInsuranceHelp,
	StateEmergencyGuidance,
	StateGeneralHealth,
}

func (s ConversationState) Valid() bool {
	for _, v := range AllStates {
		if s == v {
			return true
		}
	}
	return false
}

// Intent is the coarse category assigned to a single user message.
type Intent string

const (
	IntentEmergency        Intent = "emergency_guidance"
	IntentLocationSearch   Intent = "location_search"
	IntentInsuranceHelp    Intent = "insurance_help"
	IntentServiceInquiry   Intent = "service_inquiry"
	IntentClinicDiscussion Intent = "clinic_discussion"
	IntentGeneralHealth    Intent = "general_health"
)

// NextState computes the state a session moves to after a message with the
// given intent. Emergency always wins regardless of the current state. A
// general-health intent carries no strong signal, so the session stays where
// it is, except that a session never remains in greeting past its first turn.
func NextState(current ConversationState, intent Intent) ConversationState {
	switch intent {
	case IntentEmergency:
		return StateEmergencyGuidance
	case IntentLocationSearch:
		return StateLocationSearch
	case IntentInsuranceHelp:
		return StateInsuranceHelp
	case IntentServiceInquiry:
		return StateServiceInquiry
	case IntentClinicDiscussion:
		return StateClinicDiscussion
	default:
		if current == StateGreeting {
			return StateGeneralHealth
		}
		return current
	}
}

// MaxHistoryTurns bounds session history; older turns are dropped FIFO.
const MaxHistoryTurns = 20

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message stored in session history.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Intent    Intent    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the aggregate root for one caller's conversation.
type Session struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id,omitempty"`
	State        ConversationState `json:"state"`
	History      []Turn            `json:"history"`
	Context      map[string]string `json:"context,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`
}

func NewSession(id, userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		UserID:       userID,
		State:        StateGreeting,
		History:      make([]Turn, 0, 8),
		Context:      map[string]string{},
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// AddTurn appends a turn and enforces the history bound, dropping the oldest
// turns first.
func (s *Session) AddTurn(role, content string, intent Intent) Turn {
	t := Turn{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		Intent:    intent,
		Timestamp: time.Now().UTC(),
	}
	s.History = append(s.History, t)
	if len(s.History) > MaxHistoryTurns {
		s.History = append(s.History[:0:0], s.History[len(s.History)-MaxHistoryTurns:]...)
	}
	return t
}

// RecentTurns returns up to the last n turns.
func (s *Session) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// Expired reports whether the session has been idle longer than timeout.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActiveAt) > timeout
}

// Touch refreshes the activity timestamp. Called only after a message has
// been fully processed, never on lookup.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now().UTC()
}

// SetContext records an extracted slot such as a location string.
func (s *Session) SetContext(key, value string) {
	if s.Context == nil {
		s.Context = map[string]string{}
	}
	s.Context[key] = value
}

// Clone returns a deep copy so stores can hand out isolated snapshots.
func (s *Session) Clone() *Session {
	cp := *s
	cp.History = append([]Turn(nil), s.History...)
	if s.Context != nil {
		cp.Context = make(map[string]string, len(s.Context))
		for k, v := range s.Context {
			cp.Context[k] = v
		}
	}
	return &cp
}

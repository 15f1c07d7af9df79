package model

import (
	"fmt"
	"testing"
	"time"
)

func TestAddTurnBoundsHistory(t *testing.T) {
	s := NewSession("s1", "u1")
	for i := 0; i < MaxHistoryTurns+5; i++ {
		s.AddTurn(RoleUser, fmt.Sprintf("message %d", i), IntentGeneralHealth)
	}
	if len(s.History) != MaxHistoryTurns {
		t.Fatalf("history length = %d, want %d", len(s.History), MaxHistoryTurns)
	}
	// Oldest retained turn must be the first one that survived FIFO truncation.
	if got, want := s.History[0].Content, "message 5"; got != want {
		t.Fatalf("oldest turn = %q, want %q", got, want)
	}
	if got, want := s.History[len(s.History)-1].Content, fmt.Sprintf("message %d", MaxHistoryTurns+4); got != want {
		t.Fatalf("newest turn = %q, want %q", got, want)
	}
}

func TestNextState(t *testing.T) {
	cases := []struct {
		name    string
		current ConversationState
		intent  Intent
		want    ConversationState
	}{
		{"greeting to location", StateGreeting, IntentLocationSearch, StateLocationSearch},
		{"greeting to insurance", StateGreeting, IntentInsuranceHelp, StateInsuranceHelp},
		{"greeting to service", StateGreeting, IntentServiceInquiry, StateServiceInquiry},
		{"greeting to clinic", StateGreeting, IntentClinicDiscussion, StateClinicDiscussion},
		{"greeting general leaves greeting", StateGreeting, IntentGeneralHealth, StateGeneralHealth},
		{"general keeps current state", StateLocationSearch, IntentGeneralHealth, StateLocationSearch},
		{"insurance to location", StateInsuranceHelp, IntentLocationSearch, StateLocationSearch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextState(tc.current, tc.intent); got != tc.want {
				t.Fatalf("NextState(%s, %s) = %s, want %s", tc.current, tc.intent, got, tc.want)
			}
		})
	}
}

func TestEmergencyAlwaysWins(t *testing.T) {
	for _, state := range AllStates {
		if got := NextState(state, IntentEmergency); got != StateEmergencyGuidance {
			t.Fatalf("NextState(%s, emergency) = %s, want %s", state, got, StateEmergencyGuidance)
		}
	}
}

func TestNextStateStaysInStateSet(t *testing.T) {
	intents := []Intent{
		IntentEmergency, IntentLocationSearch, IntentInsuranceHelp,
		IntentServiceInquiry, IntentClinicDiscussion, IntentGeneralHealth,
	}
	for _, state := range AllStates {
		for _, intent := range intents {
			if got := NextState(state, intent); !got.Valid() {
				t.Fatalf("NextState(%s, %s) = %s is not a valid state", state, intent, got)
			}
		}
	}
}

func TestExpired(t *testing.T) {
	s := NewSession("s1", "")
	timeout := 60 * time.Minute

	s.LastActiveAt = time.Now().UTC().Add(-59 * time.Minute)
	if s.Expired(time.Now().UTC(), timeout) {
		t.Fatal("session idle 59m should not be expired with 60m timeout")
	}

	s.LastActiveAt = time.Now().UTC().Add(-61 * time.Minute)
	if !s.Expired(time.Now().UTC(), timeout) {
		t.Fatal("session idle 61m should be expired with 60m timeout")
	}
}

func TestCloneIsIsolated(t *testing.T) {
	s := NewSession("s1", "u1")
	s.AddTurn(RoleUser, "hello", IntentGeneralHealth)
	s.SetContext("location", "77005")

	cp := s.Clone()
	cp.AddTurn(RoleAssistant, "hi", "")
	cp.SetContext("location", "78701")
	cp.State = StateEmergencyGuidance

	if len(s.History) != 1 {
		t.Fatalf("original history mutated, length = %d", len(s.History))
	}
	if s.Context["location"] != "77005" {
		t.Fatalf("original context mutated: %q", s.Context["location"])
	}
	if s.State != StateGreeting {
		t.Fatalf("original state mutated: %s", s.State)
	}
}

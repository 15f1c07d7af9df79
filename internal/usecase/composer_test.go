package usecase

import (
	"strings"
	"testing"

	"care-compass/internal/domain/model"
)

func TestComposePromptIncludesHistoryAndMessage(t *testing.T) {
	s := model.NewSession("s1", "u1")
	s.AddTurn(model.RoleUser, "hi there", model.IntentGeneralHealth)
	s.AddTurn(model.RoleAssistant, "hello, how can I help", "")

	prompt := ComposePrompt(s, model.IntentGeneralHealth, "what services do you have")

	for _, want := range []string{
		"You are CareBot",
		"User: hi there",
		"Assistant: hello, how can I help",
		"Current User Message: what services do you have",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestComposePromptEmergencyShortCircuit(t *testing.T) {
	// Emergency framing applies regardless of the current state.
	for _, state := range model.AllStates {
		s := model.NewSession("s1", "")
		s.State = state
		prompt := ComposePrompt(s, model.IntentEmergency, "chest pain")
		if !strings.Contains(prompt, "call 911") {
			t.Fatalf("state %s: emergency prompt missing 911 guidance", state)
		}
	}
}

func TestComposePromptIncludesLocationSlot(t *testing.T) {
	s := model.NewSession("s1", "")
	s.SetContext("location", "77005")
	prompt := ComposePrompt(s, model.IntentLocationSearch, "find clinics")
	if !strings.Contains(prompt, "User Location: 77005") {
		t.Fatal("prompt missing location slot")
	}
}

func TestComposePromptIsPure(t *testing.T) {
	s := model.NewSession("s1", "")
	s.AddTurn(model.RoleUser, "hello", model.IntentGeneralHealth)
	before := len(s.History)

	_ = ComposePrompt(s, model.IntentGeneralHealth, "second message")

	if len(s.History) != before {
		t.Fatalf("ComposePrompt mutated history: %d -> %d", before, len(s.History))
	}
	if s.State != model.StateGreeting {
		t.Fatalf("ComposePrompt mutated state: %s", s.State)
	}
}

func TestInstructionForUnknownStateFallsBack(t *testing.T) {
	got := instructionFor(model.ConversationState("bogus"), model.IntentGeneralHealth)
	if got != statePrompts[model.StateGeneralHealth] {
		t.Fatal("unknown state should fall back to the general health instruction")
	}
}

func TestSuggestionsFor(t *testing.T) {
	if got := SuggestionsFor(model.StateLocationSearch); len(got) == 0 {
		t.Fatal("location state should have suggestions")
	}
	if got := SuggestionsFor(model.StateGreeting); len(got) == 0 {
		t.Fatal("states without a dedicated set should fall back to base suggestions")
	}
}

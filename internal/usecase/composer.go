package usecase

import (
	"strings"

	"care-compass/internal/domain/model"
)

// WelcomeMessage greets the caller when a session is created.
const WelcomeMessage = "Hello! I'm CareBot, your healthcare navigator. How can I help you find affordable healthcare today?"

// Disclaimer is attached to every chat reply, unconditionally.
const Disclaimer = "This is general information only. For medical emergencies, call 911. This is not medical advice."

// FallbackReply is returned when the model call fails; the user's turn is
// treated as not-yet-answered so a retry with the same message is coherent.
const FallbackReply = "I apologize, but I'm having trouble processing your message right now. Please try again, or if this is an emergency, call 911 immediately."

const basePreamble = `You are CareBot, a compassionate AI healthcare navigator for Care Compass. Your mission is to help uninsured individuals find affordable healthcare options.

CORE PRINCIPLES:
- Be empathetic and non-judgmental
- Use simple, clear language
- Focus on practical, actionable guidance
- Never provide medical diagnosis or specific medical advice
- Always emphasize emergency services when appropriate
- Prioritize user safety and well-being

LIMITATIONS:
- Cannot diagnose medical conditions
- Cannot prescribe medications
- Cannot replace professional medical consultation
- Cannot provide emergency medical care`

// promptKey selects an instruction block by conversation state and message
// intent. Missing pairs fall back to the state's default entry, then to the
// general entry.
type promptKey struct {
	State  model.ConversationState
	Intent model.Intent
}

var statePrompts = map[model.ConversationState]string{
	model.StateGreeting: `Respond as a warm, welcoming healthcare navigator. Ask how you can help them find affordable healthcare today. Keep the greeting brief (1-2 sentences) and immediately focus on how you can assist.`,

	model.StateLocationSearch: `The user is looking for healthcare near a specific location. Help them understand how to search for clinics in their area, what information they'll need (ZIP code, city, or address), and what types of facilities might be available. If they mention a location, offer to help them search for clinics there.`,

	model.StateServiceInquiry: `The user is asking about specific healthcare services. Explain the types of services available at community health centers, the difference between urgent care, primary care, and emergency care, and how to prepare for their visit. Focus on free and low-cost options.`,

	model.StateInsuranceHelp: `The user needs help with insurance or cost concerns. Cover options for uninsured individuals, sliding scale payment programs, community health centers and FQHCs, patient financial assistance, and Medicaid eligibility basics. Emphasize that healthcare is available regardless of insurance status.`,

	model.StateEmergencyGuidance: `This appears to be an emergency or urgent medical situation. IMMEDIATELY state: "For medical emergencies, call 911 immediately". Then cover signs that require emergency care, urgent care vs emergency room guidance, and how to handle the situation if they cannot afford emergency care. Prioritize safety over cost concerns.`,

	model.StateClinicDiscussion: `The user is discussing specific clinics or healthcare facilities. Help them understand what services are offered, what to expect during their visit, questions to ask the provider, their rights as a patient, and how to find contact information and hours.`,

	model.StateGeneralHealth: `Provide general health education in plain language. Point toward free and low-cost care options and community resources where relevant. Do not diagnose or recommend specific treatment.`,
}

// pairPrompts override the state default for a handful of combinations where
// the intent signal should reframe the answer before the state transition
// lands.
var pairPrompts = map[promptKey]string{
	{model.StateGreeting, model.IntentEmergency}:         statePrompts[model.StateEmergencyGuidance],
	{model.StateClinicDiscussion, model.IntentEmergency}: statePrompts[model.StateEmergencyGuidance],
	{model.StateGreeting, model.IntentLocationSearch}:    statePrompts[model.StateLocationSearch],
	{model.StateGreeting, model.IntentInsuranceHelp}:     statePrompts[model.StateInsuranceHelp],
}

func instructionFor(state model.ConversationState, intent model.Intent) string {
	if intent == model.IntentEmergency {
		// Safety short-circuit: emergency framing regardless of state.
		return statePrompts[model.StateEmergencyGuidance]
	}
	if p, ok := pairPrompts[promptKey{state, intent}]; ok {
		return p
	}
	if p, ok := statePrompts[state]; ok {
		return p
	}
	return statePrompts[model.StateGeneralHealth]
}

// ComposePrompt builds the single text prompt for the model from the session
// as it stands before the new message is appended. Pure; all session mutation
// happens in the caller after a successful model response.
func ComposePrompt(s *model.Session, intent model.Intent, userMessage string) string {
	var b strings.Builder
	b.WriteString(basePreamble)
	b.WriteString("\n\n")
	b.WriteString(instructionFor(s.State, intent))

	if turns := s.RecentTurns(model.MaxHistoryTurns); len(turns) > 0 {
		b.WriteString("\n\nConversation History:\n")
		for _, t := range turns {
			if t.Role == model.RoleUser {
				b.WriteString("User: ")
			} else {
				b.WriteString("Assistant: ")
			}
			b.WriteString(t.Content)
			b.WriteString("\n")
		}
	}

	if loc := s.Context["location"]; loc != "" {
		b.WriteString("\nUser Location: ")
		b.WriteString(loc)
		b.WriteString("\n")
	}

	b.WriteString("\nCurrent User Message: ")
	b.WriteString(userMessage)
	b.WriteString("\n\nRespond helpfully and compassionately:")
	return b.String()
}

var baseSuggestions = []string{
	"Find clinics near me",
	"I need help with costs",
	"What services are available?",
}

var stateSuggestions = map[model.ConversationState][]string{
	model.StateLocationSearch: {
		"Show me free clinics",
		"What about urgent care?",
		"Mental health services",
	},
	model.StateInsuranceHelp: {
		"Sliding scale options",
		"Community health centers",
		"Medicaid information",
	},
	model.StateEmergencyGuidance: {
		"Urgent care locations",
		"What if I can't afford the ER?",
		"Non-emergency options",
	},
	model.StateServiceInquiry: {
		"Dental care options",
		"Mental health support",
		"Women's health services",
	},
}

// SuggestionsFor returns quick-reply follow-ups keyed by the state the
// session lands in after the message.
func SuggestionsFor(state model.ConversationState) []string {
	if s, ok := stateSuggestions[state]; ok {
		return s
	}
	return baseSuggestions
}

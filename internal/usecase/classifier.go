package usecase

import (
	"regexp"
	"strings"

	"care-compass/internal/domain/model"
)

// intentPriority is the total tie-break order when a message matches several
// intent keyword sets. Emergency language must never be masked by a
// coincidental location or service keyword in the same message, so emergency
// sits first; the rest of the order is policy.
var intentPriority = []model.Intent{
	model.IntentEmergency,
	model.IntentLocationSearch,
	model.IntentInsuranceHelp,
	model.IntentServiceInquiry,
	model.IntentClinicDiscussion,
	model.IntentGeneralHealth,
}

var intentKeywords = map[model.Intent][]string{
	model.IntentEmergency: {
		"emergency", "urgent", "911", "chest pain", "bleeding",
		"heart attack", "stroke", "can't breathe", "severe pain", "overdose",
	},
	model.IntentLocationSearch: {
		"near me", "near", "close to", "zip code", "zip", "address",
		"location", "where", "find clinic", "find a clinic", "in my area",
	},
	model.IntentInsuranceHelp: {
		"insurance", "uninsured", "cost", "pay", "free", "sliding scale",
		"afford", "medicaid",
	},
	model.IntentServiceInquiry: {
		"checkup", "doctor", "urgent care", "mental health", "dental",
		"eye care", "vaccination", "prenatal",
	},
	model.IntentClinicDiscussion: {
		"clinic", "hospital", "appointment", "hours", "phone",
	},
	model.IntentGeneralHealth: {
		"symptoms", "condition", "treatment", "medication", "advice",
	},
}

var (
	zipPattern  = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	cityPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*,?\s*(?:TX|Texas|tx)\b`)
)

// ClassifyIntent tags a user message with one intent by case-insensitive
// substring matching, walking intentPriority in order. A bare 5-digit ZIP
// counts as a location signal. Falls back to general health; never "unknown".
func ClassifyIntent(message string) model.Intent {
	lower := strings.ToLower(message)
	// "urgent care" is a service, not a crisis; blank it before the emergency
	// scan so its "urgent" substring cannot trigger emergency priority.
	emergencyProbe := strings.ReplaceAll(lower, "urgent care", "")
	for _, intent := range intentPriority {
		haystack := lower
		if intent == model.IntentEmergency {
			haystack = emergencyProbe
		}
		for _, kw := range intentKeywords[intent] {
			if strings.Contains(haystack, kw) {
				return intent
			}
		}
		if intent == model.IntentLocationSearch && zipPattern.MatchString(message) {
			return intent
		}
	}
	return model.IntentGeneralHealth
}

// ExtractLocation pulls a ZIP code or "City, TX" style location out of a
// message. Returns "" when nothing usable is found; the slot is opportunistic
// and never required for correctness.
func ExtractLocation(message string) string {
	if m := zipPattern.FindString(message); m != "" {
		return m
	}
	if m := cityPattern.FindString(message); m != "" {
		return m
	}
	return ""
}

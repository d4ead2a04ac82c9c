package services

import (
	"strings"

	"github.com/echoflow-solutions/carescribe-api/models"
)

// Severity and category are derived locally from the conversation text.
// No external call is made for classification.

var severityKeywords = map[string][]string{
	models.SeverityCritical: {"unconscious", "not breathing", "ambulance", "hospital", "seizure", "overdose", "000"},
	models.SeverityHigh:     {"injur", "bleeding", "head", "fracture", "broken", "doctor", "emergency"},
	models.SeverityMedium:   {"bruise", "fell", "fall", "hit", "aggress", "distress", "refused medication"},
}

var categoryKeywords = map[string][]string{
	"medication": {"medication", "medicine", "dose", "tablet", "prn", "webster"},
	"injury":     {"injur", "fell", "fall", "bruise", "cut", "hit", "fracture"},
	"behaviour":  {"behaviour", "behavior", "aggress", "yell", "scream", "self-harm", "absconded"},
	"property":   {"broke", "damage", "property", "window", "door"},
}

// ClassifySeverity picks the highest severity any keyword supports,
// defaulting to low.
func ClassifySeverity(text string) string {
	lowered := strings.ToLower(text)
	for _, level := range []string{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium} {
		for _, kw := range severityKeywords[level] {
			if strings.Contains(lowered, kw) {
				return level
			}
		}
	}
	return models.SeverityLow
}

// ClassifyCategory returns the first matching category, defaulting to
// "general".
func ClassifyCategory(text string) string {
	lowered := strings.ToLower(text)
	for _, category := range []string{"medication", "injury", "behaviour", "property"} {
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lowered, kw) {
				return category
			}
		}
	}
	return "general"
}

package services

import (
	"math"
	"strings"

	"github.com/echoflow-solutions/carescribe-api/models"
)

// Requirement is one NDIS documentation item the conversation should touch
// on. Satisfied when any keyword appears in the concatenated question and
// answer text.
type Requirement struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Keywords []string `json:"-"`
}

// The keyword lists are a heuristic, not a contract. They only need to stay
// stable so the score is reproducible for a given conversation.
var complianceRequirements = []Requirement{
	{ID: "safety", Label: "Immediate safety confirmed", Keywords: []string{"safe", "safety", "no injuries", "secure", "out of danger"}},
	{ID: "participant", Label: "Participant identified", Keywords: []string{"participant", "client", "resident", "name is", "involving"}},
	{ID: "location", Label: "Location specified", Keywords: []string{"location", "where", "room", "kitchen", "bathroom", "outside", "at the", "near the"}},
	{ID: "timeline", Label: "Timeline established", Keywords: []string{"when", "time", "before", "after", "during", "morning", "afternoon", "evening", "o'clock", "pm", "am"}},
	{ID: "antecedent", Label: "Antecedent described", Keywords: []string{"before", "leading up", "prior", "trigger", "caused", "started"}},
	{ID: "description", Label: "Incident described", Keywords: []string{"happened", "occurred", "fell", "hit", "incident", "what"}},
	{ID: "injuries", Label: "Injuries assessed", Keywords: []string{"injur", "hurt", "bruise", "bleeding", "pain", "first aid", "no injuries"}},
	{ID: "actions", Label: "Actions taken recorded", Keywords: []string{"action", "responded", "called", "assisted", "helped", "administered", "checked"}},
	{ID: "witnesses", Label: "Witnesses noted", Keywords: []string{"witness", "saw", "present", "nobody else", "alone", "staff member"}},
	{ID: "notification", Label: "Notification/follow-up covered", Keywords: []string{"notified", "informed", "contacted", "follow up", "follow-up", "supervisor", "family", "guardian"}},
}

// ComplianceResult is the derived view over a turn sequence. It has no
// persisted state; recomputing it on unchanged turns yields the same result.
type ComplianceResult struct {
	Percentage     int             `json:"percentage"`
	SatisfiedCount int             `json:"satisfied_count"`
	TotalCount     int             `json:"total_count"`
	Requirements   map[string]bool `json:"requirements"`
}

// ScoreConversation evaluates each requirement independently over the
// case-insensitive concatenation of every turn's question and answer.
func ScoreConversation(turns []models.ConversationTurn) ComplianceResult {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(turn.Question)
		b.WriteString(" ")
		b.WriteString(turn.Answer)
		b.WriteString(" ")
	}
	text := strings.ToLower(b.String())

	satisfied := 0
	flags := make(map[string]bool, len(complianceRequirements))
	for _, req := range complianceRequirements {
		met := false
		for _, kw := range req.Keywords {
			if strings.Contains(text, kw) {
				met = true
				break
			}
		}
		flags[req.ID] = met
		if met {
			satisfied++
		}
	}

	total := len(complianceRequirements)
	percentage := int(math.Round(100 * float64(satisfied) / float64(total)))
	return ComplianceResult{
		Percentage:     percentage,
		SatisfiedCount: satisfied,
		TotalCount:     total,
		Requirements:   flags,
	}
}

// ComplianceRequirements exposes the requirement labels for the review
// screen checklist.
func ComplianceRequirements() []Requirement {
	return complianceRequirements
}

package services_test

import (
	"testing"

	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(question, answer string) models.ConversationTurn {
	return models.ConversationTurn{Question: question, Answer: answer}
}

func TestScoreConversation(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name           string
		turns          []models.ConversationTurn
		wantPercentage int
		wantSatisfied  []string
	}
	tests := []testCase{
		{
			name:           "empty conversation scores zero",
			turns:          nil,
			wantPercentage: 0,
		},
		{
			name: "safety answer satisfies safety and injuries",
			turns: []models.ConversationTurn{
				turn("Is everyone safe right now? Are there any injuries?", "Yes everyone is safe, no injuries."),
			},
			wantSatisfied: []string{"safety", "injuries"},
		},
		{
			name: "case is ignored",
			turns: []models.ConversationTurn{
				turn("", "EVERYONE IS SAFE"),
			},
			wantSatisfied: []string{"safety"},
		},
		{
			name: "before satisfies both timeline and antecedent",
			turns: []models.ConversationTurn{
				turn("What led up to it?", "He was agitated before lunch."),
			},
			wantSatisfied: []string{"timeline", "antecedent", "description"},
		},
		{
			name: "thorough conversation scores full marks",
			turns: []models.ConversationTurn{
				turn("Is everyone safe?", "Yes, everyone is safe and out of danger."),
				turn("Who was involved?", "The participant was James, a resident here."),
				turn("Where did it happen?", "In the kitchen near the stove."),
				turn("When did it happen?", "This morning around 10 am, before his medication."),
				turn("What happened?", "He fell while reaching for a cup."),
				turn("Any injuries?", "A small bruise on his arm, first aid was applied."),
				turn("What did you do?", "I assisted him up and checked him over."),
				turn("Did anyone see it?", "Another staff member was present."),
				turn("Who have you told?", "I notified my supervisor and his family."),
			},
			wantPercentage: 100,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := services.ScoreConversation(tc.turns)

			require.Equal(t, 10, got.TotalCount)
			if tc.wantPercentage != 0 || tc.turns == nil {
				assert.Equal(t, tc.wantPercentage, got.Percentage)
			}
			for _, id := range tc.wantSatisfied {
				assert.Truef(t, got.Requirements[id], "requirement %s should be satisfied", id)
			}
		})
	}
}

func TestScoreConversationIsDeterministic(t *testing.T) {
	t.Parallel()

	turns := []models.ConversationTurn{
		turn("Is everyone safe?", "Yes, no injuries."),
		turn("What happened?", "The participant fell in the bathroom this morning."),
	}

	first := services.ScoreConversation(turns)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, services.ScoreConversation(turns))
	}
}

func TestClassifySeverity(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"he had a seizure and an ambulance was called": models.SeverityCritical,
		"he hit his head and was bleeding":             models.SeverityHigh,
		"he refused medication this evening":           models.SeverityMedium,
		"a cup was knocked off the table":              models.SeverityLow,
	}
	for text, want := range tests {
		assert.Equalf(t, want, services.ClassifySeverity(text), "text: %s", text)
	}
}

func TestClassifyCategory(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missed his morning medication dose":    "medication",
		"she has a bruise and needed first aid": "injury",
		"he was yelling and screaming at staff": "behaviour",
		"the window was smashed":                "property",
		"something minor happened":              "general",
	}
	for text, want := range tests {
		assert.Equalf(t, want, services.ClassifyCategory(text), "text: %s", text)
	}
}

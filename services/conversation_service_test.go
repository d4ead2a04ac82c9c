package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/services"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompleter replays canned replies in order and records how often it
// was called.
type scriptedCompleter struct {
	replies []string
	err     error
	calls   int
}

func (f *scriptedCompleter) Complete(_ context.Context, _ string, _ []openai.ChatCompletionMessage) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "REPORT_COMPLETE", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func newConversation(t *testing.T, completer *scriptedCompleter) (services.ConversationService, *services.ConversationSession) {
	t.Helper()
	svc := services.NewConversationService(completer, &config.Config{})
	session := svc.StartSession(7, "session-1")
	require.Equal(t, services.StateAwaitingAnswer, session.State)
	require.Equal(t, "Is everyone safe right now? Are there any injuries?", session.CurrentQuestion)
	require.Empty(t, session.Turns)
	return svc, session
}

func TestSubmitAnswerAdvancesToNextQuestion(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{replies: []string{
		"Who was involved? | Full name of the participant.",
	}}
	svc, _ := newConversation(t, completer)

	session, err := svc.SubmitAnswer(context.Background(), 7, "session-1", "Yes, everyone is safe.")
	require.NoError(t, err)

	assert.Equal(t, services.StateAwaitingAnswer, session.State)
	assert.Equal(t, "Who was involved?", session.CurrentQuestion)
	assert.Equal(t, "Full name of the participant.", session.CurrentSubtext)
	require.Len(t, session.Turns, 1)
	assert.Equal(t, "Yes, everyone is safe.", session.Turns[0].Answer)
	assert.Equal(t, "Is everyone safe right now? Are there any injuries?", session.Turns[0].Question)
}

func TestSubmitAnswerOnlySplitsFirstDelimiter(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{replies: []string{
		"What happened? | Include who|what|where if you can.",
	}}
	svc, _ := newConversation(t, completer)

	session, err := svc.SubmitAnswer(context.Background(), 7, "session-1", "Everyone is fine.")
	require.NoError(t, err)
	assert.Equal(t, "What happened?", session.CurrentQuestion)
	assert.Equal(t, "Include who|what|where if you can.", session.CurrentSubtext)
}

func TestSubmitAnswerRejectsEmptyAnswer(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{}
	svc, _ := newConversation(t, completer)

	_, err := svc.SubmitAnswer(context.Background(), 7, "session-1", "   ")
	require.Error(t, err)
	assert.Zero(t, completer.calls)
}

func TestSubmitAnswerSentinelMovesToReview(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{replies: []string{"REPORT_COMPLETE"}}
	svc, _ := newConversation(t, completer)

	session, err := svc.SubmitAnswer(context.Background(), 7, "session-1", "Nothing else to add.")
	require.NoError(t, err)
	assert.Equal(t, services.StateReview, session.State)
	assert.Empty(t, session.CurrentQuestion)

	// No further answers are accepted once under review.
	_, err = svc.SubmitAnswer(context.Background(), 7, "session-1", "One more thing.")
	require.Error(t, err)
}

func TestSubmitAnswerFallsBackWhenCompletionFails(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{err: errors.New("upstream down")}
	svc, _ := newConversation(t, completer)

	session, err := svc.SubmitAnswer(context.Background(), 7, "session-1", "He fell in the kitchen.")
	require.NoError(t, err, "a dead completion service must not fail the submission")
	assert.Equal(t, services.StateAwaitingAnswer, session.State)
	assert.Equal(t, "Can you tell me more about what happened?", session.CurrentQuestion)
	require.Len(t, session.Turns, 1, "the answer is still recorded")
}

func TestGoBackRestoresPreviousAnswerWithoutModelCall(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{replies: []string{
		"Who was involved? | Name the participant.",
	}}
	svc, _ := newConversation(t, completer)

	_, err := svc.SubmitAnswer(context.Background(), 7, "session-1", "Yes, all safe.")
	require.NoError(t, err)
	callsAfterSubmit := completer.calls

	session, err := svc.GoBack(7, "session-1")
	require.NoError(t, err)

	assert.Equal(t, callsAfterSubmit, completer.calls, "going back must not call the model")
	assert.Empty(t, session.Turns)
	assert.Equal(t, "Is everyone safe right now? Are there any injuries?", session.CurrentQuestion)
	assert.Equal(t, "Yes, all safe.", session.CurrentAnswer, "previous answer restored verbatim")
	assert.Equal(t, services.StateAwaitingAnswer, session.State)
}

func TestGoBackOnFirstQuestionIsNoOp(t *testing.T) {
	t.Parallel()

	svc, _ := newConversation(t, &scriptedCompleter{})
	session, err := svc.GoBack(7, "session-1")
	require.NoError(t, err)
	assert.Empty(t, session.Turns)
	assert.Equal(t, services.StateAwaitingAnswer, session.State)
}

func TestEditTurnTruncatesEverythingAfterIt(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{replies: []string{
		"Who was involved? | Name them.",
		"Where did it happen? | Be specific.",
		"What happened? | In your own words.",
	}}
	svc, _ := newConversation(t, completer)

	ctx := context.Background()
	for _, answer := range []string{"All safe.", "James was involved.", "In the kitchen."} {
		_, err := svc.SubmitAnswer(ctx, 7, "session-1", answer)
		require.NoError(t, err)
	}

	session, err := svc.EditTurn(7, "session-1", 1)
	require.NoError(t, err)

	require.Len(t, session.Turns, 1, "turns after the edited one are discarded")
	assert.Equal(t, "All safe.", session.Turns[0].Answer)
	assert.Equal(t, "Who was involved?", session.CurrentQuestion)
	assert.Equal(t, "James was involved.", session.CurrentAnswer)

	_, err = svc.EditTurn(7, "session-1", 5)
	require.Error(t, err, "out of range index is rejected")
}

func TestFinishEarly(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{replies: []string{
		"Who was involved? | Name them.",
		"Where did it happen? | Be specific.",
	}}
	svc, _ := newConversation(t, completer)
	ctx := context.Background()

	_, err := svc.SubmitAnswer(ctx, 7, "session-1", "Everyone is safe.")
	require.NoError(t, err)

	_, _, err = svc.FinishEarly(7, "session-1", false)
	require.Error(t, err, "one answer is not enough to finish early")

	_, err = svc.SubmitAnswer(ctx, 7, "session-1", "The participant, James.")
	require.NoError(t, err)

	session, score, err := svc.FinishEarly(7, "session-1", false)
	require.NoError(t, err)
	assert.Equal(t, services.StateAwaitingAnswer, session.State, "without force the session keeps going")
	assert.True(t, score.Requirements["safety"])

	session, _, err = svc.FinishEarly(7, "session-1", true)
	require.NoError(t, err)
	assert.Equal(t, services.StateReview, session.State)
}

func TestGenerateFinalReportParsesModelJSON(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{replies: []string{
		"Next? | sub",
		"Here you go:\n```json\n{\"participant_name\":\"James\",\"location\":\"kitchen\",\"summary\":\"James fell\",\"description\":\"James fell while reaching for a cup\",\"action_taken\":\"helped him up\",\"injuries_reported\":false,\"category\":\"injury\"}\n```",
	}}
	svc, _ := newConversation(t, completer)

	_, err := svc.SubmitAnswer(context.Background(), 7, "session-1", "James fell in the kitchen but he was not hurt.")
	require.NoError(t, err)

	final, err := svc.GenerateFinalReport(context.Background(), 7, "session-1")
	require.NoError(t, err)

	assert.Equal(t, "James", final.ParticipantName)
	assert.Equal(t, "kitchen", final.Location)
	assert.Equal(t, "injury", final.Category)
	assert.False(t, final.Fallback)
	assert.NotEmpty(t, final.RawConversation)
	assert.Equal(t, models.SeverityMedium, final.Severity, "severity is classified locally from the transcript")

	session, err := svc.GetSession(7, "session-1")
	require.NoError(t, err)
	assert.Equal(t, services.StateDone, session.State)
}

func TestGenerateFinalReportFallsBackOnGarbage(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{replies: []string{
		"Next? | sub",
		"sorry, I cannot help with that",
	}}
	svc, _ := newConversation(t, completer)

	_, err := svc.SubmitAnswer(context.Background(), 7, "session-1", "He fell. Nothing else happened.")
	require.NoError(t, err)

	final, err := svc.GenerateFinalReport(context.Background(), 7, "session-1")
	require.NoError(t, err, "an unparseable completion never loses the conversation")
	assert.True(t, final.Fallback)
	assert.Equal(t, "He fell.", final.Summary)
	assert.Equal(t, "He fell. Nothing else happened.", final.Description)
}

func TestResumeSessionRebuildsFromDraft(t *testing.T) {
	t.Parallel()

	svc := services.NewConversationService(&scriptedCompleter{}, &config.Config{})

	draft := &models.DraftReport{
		CurrentQuestion: "Where did it happen?",
		CurrentSubtext:  "Room, area or address.",
		CurrentAnswer:   "In the",
	}
	require.NoError(t, draft.SetTurns([]models.ConversationTurn{
		{Question: "Is everyone safe?", Answer: "Yes."},
	}))

	session, err := svc.ResumeSession(3, "resumed", draft)
	require.NoError(t, err)
	assert.Equal(t, services.StateAwaitingAnswer, session.State)
	require.Len(t, session.Turns, 1)
	assert.Equal(t, "Where did it happen?", session.CurrentQuestion)
	assert.Equal(t, "Room, area or address.", session.CurrentSubtext, "the pending question keeps its helper text across a resume")
	assert.Equal(t, "In the", session.CurrentAnswer)
}

func TestSessionsAreReturnedAsCopies(t *testing.T) {
	t.Parallel()

	svc, session := newConversation(t, &scriptedCompleter{replies: []string{"Who was involved?|Names and roles."}})

	// Mutating a returned session must not leak into the service's state.
	session.State = services.StateDone
	session.CurrentQuestion = "scribbled over"

	stored, err := svc.GetSession(7, "session-1")
	require.NoError(t, err)
	assert.Equal(t, services.StateAwaitingAnswer, stored.State)
	assert.NotEqual(t, "scribbled over", stored.CurrentQuestion)

	after, err := svc.SubmitAnswer(context.Background(), 7, "session-1", "Yes, everyone is safe.")
	require.NoError(t, err)
	require.Len(t, after.Turns, 1)
	after.Turns[0].Answer = "tampered"

	stored, err = svc.GetSession(7, "session-1")
	require.NoError(t, err)
	require.Len(t, stored.Turns, 1)
	assert.Equal(t, "Yes, everyone is safe.", stored.Turns[0].Answer)
}

func TestJoinTranscript(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", services.JoinTranscript("", "hello"))
	assert.Equal(t, "hello", services.JoinTranscript("hello", ""))
	assert.Equal(t, "hello world", services.JoinTranscript("hello", "world"))
	assert.Equal(t, "a b c", services.JoinTranscript(services.JoinTranscript("a", "b"), "c"))
}

func TestEndSessionForgetsState(t *testing.T) {
	t.Parallel()

	svc, _ := newConversation(t, &scriptedCompleter{})
	svc.EndSession(7, "session-1")
	_, err := svc.GetSession(7, "session-1")
	require.Error(t, err)
}

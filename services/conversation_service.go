package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/echoflow-solutions/carescribe-api/config"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/services/ai"
	openai "github.com/sashabaranov/go-openai"
)

type ConversationState string

const (
	StateIdle                 ConversationState = "idle"
	StateAwaitingAnswer       ConversationState = "awaiting-answer"
	StateSubmittingAnswer     ConversationState = "submitting-answer"
	StateAwaitingNextQuestion ConversationState = "awaiting-next-question"
	StatePausedForEdit        ConversationState = "paused-for-edit"
	StateReview               ConversationState = "review"
	StateGeneratingFinal      ConversationState = "generating-final-report"
	StateDone                 ConversationState = "done"
)

const (
	// completionSentinel is the literal the model returns when it decides
	// the conversation has covered everything it needs.
	completionSentinel = "REPORT_COMPLETE"

	// questionDelimiter separates question from subtext in a completion.
	questionDelimiter = "|"

	// firstQuestion opens every guided conversation. Safety comes first.
	firstQuestion        = "Is everyone safe right now? Are there any injuries?"
	firstQuestionSubtext = "Check the participant and anyone else involved before continuing."

	// fallbackQuestion keeps the conversation moving when the completion
	// service is unreachable.
	fallbackQuestion = "Can you tell me more about what happened?"

	minTurnsForEarlyFinish = 2
)

const nextQuestionPrompt = `You are guiding a disability support worker through documenting an incident, one question at a time.
Given the conversation so far, reply with the single next question to ask.
Format: question text, then "|", then one short line of helper subtext. Do not number questions.
Cover safety, the participant involved, location, what happened, what led up to it, injuries, actions taken, witnesses and notifications.
When the conversation has covered enough for an NDIS incident report, reply with exactly REPORT_COMPLETE and nothing else.`

const finalReportPrompt = `Extract a structured incident report from the conversation below.
Reply with a single JSON object and nothing else, using exactly these keys:
participant_name, location, summary, antecedent, description, action_taken, injuries_reported (boolean), category.`

// ConversationSession is the server-held state of one quick-report wizard
// session. One session per (user, session id) pair.
type ConversationSession struct {
	UserID          uint                      `json:"user_id"`
	SessionID       string                    `json:"session_id"`
	State           ConversationState         `json:"state"`
	Turns           []models.ConversationTurn `json:"turns"`
	CurrentQuestion string                    `json:"current_question"`
	CurrentSubtext  string                    `json:"current_subtext"`
	CurrentAnswer   string                    `json:"current_answer"`
}

// snapshot copies the session so callers can read and serialize it without
// holding the service mutex.
func (c *ConversationSession) snapshot() *ConversationSession {
	out := *c
	out.Turns = make([]models.ConversationTurn, len(c.Turns))
	copy(out.Turns, c.Turns)
	return &out
}

type ConversationService interface {
	StartSession(userID uint, sessionID string) *ConversationSession
	GetSession(userID uint, sessionID string) (*ConversationSession, error)
	ResumeSession(userID uint, sessionID string, draft *models.DraftReport) (*ConversationSession, error)
	SubmitAnswer(ctx context.Context, userID uint, sessionID, answer string) (*ConversationSession, error)
	GoBack(userID uint, sessionID string) (*ConversationSession, error)
	EditTurn(userID uint, sessionID string, index int) (*ConversationSession, error)
	FinishEarly(userID uint, sessionID string, force bool) (*ConversationSession, ComplianceResult, error)
	GenerateFinalReport(ctx context.Context, userID uint, sessionID string) (*models.FinalReport, error)
	AppendTranscript(userID uint, sessionID, transcript string) (*ConversationSession, error)
	EndSession(userID uint, sessionID string)
}

type conversationService struct {
	Config    *config.Config
	completer ai.Completer

	mu       sync.Mutex
	sessions map[string]*ConversationSession
}

// NewConversationService instantiates a ConversationService.
func NewConversationService(completer ai.Completer, conf *config.Config) ConversationService {
	return &conversationService{
		Config:    conf,
		completer: completer,
		sessions:  make(map[string]*ConversationSession),
	}
}

func sessionKey(userID uint, sessionID string) string {
	return fmt.Sprintf("%d:%s", userID, sessionID)
}

func (s *conversationService) StartSession(userID uint, sessionID string) *ConversationSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &ConversationSession{
		UserID:          userID,
		SessionID:       sessionID,
		State:           StateAwaitingAnswer,
		Turns:           []models.ConversationTurn{},
		CurrentQuestion: firstQuestion,
		CurrentSubtext:  firstQuestionSubtext,
	}
	s.sessions[sessionKey(userID, sessionID)] = session
	return session.snapshot()
}

func (s *conversationService) GetSession(userID uint, sessionID string) (*ConversationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return session.snapshot(), nil
}

// lookup returns the live session. The caller must hold s.mu.
func (s *conversationService) lookup(userID uint, sessionID string) (*ConversationSession, error) {
	session, ok := s.sessions[sessionKey(userID, sessionID)]
	if !ok {
		return nil, apiError.New("conversation session not found", http.StatusNotFound)
	}
	return session, nil
}

// ResumeSession rebuilds the in-memory state machine from a recovered draft.
func (s *conversationService) ResumeSession(userID uint, sessionID string, draft *models.DraftReport) (*ConversationSession, error) {
	turns, err := draft.Turns()
	if err != nil {
		return nil, apiError.New("draft conversation is unreadable", http.StatusBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	question := draft.CurrentQuestion
	subtext := draft.CurrentSubtext
	if question == "" {
		question = firstQuestion
		subtext = firstQuestionSubtext
	}
	session := &ConversationSession{
		UserID:          userID,
		SessionID:       sessionID,
		State:           StateAwaitingAnswer,
		Turns:           turns,
		CurrentQuestion: question,
		CurrentSubtext:  subtext,
		CurrentAnswer:   draft.CurrentAnswer,
	}
	s.sessions[sessionKey(userID, sessionID)] = session
	return session.snapshot(), nil
}

func (s *conversationService) SubmitAnswer(ctx context.Context, userID uint, sessionID, answer string) (*ConversationSession, error) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return nil, apiError.New("answer must not be empty", http.StatusBadRequest)
	}

	s.mu.Lock()
	session, err := s.lookup(userID, sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if session.State != StateAwaitingAnswer {
		state := session.State
		s.mu.Unlock()
		return nil, apiError.New("not expecting an answer in state "+string(state), http.StatusConflict)
	}
	session.State = StateSubmittingAnswer
	session.Turns = append(session.Turns, models.ConversationTurn{
		Question:  session.CurrentQuestion,
		Subtext:   session.CurrentSubtext,
		Answer:    trimmed,
		Timestamp: time.Now(),
	})
	session.CurrentAnswer = ""
	session.State = StateAwaitingNextQuestion
	history := historyMessages(session.Turns)
	s.mu.Unlock()

	reply, err := s.completer.Complete(ctx, nextQuestionPrompt, history)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// A dead completion service must not stall the author.
		log.Printf("completion call failed, using fallback question: %v", err)
		session.CurrentQuestion = fallbackQuestion
		session.CurrentSubtext = ""
		session.State = StateAwaitingAnswer
		return session.snapshot(), nil
	}

	reply = strings.TrimSpace(reply)
	if reply == completionSentinel {
		session.State = StateReview
		session.CurrentQuestion = ""
		session.CurrentSubtext = ""
		return session.snapshot(), nil
	}

	question, subtext := splitQuestion(reply)
	session.CurrentQuestion = question
	session.CurrentSubtext = subtext
	session.State = StateAwaitingAnswer
	return session.snapshot(), nil
}

// splitQuestion parses "<question>|<subtext>" on the first delimiter only.
func splitQuestion(reply string) (string, string) {
	parts := strings.SplitN(reply, questionDelimiter, 2)
	question := strings.TrimSpace(parts[0])
	if question == "" {
		question = fallbackQuestion
	}
	subtext := ""
	if len(parts) == 2 {
		subtext = strings.TrimSpace(parts[1])
	}
	return question, subtext
}

func historyMessages(turns []models.ConversationTurn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)*2)
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: turn.Question,
		})
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: turn.Answer,
		})
	}
	return messages
}

// GoBack pops the last turn and redisplays its question and answer verbatim.
// It never calls the completion service.
func (s *conversationService) GoBack(userID uint, sessionID string) (*ConversationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if len(session.Turns) == 0 {
		return session.snapshot(), nil
	}
	last := session.Turns[len(session.Turns)-1]
	session.Turns = session.Turns[:len(session.Turns)-1]
	session.CurrentQuestion = last.Question
	session.CurrentSubtext = last.Subtext
	session.CurrentAnswer = last.Answer
	session.State = StateAwaitingAnswer
	return session.snapshot(), nil
}

// EditTurn truncates the conversation to [0, index) and restores that turn's
// question and answer as currently editable.
func (s *conversationService) EditTurn(userID uint, sessionID string, index int) (*ConversationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(session.Turns) {
		return nil, apiError.New("turn index out of range", http.StatusBadRequest)
	}
	target := session.Turns[index]
	session.Turns = session.Turns[:index]
	session.CurrentQuestion = target.Question
	session.CurrentSubtext = target.Subtext
	session.CurrentAnswer = target.Answer
	session.State = StateAwaitingAnswer
	return session.snapshot(), nil
}

// FinishEarly surfaces the compliance score once at least two turns exist.
// With force set the session moves to review regardless of the score.
func (s *conversationService) FinishEarly(userID uint, sessionID string, force bool) (*ConversationSession, ComplianceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, ComplianceResult{}, err
	}
	if len(session.Turns) < minTurnsForEarlyFinish {
		return nil, ComplianceResult{}, apiError.New("at least two answers are needed before finishing early", http.StatusBadRequest)
	}
	result := ScoreConversation(session.Turns)
	if force {
		session.State = StateReview
	}
	return session.snapshot(), result, nil
}

func (s *conversationService) GenerateFinalReport(ctx context.Context, userID uint, sessionID string) (*models.FinalReport, error) {
	s.mu.Lock()
	session, err := s.lookup(userID, sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	session.State = StateGeneratingFinal
	turns := make([]models.ConversationTurn, len(session.Turns))
	copy(turns, session.Turns)
	s.mu.Unlock()

	transcript := conversationTranscript(turns)
	reply, err := s.completer.Complete(ctx, finalReportPrompt, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: transcript},
	})

	var report models.FinalReport
	if err != nil || json.Unmarshal([]byte(extractJSON(reply)), &report) != nil {
		// Never lose the conversation over a bad extraction.
		if err != nil {
			log.Printf("final report completion failed: %v", err)
		} else {
			log.Printf("final report JSON was unparseable, using fallback record")
		}
		report = fallbackReport(turns)
	}

	// Classification looks at the author's answers only. The scripted
	// questions mention injuries and would skew the result.
	answers := answersText(turns)
	report.RawConversation = transcript
	report.Severity = ClassifySeverity(answers)
	if report.Category == "" {
		report.Category = ClassifyCategory(answers)
	}

	s.mu.Lock()
	session.State = StateDone
	s.mu.Unlock()
	return &report, nil
}

// AppendTranscript joins a finished voice segment onto the in-progress
// answer. Segments concatenate with a single space in completion order.
func (s *conversationService) AppendTranscript(userID uint, sessionID, transcript string) (*ConversationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	session.CurrentAnswer = JoinTranscript(session.CurrentAnswer, transcript)
	return session.snapshot(), nil
}

func (s *conversationService) EndSession(userID uint, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(userID, sessionID))
}

// JoinTranscript appends a transcript segment to an answer with a single
// separating space. An empty existing answer takes the segment verbatim.
func JoinTranscript(existing, segment string) string {
	if existing == "" {
		return segment
	}
	if segment == "" {
		return existing
	}
	return existing + " " + segment
}

func answersText(turns []models.ConversationTurn) string {
	var answers []string
	for _, turn := range turns {
		answers = append(answers, turn.Answer)
	}
	return strings.Join(answers, " ")
}

func conversationTranscript(turns []models.ConversationTurn) string {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString("Q: ")
		b.WriteString(turn.Question)
		b.WriteString("\nA: ")
		b.WriteString(turn.Answer)
		b.WriteString("\n")
	}
	return b.String()
}

// extractJSON pulls the first {...} block out of a completion that may wrap
// its JSON in prose or code fences.
func extractJSON(reply string) string {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end < start {
		return reply
	}
	return reply[start : end+1]
}

func fallbackReport(turns []models.ConversationTurn) models.FinalReport {
	description := answersText(turns)
	return models.FinalReport{
		Summary:     firstSentence(description),
		Description: description,
		Fallback:    true,
	}
}

func firstSentence(text string) string {
	if idx := strings.IndexAny(text, ".!?"); idx != -1 {
		return text[:idx+1]
	}
	return text
}

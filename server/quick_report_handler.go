package server

import (
	"net/http"

	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/echoflow-solutions/carescribe-api/services"
	"github.com/gin-gonic/gin"
)

type sessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type answerRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Answer    string `json:"answer" binding:"required"`
}

type editTurnRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Index     *int   `json:"index" binding:"required"`
}

type finishEarlyRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Force     bool   `json:"force"`
}

type submitQuickReportRequest struct {
	SessionID string             `json:"session_id" binding:"required"`
	Report    models.FinalReport `json:"report" binding:"required"`
}

func (s *Server) handleStartConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		userID := c.GetUint("userID")

		session := s.ConversationService.StartSession(userID, req.SessionID)
		response.JSON(c, "conversation started", http.StatusOK, session, nil)
	}
}

func (s *Server) handleGetConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		sessionID := c.Query("session_id")
		if sessionID == "" {
			response.JSON(c, "session_id is required", http.StatusBadRequest, nil, apiError.ErrBadRequest)
			return
		}

		session, err := s.ConversationService.GetSession(userID, sessionID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "conversation session", http.StatusOK, session, nil)
	}
}

// handleResumeConversation rebuilds a wizard session from the saved draft,
// so a page reload or a new device picks up mid-conversation.
func (s *Server) handleResumeConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		userID := c.GetUint("userID")

		draft, _, err := s.DraftService.GetDraft(userID, req.SessionID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		if draft == nil {
			response.JSON(c, "no draft to resume", http.StatusNotFound, nil, apiError.ErrNotFound)
			return
		}

		session, err := s.ConversationService.ResumeSession(userID, req.SessionID, draft)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "conversation resumed", http.StatusOK, session, nil)
	}
}

func (s *Server) handleSubmitAnswer() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req answerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		userID := c.GetUint("userID")

		session, err := s.ConversationService.SubmitAnswer(c.Request.Context(), userID, req.SessionID, req.Answer)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		s.scheduleAutosave(userID, session)
		response.JSON(c, "answer recorded", http.StatusOK, session, nil)
	}
}

func (s *Server) handleGoBack() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		userID := c.GetUint("userID")

		session, err := s.ConversationService.GoBack(userID, req.SessionID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		s.scheduleAutosave(userID, session)
		response.JSON(c, "went back one question", http.StatusOK, session, nil)
	}
}

func (s *Server) handleEditTurn() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req editTurnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		userID := c.GetUint("userID")

		session, err := s.ConversationService.EditTurn(userID, req.SessionID, *req.Index)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		s.scheduleAutosave(userID, session)
		response.JSON(c, "editing from earlier answer", http.StatusOK, session, nil)
	}
}

func (s *Server) handleFinishEarly() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req finishEarlyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		userID := c.GetUint("userID")

		session, score, err := s.ConversationService.FinishEarly(userID, req.SessionID, req.Force)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "conversation moved to review", http.StatusOK, gin.H{
			"session":    session,
			"compliance": score,
		}, nil)
	}
}

func (s *Server) handleGenerateFinalReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		userID := c.GetUint("userID")

		final, err := s.ConversationService.GenerateFinalReport(c.Request.Context(), userID, req.SessionID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "final report generated", http.StatusOK, final, nil)
	}
}

// handleSubmitQuickReport stores the reviewed final report as an incident
// report and retires the draft.
func (s *Server) handleSubmitQuickReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitQuickReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		userID := c.GetUint("userID")
		user, _ := c.MustGet("user").(*models.User)

		var score services.ComplianceResult
		if session, err := s.ConversationService.GetSession(userID, req.SessionID); err == nil {
			score = services.ScoreConversation(session.Turns)
		}

		report, err := s.IncidentReportService.SubmitFromConversation(userID, user, req.SessionID, &req.Report, score)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		if err := s.DraftService.MarkComplete(userID, req.SessionID); err != nil {
			response.HandleErrors(c, err)
			return
		}
		if s.AutosaveManager != nil {
			s.AutosaveManager.Forget(userID, req.SessionID)
		}
		s.ConversationService.EndSession(userID, req.SessionID)

		response.JSON(c, "incident report submitted", http.StatusCreated, report, nil)
	}
}

func (s *Server) handleScoreConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SessionID    string                    `json:"session_id"`
			Conversation []models.ConversationTurn `json:"conversation"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		turns := req.Conversation
		if turns == nil && req.SessionID != "" {
			session, err := s.ConversationService.GetSession(c.GetUint("userID"), req.SessionID)
			if err != nil {
				response.HandleErrors(c, err)
				return
			}
			turns = session.Turns
		}

		response.JSON(c, "compliance score", http.StatusOK, services.ScoreConversation(turns), nil)
	}
}

func (s *Server) handleComplianceRequirements() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.JSON(c, "compliance requirements", http.StatusOK, services.ComplianceRequirements(), nil)
	}
}

// scheduleAutosave feeds the debounced autosave loop with the current
// session state after a conversation mutation.
func (s *Server) scheduleAutosave(userID uint, session *services.ConversationSession) {
	if s.AutosaveManager == nil || session == nil {
		return
	}
	s.AutosaveManager.NotifyChange(&models.SaveDraftRequest{
		UserID:          userID,
		SessionID:       session.SessionID,
		Conversation:    session.Turns,
		CurrentQuestion: session.CurrentQuestion,
		CurrentSubtext:  session.CurrentSubtext,
		CurrentAnswer:   session.CurrentAnswer,
		Progress:        len(session.Turns),
		ReportType:      "quick_report",
	})
}

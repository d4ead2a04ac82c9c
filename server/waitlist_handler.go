package server

import (
	"net/http"

	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleJoinWaitlist() gin.HandlerFunc {
	return func(c *gin.Context) {
		var entry models.WaitlistEntry
		if err := c.ShouldBindJSON(&entry); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		created, err := s.WaitlistService.Join(&entry)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "you're on the waitlist", http.StatusCreated, created, nil)
	}
}

func (s *Server) handleWaitlistCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.WaitlistService.Count()
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "waitlist count", http.StatusOK, gin.H{"count": count}, nil)
	}
}

func (s *Server) handleSubmitSurvey() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string                 `json:"email" binding:"required,email"`
			SurveyID string                 `json:"survey_id" binding:"required"`
			Answers  map[string]interface{} `json:"answers" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		if err := s.WaitlistService.SubmitSurvey(req.Email, req.SurveyID, req.Answers); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "survey submitted", http.StatusCreated, nil, nil)
	}
}

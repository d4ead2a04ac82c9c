package server

import (
	"net/http"

	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/gin-gonic/gin"
)

// handleTranscribeSegment accepts one recorded audio segment as multipart
// form data and returns its transcription, merged into the session's
// in-progress answer when one exists.
func (s *Server) handleTranscribeSegment() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		sessionID := c.PostForm("session_id")
		if sessionID == "" {
			response.JSON(c, "session_id is required", http.StatusBadRequest, nil, apiError.ErrBadRequest)
			return
		}

		file, header, err := c.Request.FormFile("audio")
		if err != nil {
			response.JSON(c, "audio file is required", http.StatusBadRequest, nil, err)
			return
		}
		defer file.Close()

		result, err := s.TranscriptionService.TranscribeSegment(c.Request.Context(), userID, sessionID, file, header)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		if s.AutosaveManager != nil {
			s.AutosaveManager.Touch(userID, sessionID)
		}
		response.JSON(c, "segment transcribed", http.StatusOK, result, nil)
	}
}

package server

import (
	"log"
	"net/http"
	"time"

	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// handleSaveDraft is the draft upsert endpoint the autosave loop hits. The
// response shape is part of the resilience contract: a database outage is a
// 200 with useLocalStorage set, never a 5xx.
func (s *Server) handleSaveDraft() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SaveDraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SaveDraftResponse{
				Success:         false,
				UseLocalStorage: true,
				Message:         "invalid draft payload",
				Error:           err.Error(),
			})
			return
		}
		req.UserID = c.GetUint("userID")

		resp, err := s.DraftService.SaveDraft(&req)
		if err != nil {
			status := http.StatusInternalServerError
			if apiErr, ok := err.(*apiError.Error); ok {
				status = apiErr.Status
			}
			c.JSON(status, models.SaveDraftResponse{
				Success:         false,
				UseLocalStorage: true,
				Message:         "draft not saved",
				Error:           err.Error(),
			})
			return
		}

		if s.AutosaveManager != nil {
			s.AutosaveManager.Touch(req.UserID, req.SessionID)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) handleGetActiveDraft() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		sessionID := c.Query("session_id")
		if sessionID == "" {
			response.JSON(c, "session_id is required", http.StatusBadRequest, nil, apiError.ErrBadRequest)
			return
		}

		draft, fromSnapshot, err := s.DraftService.GetDraft(userID, sessionID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		if draft == nil {
			response.JSON(c, "no active draft", http.StatusOK, gin.H{"draft": nil}, nil)
			return
		}
		response.JSON(c, "active draft", http.StatusOK, gin.H{
			"draft":         draft,
			"from_snapshot": fromSnapshot,
		}, nil)
	}
}

func (s *Server) handleDeleteDraft() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		sessionID := c.Query("session_id")

		draftID, err := uuid.Parse(c.Param("draftID"))
		if err != nil {
			response.JSON(c, "invalid draft id", http.StatusBadRequest, nil, apiError.ErrBadRequest)
			return
		}

		if err := s.DraftService.DeleteDraft(draftID, userID, sessionID); err != nil {
			response.HandleErrors(c, err)
			return
		}
		if s.AutosaveManager != nil {
			s.AutosaveManager.Forget(userID, sessionID)
		}
		s.ConversationService.EndSession(userID, sessionID)
		response.JSON(c, "draft discarded", http.StatusOK, nil, nil)
	}
}

var draftStatusUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleDraftStatusFeed streams autosave outcomes for one session over a
// websocket, so the client can show saved/local-only/idle states live.
func (s *Server) handleDraftStatusFeed() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		sessionID := c.Query("session_id")
		if sessionID == "" {
			response.JSON(c, "session_id is required", http.StatusBadRequest, nil, apiError.ErrBadRequest)
			return
		}

		conn, err := draftStatusUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("draft status upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		events := s.AutosaveManager.Subscribe(userID, sessionID)
		defer s.AutosaveManager.Unsubscribe(userID, sessionID, events)

		// Reader goroutine notices the peer going away.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			}
		}
	}
}

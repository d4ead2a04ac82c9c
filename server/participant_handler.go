package server

import (
	"net/http"
	"strconv"

	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/gin-gonic/gin"
)

func participantIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("participantID"), 10, 64)
	if err != nil {
		response.JSON(c, "invalid participant id", http.StatusBadRequest, nil, apiError.ErrBadRequest)
		return 0, false
	}
	return uint(id), true
}

func (s *Server) handleCreateParticipant() gin.HandlerFunc {
	return func(c *gin.Context) {
		var participant models.Participant
		if err := c.ShouldBindJSON(&participant); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		created, err := s.ParticipantService.CreateParticipant(&participant)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "participant created", http.StatusCreated, created, nil)
	}
}

func (s *Server) handleListParticipants() gin.HandlerFunc {
	return func(c *gin.Context) {
		facilityID := c.Query("facility_id")
		if facilityID == "" {
			if user, ok := c.MustGet("user").(*models.User); ok {
				facilityID = user.FacilityID
			}
		}
		participants, err := s.ParticipantService.ListParticipants(facilityID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "participants", http.StatusOK, participants, nil)
	}
}

func (s *Server) handleGetParticipant() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := participantIDParam(c)
		if !ok {
			return
		}
		participant, err := s.ParticipantService.GetParticipant(id)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "participant", http.StatusOK, participant, nil)
	}
}

func (s *Server) handleUpdateParticipant() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := participantIDParam(c)
		if !ok {
			return
		}
		var participant models.Participant
		if err := c.ShouldBindJSON(&participant); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		participant.ID = id

		if err := s.ParticipantService.UpdateParticipant(&participant); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "participant updated", http.StatusOK, participant, nil)
	}
}

func (s *Server) handleDeactivateParticipant() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := participantIDParam(c)
		if !ok {
			return
		}
		if err := s.ParticipantService.DeactivateParticipant(id); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "participant deactivated", http.StatusOK, nil, nil)
	}
}

package server

import (
	"net/http"
	"strconv"
	"time"

	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleCreateMedication() gin.HandlerFunc {
	return func(c *gin.Context) {
		var medication models.Medication
		if err := c.ShouldBindJSON(&medication); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		created, err := s.MedicationService.CreateMedication(&medication)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "medication created", http.StatusCreated, created, nil)
	}
}

func (s *Server) handleGetParticipantMedications() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := participantIDParam(c)
		if !ok {
			return
		}
		medications, err := s.MedicationService.GetMedicationsByParticipant(id)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "medications", http.StatusOK, medications, nil)
	}
}

func (s *Server) handleLogMedication() gin.HandlerFunc {
	return func(c *gin.Context) {
		medicationID, err := strconv.ParseUint(c.Param("medicationID"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid medication id", http.StatusBadRequest, nil, apiError.ErrBadRequest)
			return
		}

		var req models.MedicationLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		entry, logErr := s.MedicationService.LogAdministration(uint(medicationID), c.GetUint("userID"), &req)
		if logErr != nil {
			response.HandleErrors(c, logErr)
			return
		}
		response.JSON(c, "administration logged", http.StatusCreated, entry, nil)
	}
}

func (s *Server) handleGetMedicationLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		medicationID, err := strconv.ParseUint(c.Param("medicationID"), 10, 64)
		if err != nil {
			response.JSON(c, "invalid medication id", http.StatusBadRequest, nil, apiError.ErrBadRequest)
			return
		}

		since := time.Now().AddDate(0, 0, -7)
		if raw := c.Query("since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				response.JSON(c, "since must be RFC3339", http.StatusBadRequest, nil, apiError.ErrBadRequest)
				return
			}
			since = parsed
		}

		entries, logErr := s.MedicationService.GetAdministrationLog(uint(medicationID), since)
		if logErr != nil {
			response.HandleErrors(c, logErr)
			return
		}
		response.JSON(c, "administration log", http.StatusOK, entries, nil)
	}
}

func (s *Server) handleGetDueMedications() gin.HandlerFunc {
	return func(c *gin.Context) {
		due, err := s.MedicationService.GetDueMedications(time.Now())
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "due medications", http.StatusOK, due, nil)
	}
}

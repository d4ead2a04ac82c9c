package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleClockIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ClockInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		shift, err := s.ShiftService.ClockIn(c.GetUint("userID"), &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "clocked in", http.StatusCreated, shift, nil)
	}
}

func (s *Server) handleClockOut() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Notes string `json:"notes"`
		}
		// The body is optional on clock-out.
		_ = c.ShouldBindJSON(&req)

		shift, err := s.ShiftService.ClockOut(c.GetUint("userID"), req.Notes)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "clocked out", http.StatusOK, gin.H{
			"shift":   shift,
			"elapsed": shift.Elapsed(time.Now()).String(),
		}, nil)
	}
}

func (s *Server) handleCurrentShift() gin.HandlerFunc {
	return func(c *gin.Context) {
		shift, err := s.ShiftService.CurrentShift(c.GetUint("userID"))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "current shift", http.StatusOK, gin.H{
			"shift":   shift,
			"elapsed": shift.Elapsed(time.Now()).String(),
		}, nil)
	}
}

func (s *Server) handleShiftHistory() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		shifts, err := s.ShiftService.ShiftHistory(c.GetUint("userID"), limit)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "shift history", http.StatusOK, shifts, nil)
	}
}

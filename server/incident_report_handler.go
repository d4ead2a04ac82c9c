package server

import (
	"net/http"
	"strconv"

	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/echoflow-solutions/carescribe-api/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleCreateIncidentReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		var report models.IncidentReport
		if err := c.ShouldBindJSON(&report); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		report.UserID = c.GetUint("userID")
		if user, ok := c.MustGet("user").(*models.User); ok {
			report.UserFullname = user.Fullname
			if report.FacilityID == "" {
				report.FacilityID = user.FacilityID
			}
		}

		saved, err := s.IncidentReportService.SubmitReport(&report)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "incident report created", http.StatusCreated, saved, nil)
	}
}

func (s *Server) handleListIncidentReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		filter := services.ReportFilter{
			FacilityID:    c.Query("facility_id"),
			ParticipantID: c.Query("participant_id"),
			Severity:      c.Query("severity"),
			Page:          page,
		}
		if c.Query("mine") == "true" {
			filter.UserID = c.GetUint("userID")
		}

		reports, err := s.IncidentReportService.ListReports(filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "incident reports", http.StatusOK, reports, nil)
	}
}

func (s *Server) handleGetIncidentReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := s.IncidentReportService.GetReportByID(c.Param("reportID"))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "incident report", http.StatusOK, report, nil)
	}
}

func (s *Server) handleUpdateReportStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		if err := s.IncidentReportService.UpdateReportStatus(c.Param("reportID"), req.Status); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "report status updated", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleDeleteIncidentReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*models.User)
		if !ok || user.Role.Name != models.RoleAdmin {
			response.JSON(c, "admin access required", http.StatusForbidden, nil, nil)
			return
		}
		if err := s.IncidentReportService.DeleteReport(c.Param("reportID")); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "report deleted", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleGetReportCounts() gin.HandlerFunc {
	return func(c *gin.Context) {
		facilityID := c.Query("facility_id")
		if facilityID == "" {
			if user, ok := c.MustGet("user").(*models.User); ok {
				facilityID = user.FacilityID
			}
		}
		counts, err := s.IncidentReportService.GetReportCounts(facilityID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "report counts", http.StatusOK, counts, nil)
	}
}

// handleUploadReportMedia attaches processed photos to an existing report.
func (s *Server) handleUploadReportMedia() gin.HandlerFunc {
	return func(c *gin.Context) {
		reportID := c.Param("reportID")
		report, err := s.IncidentReportService.GetReportByID(reportID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		files := form.File["media"]
		if len(files) == 0 {
			response.JSON(c, "no media files supplied", http.StatusBadRequest, nil, nil)
			return
		}

		feedURLs, thumbnailURLs, fullSizeURLs, err := s.MediaService.ProcessReportMedia(files, c.GetUint("userID"), reportID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		if err := s.IncidentReportService.AttachMedia(report, feedURLs, thumbnailURLs, fullSizeURLs); err != nil {
			response.HandleErrors(c, err)
			return
		}

		response.JSON(c, "media attached", http.StatusOK, report, nil)
	}
}

package server

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if s.Config.AccessControlAllowOrigin != "" {
		corsConfig.AllowOrigins = []string{s.Config.AccessControlAllowOrigin}
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	limitAI := limitRateForAIEndpoints(newAIRateLimitStore())

	apirouter := router.Group("/api/v1")
	apirouter.GET("/health", s.handleHealthCheck())
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/login", s.handleLogin())
	apirouter.POST("/waitlist", s.handleJoinWaitlist())
	apirouter.GET("/waitlist/count", s.handleWaitlistCount())
	apirouter.POST("/waitlist/survey", s.handleSubmitSurvey())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())
	authorized.GET("/users/all", s.handleGetAllUsers())

	// Draft resilience
	authorized.POST("/drafts", s.handleSaveDraft())
	authorized.GET("/drafts/active", s.handleGetActiveDraft())
	authorized.DELETE("/drafts/:draftID", s.handleDeleteDraft())
	authorized.GET("/drafts/status/ws", s.handleDraftStatusFeed())

	// Quick-report conversation
	authorized.POST("/quick-report/start", s.handleStartConversation())
	authorized.GET("/quick-report/session", s.handleGetConversation())
	authorized.POST("/quick-report/resume", s.handleResumeConversation())
	authorized.POST("/quick-report/answer", limitAI, s.handleSubmitAnswer())
	authorized.POST("/quick-report/back", s.handleGoBack())
	authorized.POST("/quick-report/edit", s.handleEditTurn())
	authorized.POST("/quick-report/finish", s.handleFinishEarly())
	authorized.POST("/quick-report/final", limitAI, s.handleGenerateFinalReport())
	authorized.POST("/quick-report/submit", s.handleSubmitQuickReport())
	authorized.POST("/quick-report/score", s.handleScoreConversation())
	authorized.GET("/quick-report/requirements", s.handleComplianceRequirements())
	authorized.POST("/quick-report/transcribe", limitAI, s.handleTranscribeSegment())

	// Incident reports
	authorized.POST("/reports", s.handleCreateIncidentReport())
	authorized.GET("/reports", s.handleListIncidentReports())
	authorized.GET("/reports/counts", s.handleGetReportCounts())
	authorized.GET("/reports/:reportID", s.handleGetIncidentReport())
	authorized.PUT("/reports/:reportID/status", s.handleUpdateReportStatus())
	authorized.DELETE("/reports/:reportID", s.handleDeleteIncidentReport())
	authorized.POST("/reports/:reportID/media", s.handleUploadReportMedia())

	// Participants
	authorized.POST("/participants", s.handleCreateParticipant())
	authorized.GET("/participants", s.handleListParticipants())
	authorized.GET("/participants/:participantID", s.handleGetParticipant())
	authorized.PUT("/participants/:participantID", s.handleUpdateParticipant())
	authorized.DELETE("/participants/:participantID", s.handleDeactivateParticipant())

	// Medications
	authorized.POST("/medications", s.handleCreateMedication())
	authorized.GET("/participants/:participantID/medications", s.handleGetParticipantMedications())
	authorized.POST("/medications/:medicationID/log", s.handleLogMedication())
	authorized.GET("/medications/:medicationID/log", s.handleGetMedicationLog())
	authorized.GET("/medications/due", s.handleGetDueMedications())

	// Shifts
	authorized.POST("/shifts/clock-in", s.handleClockIn())
	authorized.POST("/shifts/clock-out", s.handleClockOut())
	authorized.GET("/shifts/current", s.handleCurrentShift())
	authorized.GET("/shifts/history", s.handleShiftHistory())
}

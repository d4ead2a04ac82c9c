package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/db"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/server/response"
	"github.com/echoflow-solutions/carescribe-api/services"
	"github.com/gin-gonic/gin"
)

// Server wires the HTTP surface to the service layer.
type Server struct {
	Config                *config.Config
	DB                    db.GormDB
	AuthRepository        db.AuthRepository
	AuthService           services.AuthService
	DraftService          services.DraftService
	AutosaveManager       *services.AutosaveManager
	ConversationService   services.ConversationService
	TranscriptionService  services.TranscriptionService
	IncidentReportService services.IncidentReportService
	MediaService          services.MediaService
	ParticipantService    services.ParticipantService
	MedicationService     services.MedicationService
	ShiftService          services.ShiftService
	WaitlistService       services.WaitlistService
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests before exiting.
func (s *Server) Start() {
	port := s.Config.Port
	if port == 0 {
		port = 8080
	}

	r := s.setupRouter()
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	if s.AutosaveManager != nil {
		s.AutosaveManager.Start()
	}

	go func() {
		log.Printf("server started on port %d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	if s.AutosaveManager != nil {
		s.AutosaveManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}

func respondAndAbort(c *gin.Context, message string, status int, data interface{}, e *apiError.Error) {
	response.JSON(c, message, status, data, e)
	c.Abort()
}

func getTokenFromHeader(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 8 && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

package services

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/db"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IncidentReportService interface {
	SubmitReport(report *models.IncidentReport) (*models.IncidentReport, error)
	SubmitFromConversation(userID uint, user *models.User, sessionID string, final *models.FinalReport, score ComplianceResult) (*models.IncidentReport, error)
	GetReportByID(reportID string) (*models.IncidentReport, error)
	ListReports(filter ReportFilter) ([]models.IncidentReport, error)
	AttachMedia(report *models.IncidentReport, feedURLs, thumbnailURLs, fullSizeURLs []string) error
	UpdateReportStatus(reportID string, status string) error
	DeleteReport(reportID string) error
	GetReportCounts(facilityID string) (*models.IncidentReportCounts, error)
}

// ReportFilter narrows a report listing. Zero values mean no constraint.
type ReportFilter struct {
	FacilityID    string
	ParticipantID string
	Severity      string
	UserID        uint
	Page          int
}

type incidentReportService struct {
	Config     *config.Config
	reportRepo db.IncidentReportRepository
}

func NewIncidentReportService(reportRepo db.IncidentReportRepository, conf *config.Config) IncidentReportService {
	return &incidentReportService{
		Config:     conf,
		reportRepo: reportRepo,
	}
}

var validStatuses = map[string]bool{
	models.ReportStatusSubmitted: true,
	models.ReportStatusReviewed:  true,
	models.ReportStatusClosed:    true,
}

func (s *incidentReportService) SubmitReport(report *models.IncidentReport) (*models.IncidentReport, error) {
	if strings.TrimSpace(report.Description) == "" {
		return nil, apiError.New("description is required", http.StatusBadRequest)
	}
	if report.Severity == "" {
		report.Severity = models.SeverityLow
	}
	if report.TimeOfIncident.IsZero() {
		report.TimeOfIncident = time.Now()
	}
	report.ReportStatus = models.ReportStatusSubmitted

	saved, err := s.reportRepo.SaveIncidentReport(report)
	if err != nil {
		log.Printf("SubmitReport error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return saved, nil
}

// SubmitFromConversation turns the quick-report hand-off into a stored
// incident report.
func (s *incidentReportService) SubmitFromConversation(userID uint, user *models.User, sessionID string, final *models.FinalReport, score ComplianceResult) (*models.IncidentReport, error) {
	if final == nil {
		return nil, apiError.ErrBadRequest
	}
	report := &models.IncidentReport{
		UserID:           userID,
		ReportType:       "quick_report",
		ParticipantName:  final.ParticipantName,
		Location:         final.Location,
		Description:      final.Description,
		Antecedent:       final.Antecedent,
		ActionTaken:      final.ActionTaken,
		InjuriesReported: final.InjuriesReported,
		Category:         final.Category,
		Severity:         final.Severity,
		ComplianceScore:  score.Percentage,
		SourceSessionID:  sessionID,
	}
	if user != nil {
		report.UserFullname = user.Fullname
		report.FacilityID = user.FacilityID
	}
	if report.Description == "" {
		report.Description = final.Summary
	}
	return s.SubmitReport(report)
}

func (s *incidentReportService) GetReportByID(reportID string) (*models.IncidentReport, error) {
	id, err := uuid.Parse(reportID)
	if err != nil {
		return nil, apiError.New("invalid report id", http.StatusBadRequest)
	}
	report, err := s.reportRepo.GetReportByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		log.Printf("GetReportByID error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return report, nil
}

func (s *incidentReportService) ListReports(filter ReportFilter) ([]models.IncidentReport, error) {
	switch {
	case filter.ParticipantID != "":
		return s.reportRepo.GetReportsByParticipant(filter.ParticipantID, filter.Page)
	case filter.Severity != "":
		return s.reportRepo.GetReportsBySeverity(filter.Severity, filter.Page)
	case filter.UserID != 0:
		return s.reportRepo.GetReportsByUser(filter.UserID, filter.Page)
	case filter.FacilityID != "":
		return s.reportRepo.GetReportsByFacility(filter.FacilityID, filter.Page)
	default:
		return s.reportRepo.GetAllReports(filter.Page)
	}
}

// AttachMedia records the stored rendition URLs on an existing report.
func (s *incidentReportService) AttachMedia(report *models.IncidentReport, feedURLs, thumbnailURLs, fullSizeURLs []string) error {
	report.FeedURLs = joinURLs(report.FeedURLs, feedURLs)
	report.ThumbnailURLs = joinURLs(report.ThumbnailURLs, thumbnailURLs)
	report.FullSizeURLs = joinURLs(report.FullSizeURLs, fullSizeURLs)
	if err := s.reportRepo.UpdateReport(report); err != nil {
		log.Printf("AttachMedia error: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func joinURLs(existing string, urls []string) string {
	parts := urls
	if existing != "" {
		parts = append([]string{existing}, urls...)
	}
	return strings.Join(parts, ",")
}

func (s *incidentReportService) UpdateReportStatus(reportID string, status string) error {
	if !validStatuses[status] {
		return apiError.New("invalid report status", http.StatusBadRequest)
	}
	id, err := uuid.Parse(reportID)
	if err != nil {
		return apiError.New("invalid report id", http.StatusBadRequest)
	}
	if err := s.reportRepo.UpdateReportStatus(id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError.ErrNotFound
		}
		log.Printf("UpdateReportStatus error: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (s *incidentReportService) DeleteReport(reportID string) error {
	id, err := uuid.Parse(reportID)
	if err != nil {
		return apiError.New("invalid report id", http.StatusBadRequest)
	}
	if err := s.reportRepo.DeleteByID(id); err != nil {
		log.Printf("DeleteReport error: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (s *incidentReportService) GetReportCounts(facilityID string) (*models.IncidentReportCounts, error) {
	counts, err := s.reportRepo.GetReportCounts(facilityID)
	if err != nil {
		log.Printf("GetReportCounts error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return counts, nil
}

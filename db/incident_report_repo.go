package db

import (
	"time"

	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	DefaultPage     = 1
)

type IncidentReportRepository interface {
	SaveIncidentReport(report *models.IncidentReport) (*models.IncidentReport, error)
	GetReportByID(reportID uuid.UUID) (*models.IncidentReport, error)
	GetAllReports(page int) ([]models.IncidentReport, error)
	GetReportsByFacility(facilityID string, page int) ([]models.IncidentReport, error)
	GetReportsByParticipant(participantID string, page int) ([]models.IncidentReport, error)
	GetReportsBySeverity(severity string, page int) ([]models.IncidentReport, error)
	GetReportsByUser(userID uint, page int) ([]models.IncidentReport, error)
	UpdateReport(report *models.IncidentReport) error
	UpdateReportStatus(reportID uuid.UUID, status string) error
	DeleteByID(reportID uuid.UUID) error
	GetReportCounts(facilityID string) (*models.IncidentReportCounts, error)
}

type incidentReportRepo struct {
	DB *gorm.DB
}

func NewIncidentReportRepo(db *GormDB) IncidentReportRepository {
	return &incidentReportRepo{db.DB}
}

func paginate(page int) (int, int) {
	if page < DefaultPage {
		page = DefaultPage
	}
	return (page - 1) * DefaultPageSize, DefaultPageSize
}

func (r *incidentReportRepo) SaveIncidentReport(report *models.IncidentReport) (*models.IncidentReport, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if err := r.DB.Create(report).Error; err != nil {
		return nil, errors.Wrap(err, "save incident report")
	}
	return report, nil
}

func (r *incidentReportRepo) UpdateReport(report *models.IncidentReport) error {
	if err := r.DB.Save(report).Error; err != nil {
		return errors.Wrap(err, "update incident report")
	}
	return nil
}

func (r *incidentReportRepo) GetReportByID(reportID uuid.UUID) (*models.IncidentReport, error) {
	var report models.IncidentReport
	if err := r.DB.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *incidentReportRepo) GetAllReports(page int) ([]models.IncidentReport, error) {
	offset, limit := paginate(page)
	var reports []models.IncidentReport
	err := r.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "list incident reports")
	}
	return reports, nil
}

func (r *incidentReportRepo) GetReportsByFacility(facilityID string, page int) ([]models.IncidentReport, error) {
	offset, limit := paginate(page)
	var reports []models.IncidentReport
	err := r.DB.Where("facility_id = ?", facilityID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "list reports by facility")
	}
	return reports, nil
}

func (r *incidentReportRepo) GetReportsByParticipant(participantID string, page int) ([]models.IncidentReport, error) {
	offset, limit := paginate(page)
	var reports []models.IncidentReport
	err := r.DB.Where("participant_id = ?", participantID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "list reports by participant")
	}
	return reports, nil
}

func (r *incidentReportRepo) GetReportsBySeverity(severity string, page int) ([]models.IncidentReport, error) {
	offset, limit := paginate(page)
	var reports []models.IncidentReport
	err := r.DB.Where("severity = ?", severity).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "list reports by severity")
	}
	return reports, nil
}

func (r *incidentReportRepo) GetReportsByUser(userID uint, page int) ([]models.IncidentReport, error) {
	offset, limit := paginate(page)
	var reports []models.IncidentReport
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "list reports by user")
	}
	return reports, nil
}

func (r *incidentReportRepo) UpdateReportStatus(reportID uuid.UUID, status string) error {
	return r.DB.Model(&models.IncidentReport{}).Where("id = ?", reportID).
		Update("report_status", status).Error
}

func (r *incidentReportRepo) DeleteByID(reportID uuid.UUID) error {
	return r.DB.Delete(&models.IncidentReport{}, "id = ?", reportID).Error
}

func (r *incidentReportRepo) GetReportCounts(facilityID string) (*models.IncidentReportCounts, error) {
	var counts models.IncidentReportCounts
	base := r.DB.Model(&models.IncidentReport{})
	if facilityID != "" {
		base = base.Where("facility_id = ?", facilityID)
	}

	if err := base.Session(&gorm.Session{}).Count(&counts.Total).Error; err != nil {
		return nil, errors.Wrap(err, "count reports")
	}
	startOfDay := time.Now().Truncate(24 * time.Hour)
	if err := base.Session(&gorm.Session{}).Where("created_at >= ?", startOfDay).Count(&counts.Today).Error; err != nil {
		return nil, errors.Wrap(err, "count today reports")
	}
	if err := base.Session(&gorm.Session{}).Where("severity IN ?", []string{models.SeverityHigh, models.SeverityCritical}).Count(&counts.High).Error; err != nil {
		return nil, errors.Wrap(err, "count high severity reports")
	}
	if err := base.Session(&gorm.Session{}).Where("category = ?", "medication").Count(&counts.Medication).Error; err != nil {
		return nil, errors.Wrap(err, "count medication reports")
	}
	return &counts, nil
}

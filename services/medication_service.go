package services

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/echoflow-solutions/carescribe-api/db"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"gorm.io/gorm"
)

type MedicationService interface {
	CreateMedication(medication *models.Medication) (*models.Medication, error)
	GetMedicationsByParticipant(participantID uint) ([]models.Medication, error)
	LogAdministration(medicationID, userID uint, req *models.MedicationLogRequest) (*models.MedicationLog, error)
	GetAdministrationLog(medicationID uint, since time.Time) ([]models.MedicationLog, error)
	GetDueMedications(now time.Time) ([]models.Medication, error)
}

type medicationService struct {
	medicationRepo db.MedicationRepository
}

func NewMedicationService(medicationRepo db.MedicationRepository) MedicationService {
	return &medicationService{medicationRepo: medicationRepo}
}

func (s *medicationService) CreateMedication(medication *models.Medication) (*models.Medication, error) {
	created, err := s.medicationRepo.CreateMedication(medication)
	if err != nil {
		log.Printf("CreateMedication error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return created, nil
}

func (s *medicationService) GetMedicationsByParticipant(participantID uint) ([]models.Medication, error) {
	return s.medicationRepo.GetMedicationsByParticipant(participantID)
}

// LogAdministration records one given/refused/missed event. A refused or
// missed dose requires a note explaining the outcome.
func (s *medicationService) LogAdministration(medicationID, userID uint, req *models.MedicationLogRequest) (*models.MedicationLog, error) {
	if _, err := s.medicationRepo.FindMedicationByID(medicationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		log.Printf("LogAdministration error finding medication %d: %v", medicationID, err)
		return nil, apiError.ErrInternalServerError
	}
	if req.Status != models.MedicationGiven && req.Notes == "" {
		return nil, apiError.New("a note is required when a dose is refused or missed", http.StatusBadRequest)
	}

	entry := &models.MedicationLog{
		MedicationID: medicationID,
		UserID:       userID,
		Status:       req.Status,
		Notes:        req.Notes,
		GivenAt:      time.Now(),
	}
	if err := s.medicationRepo.LogAdministration(entry); err != nil {
		log.Printf("LogAdministration error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return entry, nil
}

func (s *medicationService) GetAdministrationLog(medicationID uint, since time.Time) ([]models.MedicationLog, error) {
	return s.medicationRepo.GetAdministrationLog(medicationID, since)
}

func (s *medicationService) GetDueMedications(now time.Time) ([]models.Medication, error) {
	return s.medicationRepo.GetDueMedications(now)
}

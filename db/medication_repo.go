package db

import (
	"time"

	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type MedicationRepository interface {
	CreateMedication(medication *models.Medication) (*models.Medication, error)
	FindMedicationByID(id uint) (*models.Medication, error)
	GetMedicationsByParticipant(participantID uint) ([]models.Medication, error)
	UpdateMedication(medication *models.Medication) error
	LogAdministration(entry *models.MedicationLog) error
	GetAdministrationLog(medicationID uint, since time.Time) ([]models.MedicationLog, error)
	GetDueMedications(now time.Time) ([]models.Medication, error)
}

type medicationRepo struct {
	DB *gorm.DB
}

func NewMedicationRepo(db *GormDB) MedicationRepository {
	return &medicationRepo{db.DB}
}

func (r *medicationRepo) CreateMedication(medication *models.Medication) (*models.Medication, error) {
	if err := r.DB.Create(medication).Error; err != nil {
		return nil, errors.Wrap(err, "create medication")
	}
	return medication, nil
}

func (r *medicationRepo) FindMedicationByID(id uint) (*models.Medication, error) {
	var medication models.Medication
	if err := r.DB.First(&medication, id).Error; err != nil {
		return nil, err
	}
	return &medication, nil
}

func (r *medicationRepo) GetMedicationsByParticipant(participantID uint) ([]models.Medication, error) {
	var medications []models.Medication
	err := r.DB.Where("participant_id = ? AND is_active = ?", participantID, true).
		Order("schedule_time").Find(&medications).Error
	if err != nil {
		return nil, errors.Wrap(err, "list medications")
	}
	return medications, nil
}

func (r *medicationRepo) UpdateMedication(medication *models.Medication) error {
	return r.DB.Save(medication).Error
}

func (r *medicationRepo) LogAdministration(entry *models.MedicationLog) error {
	return r.DB.Create(entry).Error
}

func (r *medicationRepo) GetAdministrationLog(medicationID uint, since time.Time) ([]models.MedicationLog, error) {
	var entries []models.MedicationLog
	err := r.DB.Where("medication_id = ? AND given_at >= ?", medicationID, since).
		Order("given_at DESC").Find(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "list administration log")
	}
	return entries, nil
}

// GetDueMedications returns active scheduled medications whose schedule time
// falls in the current hour. PRN medications are never "due".
func (r *medicationRepo) GetDueMedications(now time.Time) ([]models.Medication, error) {
	hour := now.Format("15")
	var medications []models.Medication
	err := r.DB.Where("is_active = ? AND is_prn = ? AND schedule_time LIKE ?", true, false, hour+":%").
		Order("schedule_time").Find(&medications).Error
	if err != nil {
		return nil, errors.Wrap(err, "list due medications")
	}
	return medications, nil
}

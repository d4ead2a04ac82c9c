package db

import (
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ParticipantRepository interface {
	CreateParticipant(participant *models.Participant) (*models.Participant, error)
	FindParticipantByID(id uint) (*models.Participant, error)
	GetParticipantsByFacility(facilityID string) ([]models.Participant, error)
	GetAllParticipants() ([]models.Participant, error)
	UpdateParticipant(participant *models.Participant) error
	DeactivateParticipant(id uint) error
}

type participantRepo struct {
	DB *gorm.DB
}

func NewParticipantRepo(db *GormDB) ParticipantRepository {
	return &participantRepo{db.DB}
}

func (r *participantRepo) CreateParticipant(participant *models.Participant) (*models.Participant, error) {
	if err := r.DB.Create(participant).Error; err != nil {
		return nil, errors.Wrap(err, "create participant")
	}
	return participant, nil
}

func (r *participantRepo) FindParticipantByID(id uint) (*models.Participant, error) {
	var participant models.Participant
	if err := r.DB.First(&participant, id).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepo) GetParticipantsByFacility(facilityID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.DB.Where("facility_id = ? AND is_active = ?", facilityID, true).
		Order("last_name, first_name").Find(&participants).Error
	if err != nil {
		return nil, errors.Wrap(err, "list participants by facility")
	}
	return participants, nil
}

func (r *participantRepo) GetAllParticipants() ([]models.Participant, error) {
	var participants []models.Participant
	if err := r.DB.Where("is_active = ?", true).Order("last_name, first_name").Find(&participants).Error; err != nil {
		return nil, errors.Wrap(err, "list participants")
	}
	return participants, nil
}

func (r *participantRepo) UpdateParticipant(participant *models.Participant) error {
	return r.DB.Save(participant).Error
}

func (r *participantRepo) DeactivateParticipant(id uint) error {
	return r.DB.Model(&models.Participant{}).Where("id = ?", id).Update("is_active", false).Error
}

package services

import (
	"errors"
	"log"
	"net/http"

	"github.com/echoflow-solutions/carescribe-api/db"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/leebenson/conform"
	"gorm.io/gorm"
)

type ParticipantService interface {
	CreateParticipant(participant *models.Participant) (*models.Participant, error)
	GetParticipant(id uint) (*models.Participant, error)
	ListParticipants(facilityID string) ([]models.Participant, error)
	UpdateParticipant(participant *models.Participant) error
	DeactivateParticipant(id uint) error
}

type participantService struct {
	participantRepo db.ParticipantRepository
}

func NewParticipantService(participantRepo db.ParticipantRepository) ParticipantService {
	return &participantService{participantRepo: participantRepo}
}

func (s *participantService) CreateParticipant(participant *models.Participant) (*models.Participant, error) {
	if err := conform.Strings(participant); err != nil {
		log.Printf("CreateParticipant error normalizing fields: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	created, err := s.participantRepo.CreateParticipant(participant)
	if err != nil {
		log.Printf("CreateParticipant error: %v", err)
		return nil, apiError.GetUniqueContraintError(err)
	}
	return created, nil
}

func (s *participantService) GetParticipant(id uint) (*models.Participant, error) {
	participant, err := s.participantRepo.FindParticipantByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		log.Printf("GetParticipant error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return participant, nil
}

func (s *participantService) ListParticipants(facilityID string) ([]models.Participant, error) {
	if facilityID != "" {
		return s.participantRepo.GetParticipantsByFacility(facilityID)
	}
	return s.participantRepo.GetAllParticipants()
}

func (s *participantService) UpdateParticipant(participant *models.Participant) error {
	if participant.ID == 0 {
		return apiError.New("participant id is required", http.StatusBadRequest)
	}
	if err := s.participantRepo.UpdateParticipant(participant); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError.ErrNotFound
		}
		log.Printf("UpdateParticipant error: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (s *participantService) DeactivateParticipant(id uint) error {
	if err := s.participantRepo.DeactivateParticipant(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError.ErrNotFound
		}
		log.Printf("DeactivateParticipant error: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

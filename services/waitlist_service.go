package services

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/echoflow-solutions/carescribe-api/db"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/leebenson/conform"
	"gorm.io/datatypes"
)

type WaitlistService interface {
	Join(entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	SubmitSurvey(email, surveyID string, answers map[string]interface{}) error
	Count() (int64, error)
}

type waitlistService struct {
	waitlistRepo db.WaitlistRepository
	mail         Mailer
}

func NewWaitlistService(waitlistRepo db.WaitlistRepository, mail Mailer) WaitlistService {
	return &waitlistService{
		waitlistRepo: waitlistRepo,
		mail:         mail,
	}
}

func (s *waitlistService) Join(entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if err := conform.Strings(entry); err != nil {
		log.Printf("waitlist join error normalizing fields: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	exists, err := s.waitlistRepo.IsEmailOnWaitlist(entry.Email)
	if err != nil {
		log.Printf("waitlist lookup error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	if exists {
		return nil, apiError.New("email already on the waitlist", http.StatusConflict)
	}

	created, err := s.waitlistRepo.AddEntry(entry)
	if err != nil {
		log.Printf("waitlist join error: %v", err)
		return nil, apiError.GetUniqueContraintError(err)
	}

	if s.mail != nil {
		if err := s.mail.SendWelcomeMessage(created.Email, created.Name); err != nil {
			log.Printf("could not send waitlist confirmation to %s: %v", created.Email, err)
		}
	}
	return created, nil
}

func (s *waitlistService) SubmitSurvey(email, surveyID string, answers map[string]interface{}) error {
	if len(answers) == 0 {
		return apiError.New("survey answers are required", http.StatusBadRequest)
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return apiError.ErrBadRequest
	}
	response := &models.SurveyResponse{
		Email:    email,
		SurveyID: surveyID,
		Answers:  datatypes.JSON(raw),
	}
	if err := s.waitlistRepo.SaveSurveyResponse(response); err != nil {
		log.Printf("survey save error: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (s *waitlistService) Count() (int64, error) {
	return s.waitlistRepo.CountEntries()
}

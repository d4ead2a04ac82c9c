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

type ShiftService interface {
	ClockIn(userID uint, req *models.ClockInRequest) (*models.Shift, error)
	ClockOut(userID uint, notes string) (*models.Shift, error)
	CurrentShift(userID uint) (*models.Shift, error)
	ShiftHistory(userID uint, limit int) ([]models.Shift, error)
}

type shiftService struct {
	shiftRepo db.ShiftRepository
	authRepo  db.AuthRepository
}

func NewShiftService(shiftRepo db.ShiftRepository, authRepo db.AuthRepository) ShiftService {
	return &shiftService{
		shiftRepo: shiftRepo,
		authRepo:  authRepo,
	}
}

func (s *shiftService) ClockIn(userID uint, req *models.ClockInRequest) (*models.Shift, error) {
	if existing, err := s.shiftRepo.FindActiveShift(userID); err == nil && existing != nil {
		return nil, apiError.New("already clocked in", http.StatusConflict)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("ClockIn error checking active shift: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	shift := &models.Shift{
		UserID:     userID,
		FacilityID: req.FacilityID,
		ClockIn:    time.Now(),
		Notes:      req.Notes,
	}
	created, err := s.shiftRepo.CreateShift(shift)
	if err != nil {
		log.Printf("ClockIn error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if user, err := s.authRepo.FindUserByID(userID); err == nil {
		user.OnShift = true
		if err := s.authRepo.UpdateUser(user); err != nil {
			log.Printf("ClockIn could not flag user %d on shift: %v", userID, err)
		}
	}
	return created, nil
}

func (s *shiftService) ClockOut(userID uint, notes string) (*models.Shift, error) {
	shift, err := s.shiftRepo.FindActiveShift(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("no active shift", http.StatusNotFound)
		}
		log.Printf("ClockOut error: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	now := time.Now()
	shift.ClockOut = &now
	if notes != "" {
		shift.Notes = notes
	}
	if err := s.shiftRepo.CloseShift(shift); err != nil {
		log.Printf("ClockOut error closing shift: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if user, err := s.authRepo.FindUserByID(userID); err == nil {
		user.OnShift = false
		if err := s.authRepo.UpdateUser(user); err != nil {
			log.Printf("ClockOut could not clear on-shift flag for user %d: %v", userID, err)
		}
	}
	return shift, nil
}

func (s *shiftService) CurrentShift(userID uint) (*models.Shift, error) {
	shift, err := s.shiftRepo.FindActiveShift(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		return nil, apiError.ErrInternalServerError
	}
	return shift, nil
}

func (s *shiftService) ShiftHistory(userID uint, limit int) ([]models.Shift, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.shiftRepo.GetShiftsByUser(userID, limit)
}

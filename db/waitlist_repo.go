package db

import (
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type WaitlistRepository interface {
	AddEntry(entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	IsEmailOnWaitlist(email string) (bool, error)
	SaveSurveyResponse(response *models.SurveyResponse) error
	CountEntries() (int64, error)
}

type waitlistRepo struct {
	DB *gorm.DB
}

func NewWaitlistRepo(db *GormDB) WaitlistRepository {
	return &waitlistRepo{db.DB}
}

func (r *waitlistRepo) AddEntry(entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if err := r.DB.Create(entry).Error; err != nil {
		return nil, errors.Wrap(err, "add waitlist entry")
	}
	return entry, nil
}

func (r *waitlistRepo) IsEmailOnWaitlist(email string) (bool, error) {
	var count int64
	if err := r.DB.Model(&models.WaitlistEntry{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "query waitlist")
	}
	return count > 0, nil
}

func (r *waitlistRepo) SaveSurveyResponse(response *models.SurveyResponse) error {
	return r.DB.Create(response).Error
}

func (r *waitlistRepo) CountEntries() (int64, error) {
	var count int64
	if err := r.DB.Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count waitlist")
	}
	return count, nil
}

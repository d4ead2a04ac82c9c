package db

import (
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	CreateShift(shift *models.Shift) (*models.Shift, error)
	FindActiveShift(userID uint) (*models.Shift, error)
	CloseShift(shift *models.Shift) error
	GetShiftsByUser(userID uint, limit int) ([]models.Shift, error)
}

type shiftRepo struct {
	DB *gorm.DB
}

func NewShiftRepo(db *GormDB) ShiftRepository {
	return &shiftRepo{db.DB}
}

func (r *shiftRepo) CreateShift(shift *models.Shift) (*models.Shift, error) {
	if err := r.DB.Create(shift).Error; err != nil {
		return nil, errors.Wrap(err, "create shift")
	}
	return shift, nil
}

func (r *shiftRepo) FindActiveShift(userID uint) (*models.Shift, error) {
	var shift models.Shift
	err := r.DB.Where("user_id = ? AND clock_out IS NULL", userID).
		Order("clock_in DESC").First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) CloseShift(shift *models.Shift) error {
	return r.DB.Save(shift).Error
}

func (r *shiftRepo) GetShiftsByUser(userID uint, limit int) ([]models.Shift, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	var shifts []models.Shift
	err := r.DB.Where("user_id = ?", userID).Order("clock_in DESC").Limit(limit).Find(&shifts).Error
	if err != nil {
		return nil, errors.Wrap(err, "list shifts")
	}
	return shifts, nil
}

package db

import (
	"strings"

	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type DraftReportRepository interface {
	UpsertDraft(draft *models.DraftReport) (*models.DraftReport, error)
	FindActiveDraft(userID uint, sessionID string) (*models.DraftReport, error)
	MarkComplete(id uuid.UUID) error
	DeleteByID(id uuid.UUID) error
}

type draftReportRepo struct {
	DB *gorm.DB
}

func NewDraftReportRepo(db *GormDB) DraftReportRepository {
	return &draftReportRepo{db.DB}
}

// IsTableMissing reports whether err is the postgres "relation does not
// exist" condition. The draft flow treats a missing table the same as an
// unreachable backend.
func IsTableMissing(err error) bool {
	return err != nil && strings.Contains(err.Error(), "does not exist")
}

func (r *draftReportRepo) UpsertDraft(draft *models.DraftReport) (*models.DraftReport, error) {
	var existing models.DraftReport
	err := r.DB.Where("user_id = ? AND session_id = ? AND is_complete = ?", draft.UserID, draft.SessionID, false).
		First(&existing).Error
	switch {
	case err == nil:
		draft.ID = existing.ID
		draft.CreatedAt = existing.CreatedAt
		if err := r.DB.Save(draft).Error; err != nil {
			return nil, errors.Wrap(err, "update draft")
		}
		return draft, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if draft.ID == uuid.Nil {
			draft.ID = uuid.New()
		}
		if err := r.DB.Create(draft).Error; err != nil {
			return nil, errors.Wrap(err, "create draft")
		}
		return draft, nil
	default:
		return nil, err
	}
}

func (r *draftReportRepo) FindActiveDraft(userID uint, sessionID string) (*models.DraftReport, error) {
	var draft models.DraftReport
	err := r.DB.Where("user_id = ? AND session_id = ? AND is_complete = ?", userID, sessionID, false).
		Order("updated_at DESC").
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftReportRepo) MarkComplete(id uuid.UUID) error {
	return r.DB.Model(&models.DraftReport{}).Where("id = ?", id).Update("is_complete", true).Error
}

func (r *draftReportRepo) DeleteByID(id uuid.UUID) error {
	result := r.DB.Delete(&models.DraftReport{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "delete draft")
	}
	// Deleting an already-deleted draft is a no-op, not an error.
	return nil
}

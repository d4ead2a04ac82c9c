package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConversationTurn is one question/answer pair in a guided incident
// conversation. Turns are append-only; editing an earlier answer truncates
// every turn after it.
type ConversationTurn struct {
	Question  string    `json:"question"`
	Subtext   string    `json:"subtext,omitempty"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DraftReport is an in-progress, not-yet-finalized incident report. At most
// one non-complete draft per (user, session) is treated as canonical.
type DraftReport struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID          uint           `json:"user_id" gorm:"index:idx_draft_user_session"`
	FacilityID      string         `json:"facility_id,omitempty"`
	ParticipantID   string         `json:"participant_id,omitempty"`
	Conversation    datatypes.JSON `json:"conversation"`
	CurrentQuestion string         `json:"current_question,omitempty"`
	CurrentSubtext  string         `json:"current_subtext,omitempty"`
	CurrentAnswer   string         `json:"current_answer,omitempty"`
	Progress        int            `json:"progress"`
	ReportType      string         `json:"report_type,omitempty"`
	SessionID       string         `json:"session_id" gorm:"index:idx_draft_user_session"`
	DeviceInfo      datatypes.JSON `json:"device_info,omitempty"`
	IsComplete      bool           `json:"is_complete" gorm:"default:false"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Turns decodes the stored conversation column. A missing or empty column
// decodes to an empty slice.
func (d *DraftReport) Turns() ([]ConversationTurn, error) {
	if len(d.Conversation) == 0 {
		return []ConversationTurn{}, nil
	}
	var turns []ConversationTurn
	if err := json.Unmarshal(d.Conversation, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// SetTurns encodes turns into the conversation column.
func (d *DraftReport) SetTurns(turns []ConversationTurn) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	d.Conversation = datatypes.JSON(raw)
	return nil
}

// SaveDraftRequest is the payload accepted by the draft upsert endpoint.
type SaveDraftRequest struct {
	ID              string             `json:"id,omitempty"`
	UserID          uint               `json:"user_id"`
	FacilityID      string             `json:"facility_id,omitempty"`
	ParticipantID   string             `json:"participant_id,omitempty"`
	Conversation    []ConversationTurn `json:"conversation"`
	CurrentQuestion string             `json:"current_question,omitempty"`
	CurrentSubtext  string             `json:"current_subtext,omitempty"`
	CurrentAnswer   string             `json:"current_answer,omitempty"`
	Progress        int                `json:"progress,omitempty"`
	ReportType      string             `json:"report_type,omitempty"`
	SessionID       string             `json:"session_id,omitempty"`
	DeviceInfo      map[string]string  `json:"device_info,omitempty"`
}

// SaveDraftResponse mirrors what the autosave client expects: a failure to
// reach the database is reported as success with UseLocalStorage set, since
// the snapshot store already holds the data.
type SaveDraftResponse struct {
	Success         bool         `json:"success"`
	Draft           *DraftReport `json:"draft,omitempty"`
	UseLocalStorage bool         `json:"useLocalStorage,omitempty"`
	Skipped         bool         `json:"skipped,omitempty"`
	Message         string       `json:"message"`
	Error           string       `json:"error,omitempty"`
}

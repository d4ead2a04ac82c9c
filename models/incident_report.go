package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentReport is a finalized incident record, created either from the
// quick-report hand-off or by direct form submission.
type IncidentReport struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	UserID           uint      `json:"user_id" gorm:"index"`
	UserFullname     string    `json:"fullname"`
	FacilityID       string    `json:"facility_id" gorm:"index"`
	ParticipantID    string    `json:"participant_id" gorm:"index"`
	ParticipantName  string    `json:"participant_name"`
	ReportType       string    `json:"report_type"`
	Category         string    `json:"category"`
	Severity         string    `json:"severity"`
	Location         string    `json:"location"`
	Description      string    `json:"description" gorm:"type:text"`
	Antecedent       string    `json:"antecedent" gorm:"type:text"`
	ActionTaken      string    `json:"action_taken" gorm:"type:text"`
	InjuriesReported bool      `json:"injuries_reported"`
	WitnessNames     string    `json:"witness_names"`
	TimeOfIncident   time.Time `json:"time_of_incident"`
	ReportStatus     string    `json:"report_status"`
	ComplianceScore  int       `json:"compliance_score"`
	FeedURLs         string    `json:"feed_urls"`
	AudioURL         string    `json:"audio_url"`
	ThumbnailURLs    string    `json:"thumbnail_urls"`
	FullSizeURLs     string    `json:"full_size_urls"`
	SourceSessionID  string    `json:"source_session_id"`
}

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

const (
	ReportStatusSubmitted = "submitted"
	ReportStatusReviewed  = "reviewed"
	ReportStatusClosed    = "closed"
)

// FinalReport is the structured record extracted from a finished
// conversation. It is the hand-off payload between the quick-report wizard
// and the review/submission screen.
type FinalReport struct {
	ParticipantName  string `json:"participant_name"`
	Location         string `json:"location"`
	Summary          string `json:"summary"`
	Antecedent       string `json:"antecedent"`
	Description      string `json:"description"`
	ActionTaken      string `json:"action_taken"`
	InjuriesReported bool   `json:"injuries_reported"`
	Category         string `json:"category"`
	Severity         string `json:"severity"`
	RawConversation  string `json:"raw_conversation,omitempty"`
	Fallback         bool   `json:"fallback,omitempty"`
}

type IncidentReportCounts struct {
	Total      int64 `json:"total"`
	Today      int64 `json:"today"`
	High       int64 `json:"high"`
	Medication int64 `json:"medication"`
}

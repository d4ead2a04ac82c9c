package models

import "time"

// Medication is a scheduled medication for a participant.
type Medication struct {
	Model
	ParticipantID uint   `json:"participant_id" gorm:"index"`
	Name          string `json:"name" binding:"required" conform:"trim"`
	Dosage        string `json:"dosage" binding:"required"`
	Route         string `json:"route"`
	ScheduleTime  string `json:"schedule_time" binding:"required"`
	Instructions  string `json:"instructions" gorm:"type:text"`
	IsPRN         bool   `json:"is_prn" gorm:"default:false"`
	IsActive      bool   `json:"is_active" gorm:"default:true"`
}

// MedicationLog records one administration attempt.
type MedicationLog struct {
	Model
	MedicationID uint      `json:"medication_id" gorm:"index"`
	UserID       uint      `json:"user_id"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	GivenAt      time.Time `json:"given_at"`
}

const (
	MedicationGiven   = "given"
	MedicationRefused = "refused"
	MedicationMissed  = "missed"
)

type MedicationLogRequest struct {
	Status string `json:"status" binding:"required,oneof=given refused missed"`
	Notes  string `json:"notes"`
}

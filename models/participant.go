package models

import "gorm.io/datatypes"

// Participant is a person supported by the provider.
type Participant struct {
	Model
	FirstName        string         `json:"first_name" binding:"required,min=1" conform:"trim"`
	LastName         string         `json:"last_name" binding:"required,min=1" conform:"trim"`
	NDISNumber       string         `json:"ndis_number" gorm:"uniqueIndex"`
	DateOfBirth      string         `json:"date_of_birth"`
	FacilityID       string         `json:"facility_id" gorm:"index"`
	RoomNumber       string         `json:"room_number"`
	SupportLevel     string         `json:"support_level"`
	SupportPlan      datatypes.JSON `json:"support_plan,omitempty"`
	EmergencyContact string         `json:"emergency_contact"`
	EmergencyPhone   string         `json:"emergency_phone"`
	IsActive         bool           `json:"is_active" gorm:"default:true"`
}

type ParticipantResponse struct {
	ID           uint   `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	NDISNumber   string `json:"ndis_number"`
	FacilityID   string `json:"facility_id"`
	RoomNumber   string `json:"room_number"`
	SupportLevel string `json:"support_level"`
}

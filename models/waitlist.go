package models

import "gorm.io/datatypes"

// WaitlistEntry captures a marketing-page signup.
type WaitlistEntry struct {
	Model
	Email        string `json:"email" gorm:"uniqueIndex;not null" binding:"required,email" conform:"email"`
	Name         string `json:"name" conform:"trim"`
	Organization string `json:"organization" conform:"trim"`
	Source       string `json:"source"`
}

// SurveyResponse stores one submitted survey as raw answers.
type SurveyResponse struct {
	Model
	Email    string         `json:"email" conform:"email"`
	SurveyID string         `json:"survey_id"`
	Answers  datatypes.JSON `json:"answers"`
}

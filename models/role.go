package models

import "github.com/google/uuid"

// Role is the access level assigned to a staff user.
type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name string    `json:"name"`
}

const (
	RoleStaff = "Staff"
	RoleAdmin = "Admin"
)

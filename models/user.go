package models

import (
	"errors"

	goval "github.com/go-passwd/validator"
	"github.com/google/uuid"
	"github.com/leebenson/conform"
	"golang.org/x/crypto/bcrypt"
)

// User represents a staff member of a support provider.
type User struct {
	Model
	Fullname       string    `json:"fullname" binding:"required,min=2" conform:"trim"`
	Email          string    `json:"email" gorm:"unique;not null" binding:"required,email" conform:"email"`
	Telephone      string    `json:"telephone" gorm:"default:null"`
	Password       string    `json:"password,omitempty" gorm:"-" validate:"omitempty,min=6"`
	HashedPassword string    `json:"-"`
	FacilityID     string    `json:"facility_id"`
	Position       string    `json:"position" conform:"trim"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	OnShift        bool      `json:"on_shift" gorm:"default:false"`
	RoleID         uuid.UUID `gorm:"type:uuid" json:"role_id"`
	Role           Role      `gorm:"foreignKey:RoleID" json:"role"`
}

type UserResponse struct {
	ID         uint   `json:"id"`
	Fullname   string `json:"fullname"`
	Email      string `json:"email"`
	Telephone  string `json:"telephone"`
	FacilityID string `json:"facility_id"`
	Position   string `json:"position"`
	RoleName   string `json:"role_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	UserResponse
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	RoleID       string `json:"role_id"`
}

// Blacklist holds access tokens invalidated by logout.
type Blacklist struct {
	Model
	Email string `json:"email"`
	Token string `json:"token"`
}

func ValidatePassword(password string) error {
	passwordValidator := goval.New(goval.MinLength(6, errors.New("password cant be less than 6 characters")),
		goval.MaxLength(64, errors.New("password cant be more than 64 characters")))
	return passwordValidator.Validate(password)
}

// NormalizeFields applies the conform tags (trim, email lowering) in place.
func (u *User) NormalizeFields() error {
	return conform.Strings(u)
}

// VerifyPassword verifies the supplied password against the stored hash.
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

package services

import (
	"errors"
	"log"
	"net/http"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/db"
	apiError "github.com/echoflow-solutions/carescribe-api/errors"
	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/echoflow-solutions/carescribe-api/services/jwt"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService interface
type AuthService interface {
	SignupUser(request *models.User) (*models.User, error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	GetUserProfile(userID uint) (*models.User, error)
	GetAllUsers() ([]models.User, error)
	DeactivateUser(userID uint) error
}

type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
	mail     Mailer
}

// Mailer sends the welcome email after signup. Kept as an interface so tests
// never hit the mail provider.
type Mailer interface {
	SendWelcomeMessage(recipient, fullname string) error
}

func NewAuthService(authRepo db.AuthRepository, mail Mailer, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
		mail:     mail,
	}
}

func (s *authService) SignupUser(user *models.User) (*models.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.NormalizeFields(); err != nil {
		log.Printf("SignupUser error normalizing fields: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	if err := validator.New().Struct(user); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}
	if err := models.ValidatePassword(user.Password); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}

	if err := s.authRepo.IsEmailExist(user.Email); err != nil {
		log.Printf("SignupUser error: %v", err)
		return nil, apiError.GetUniqueContraintError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("SignupUser error hashing password: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	user.HashedPassword = string(hashedPassword)
	user.Password = ""

	role, err := s.authRepo.FindRoleByName(models.RoleStaff)
	if err != nil {
		log.Printf("SignupUser error fetching default role: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	user.RoleID = role.ID

	created, err := s.authRepo.CreateUser(user)
	if err != nil {
		log.Printf("SignupUser error creating user: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if s.mail != nil {
		if err := s.mail.SendWelcomeMessage(created.Email, created.Fullname); err != nil {
			log.Printf("SignupUser could not send welcome email to %s: %v", created.Email, err)
		}
	}

	return created, nil
}

// LoginUser logs in a user and returns the login response
func (a *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	foundUser, err := a.authRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrInvalidPassword
		}
		log.Printf("Error finding user by email: %v", err)
		return nil, apiError.New("unable to find user", http.StatusInternalServerError)
	}

	if !foundUser.IsActive {
		return nil, apiError.New(apiError.InActiveUserError.Error(), http.StatusForbidden)
	}

	if err := foundUser.VerifyPassword(loginRequest.Password); err != nil {
		log.Printf("Invalid password for user %s", foundUser.Email)
		return nil, apiError.ErrInvalidPassword
	}

	role, err := a.authRepo.GetUserRoleByUserID(foundUser.ID)
	if err != nil {
		log.Printf("Error fetching role for user %s: %v", foundUser.Email, err)
		return nil, apiError.New("unable to fetch role", http.StatusInternalServerError)
	}

	isAdmin := role.Name == models.RoleAdmin
	accessToken, refreshToken, err := jwt.GenerateTokenPair(foundUser.Email, a.Config.JWTSecret, isAdmin, foundUser.ID, role.Name)
	if err != nil {
		log.Printf("Error generating token pair for user %s: %v", foundUser.Email, err)
		return nil, apiError.ErrInternalServerError
	}

	return &models.LoginResponse{
		UserResponse: models.UserResponse{
			ID:         foundUser.ID,
			Fullname:   foundUser.Fullname,
			Email:      foundUser.Email,
			Telephone:  foundUser.Telephone,
			FacilityID: foundUser.FacilityID,
			Position:   foundUser.Position,
			RoleName:   role.Name,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		RoleID:       role.ID.String(),
	}, nil
}

func (a *authService) GetUserProfile(userID uint) (*models.User, error) {
	user, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrNotFound
		}
		log.Printf("Error fetching user %d: %v", userID, err)
		return nil, apiError.ErrInternalServerError
	}
	return user, nil
}

func (a *authService) GetAllUsers() ([]models.User, error) {
	return a.authRepo.GetAllUsers()
}

func (a *authService) DeactivateUser(userID uint) error {
	user, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError.ErrNotFound
		}
		return apiError.ErrInternalServerError
	}
	user.IsActive = false
	return a.authRepo.UpdateUser(user)
}

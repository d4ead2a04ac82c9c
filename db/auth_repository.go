package db

import (
	"fmt"

	"github.com/echoflow-solutions/carescribe-api/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type AuthRepository interface {
	CreateUser(user *models.User) (*models.User, error)
	IsEmailExist(email string) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)
	UpdateUser(user *models.User) error
	AddToBlackList(blacklist *models.Blacklist) error
	IsTokenInBlacklist(token string) bool
	FindRoleByName(name string) (*models.Role, error)
	GetUserRoleByUserID(userID uint) (*models.Role, error)
	GetAllUsers() ([]models.User, error)
}

type authRepo struct {
	DB *gorm.DB
}

func NewAuthRepo(db *GormDB) AuthRepository {
	return &authRepo{db.DB}
}

func (a *authRepo) CreateUser(user *models.User) (*models.User, error) {
	if err := a.DB.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return user, nil
}

func (a *authRepo) IsEmailExist(email string) error {
	var count int64
	if err := a.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return errors.Wrap(err, "unable to query user by email")
	}
	if count > 0 {
		return fmt.Errorf("email already in use")
	}
	return nil
}

func (a *authRepo) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := a.DB.Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := a.DB.Preload("Role").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) UpdateUser(user *models.User) error {
	return a.DB.Save(user).Error
}

func (a *authRepo) AddToBlackList(blacklist *models.Blacklist) error {
	return a.DB.Create(blacklist).Error
}

func (a *authRepo) IsTokenInBlacklist(token string) bool {
	var count int64
	if err := a.DB.Model(&models.Blacklist{}).Where("token = ?", token).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func (a *authRepo) FindRoleByName(name string) (*models.Role, error) {
	var role models.Role
	if err := a.DB.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, errors.Wrap(err, "find role by name")
	}
	return &role, nil
}

func (a *authRepo) GetUserRoleByUserID(userID uint) (*models.Role, error) {
	user, err := a.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	return &user.Role, nil
}

func (a *authRepo) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := a.DB.Preload("Role").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

package services

import (
	"errors"
	"fmt"

	"quill-notes/quill/database"
	"quill-notes/quill/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserServiceInterface interface {
	Register(db *database.Database, email, password, displayName string) (models.User, error)
	GetUserById(db *database.Database, id string) (models.User, error)
	UpdateUser(db *database.Database, id string, updatedData map[string]interface{}, requesterID uuid.UUID) (models.User, error)
	DeleteUser(db *database.Database, id string) error
	GetUsers(db *database.Database, params map[string]interface{}) ([]models.User, error)
	SetRole(db *database.Database, id string, role models.UserRole, actorID uuid.UUID) (models.User, error)
	SetActive(db *database.Database, id string, active bool) (models.User, error)
}

type UserService struct {
	authService AuthServiceInterface
}

func NewUserService(authService AuthServiceInterface) *UserService {
	return &UserService{authService: authService}
}

// Register creates an account. A reused email is a conflict, not an
// internal error.
func (s *UserService) Register(db *database.Database, email, password, displayName string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	var count int64
	if err := db.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, ErrEmailExists
	}

	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		Role:         models.RoleUser,
		Active:       true,
		PasswordHash: hash,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) GetUserById(db *database.Database, id string) (models.User, error) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// UpdateUser applies profile fields. Users may only edit their own
// profile; role and active are managed through the admin operations.
func (s *UserService) UpdateUser(db *database.Database, id string, updatedData map[string]interface{}, requesterID uuid.UUID) (models.User, error) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if user.ID != requesterID {
		return models.User{}, ErrForbidden
	}

	if displayName, ok := updatedData["display_name"].(string); ok {
		user.DisplayName = displayName
	}
	if avatarURL, ok := updatedData["avatar_url"].(string); ok {
		user.AvatarURL = avatarURL
	}
	if password, ok := updatedData["password"].(string); ok && password != "" {
		hash, err := s.authService.HashPassword(password)
		if err != nil {
			return models.User{}, err
		}
		user.PasswordHash = hash
	}

	if err := db.DB.Save(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(db *database.Database, id string) error {
	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return db.DB.Delete(&user).Error
}

func (s *UserService) GetUsers(db *database.Database, params map[string]interface{}) ([]models.User, error) {
	var users []models.User
	query := db.DB

	if email, ok := params["email"].(string); ok && email != "" {
		query = query.Where("email = ?", email)
	}
	if active, ok := params["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SetRole changes a user's system role. An admin acting on their own
// account is rejected so the last admin cannot lock themselves out.
func (s *UserService) SetRole(db *database.Database, id string, role models.UserRole, actorID uuid.UUID) (models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return models.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if user.ID == actorID {
		return models.User{}, fmt.Errorf("%w: cannot change own role", ErrForbidden)
	}

	user.Role = role
	if err := db.DB.Save(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// SetActive soft-disables or re-enables an account.
func (s *UserService) SetActive(db *database.Database, id string, active bool) (models.User, error) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	user.Active = active
	if err := db.DB.Save(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

var UserServiceInstance UserServiceInterface

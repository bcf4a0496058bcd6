package services

import (
	"errors"
	"strings"

	"github.com/Ifihan/briefen-me/internal/auth"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/repository"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for a wrong email/password pair. The
// message is identical for both cases so the endpoint doesn't leak which
// accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken is returned when an email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidEmail is returned for an unusable email address at signup.
var ErrInvalidEmail = errors.New("invalid email address")

// ErrWeakPassword is returned when the signup password is too short.
var ErrWeakPassword = errors.New("password must be at least 8 characters")

// UserService handles signup and login.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates and returns a new instance of UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Signup registers a new user with a bcrypt-hashed password.
func (s *UserService) Signup(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	if _, err := s.userRepo.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: hash}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns the user.
func (s *UserService) Login(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(id uint) (*models.User, error) {
	return s.userRepo.GetUserByID(id)
}

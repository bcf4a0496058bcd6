package repository

import (
	"fmt"

	"github.com/Ifihan/briefen-me/internal/models"
	"gorm.io/gorm"
)

// UserRepository est une interface qui définit les méthodes d'accès aux données
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
}

// GormUserRepository est l'implémentation de UserRepository utilisant GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository crée et retourne une nouvelle instance de GormUserRepository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// CreateUser insère un nouvel utilisateur dans la base de données.
func (r *GormUserRepository) CreateUser(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail récupère un utilisateur via son adresse email.
func (r *GormUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID récupère un utilisateur via son identifiant.
func (r *GormUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

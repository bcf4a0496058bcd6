package repository

import (
	"errors"
	"fmt"

	"github.com/Ifihan/briefen-me/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateUsername signals that the unique index on the bio page
// username rejected an insert or update.
var ErrDuplicateUsername = errors.New("duplicate username")

// BioRepository est une interface qui définit les méthodes d'accès aux données
type BioRepository interface {
	CreateBioPage(page *models.BioPage) error
	UpdateBioPage(page *models.BioPage) error
	GetBioPageByUserID(userID uint) (*models.BioPage, error)
	GetBioPageByUsername(username string) (*models.BioPage, error)
	CreateBioLink(link *models.BioLink) error
	UpdateBioLink(link *models.BioLink) error
	DeleteBioLink(link *models.BioLink) error
	GetBioLinkByID(id uint) (*models.BioLink, error)
	GetBioLinks(bioPageID uint) ([]models.BioLink, error)
	// ReorderBioLinks applies the given id->position assignment in one
	// transaction, scoped to a single bio page.
	ReorderBioLinks(bioPageID uint, positions map[uint]int) error
	IncrementBioLinkClicks(linkID uint) error
}

// GormBioRepository est l'implémentation de BioRepository utilisant GORM.
type GormBioRepository struct {
	db *gorm.DB
}

// NewBioRepository crée et retourne une nouvelle instance de GormBioRepository.
func NewBioRepository(db *gorm.DB) *GormBioRepository {
	return &GormBioRepository{db: db}
}

// CreateBioPage insère une nouvelle page bio.
func (r *GormBioRepository) CreateBioPage(page *models.BioPage) error {
	if err := r.db.Create(page).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create bio page: %w", err)
	}
	return nil
}

// UpdateBioPage persiste les modifications d'une page bio.
func (r *GormBioRepository) UpdateBioPage(page *models.BioPage) error {
	if err := r.db.Save(page).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to update bio page: %w", err)
	}
	return nil
}

// GetBioPageByUserID récupère la page bio d'un utilisateur.
func (r *GormBioRepository) GetBioPageByUserID(userID uint) (*models.BioPage, error) {
	var page models.BioPage
	if err := r.db.Where("user_id = ?", userID).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBioPageByUsername récupère une page bio via son nom public.
func (r *GormBioRepository) GetBioPageByUsername(username string) (*models.BioPage, error) {
	var page models.BioPage
	if err := r.db.Where("username = ?", username).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateBioLink insère un nouveau lien bio.
func (r *GormBioRepository) CreateBioLink(link *models.BioLink) error {
	if err := r.db.Create(link).Error; err != nil {
		return fmt.Errorf("failed to create bio link: %w", err)
	}
	return nil
}

// UpdateBioLink persiste les modifications d'un lien bio.
func (r *GormBioRepository) UpdateBioLink(link *models.BioLink) error {
	if err := r.db.Save(link).Error; err != nil {
		return fmt.Errorf("failed to update bio link: %w", err)
	}
	return nil
}

// DeleteBioLink supprime un lien bio.
func (r *GormBioRepository) DeleteBioLink(link *models.BioLink) error {
	if err := r.db.Delete(link).Error; err != nil {
		return fmt.Errorf("failed to delete bio link: %w", err)
	}
	return nil
}

// GetBioLinkByID récupère un lien bio via son identifiant.
func (r *GormBioRepository) GetBioLinkByID(id uint) (*models.BioLink, error) {
	var link models.BioLink
	if err := r.db.First(&link, id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// GetBioLinks récupère les liens d'une page bio, triés par position.
func (r *GormBioRepository) GetBioLinks(bioPageID uint) ([]models.BioLink, error) {
	var links []models.BioLink
	if err := r.db.Where("bio_page_id = ?", bioPageID).Order("position ASC, id ASC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bio links: %w", err)
	}
	return links, nil
}

// ReorderBioLinks applique un lot de positions en une transaction.
func (r *GormBioRepository) ReorderBioLinks(bioPageID uint, positions map[uint]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for id, position := range positions {
			result := tx.Model(&models.BioLink{}).
				Where("id = ? AND bio_page_id = ?", id, bioPageID).
				UpdateColumn("position", position)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder bio link %d: %w", id, result.Error)
			}
		}
		return nil
	})
}

// IncrementBioLinkClicks incrémente le compteur de clics d'un lien bio.
func (r *GormBioRepository) IncrementBioLinkClicks(linkID uint) error {
	err := r.db.Model(&models.BioLink{}).
		Where("id = ?", linkID).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment clicks for bio link %d: %w", linkID, err)
	}
	return nil
}

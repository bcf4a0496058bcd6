package repository

import (
	"fmt"

	"github.com/Ifihan/briefen-me/internal/models"
	"gorm.io/gorm"
)

// ClickRepository est une interface qui définit les méthodes d'accès aux données
type ClickRepository interface {
	// CreateClickAndIncrement persists the click and bumps the parent
	// link's counter in the same transaction, keeping the denormalized
	// count exactly consistent.
	CreateClickAndIncrement(click *models.Click) error
	CountClicksByLinkID(linkID uint) (int, error)
	// UpdateGeolocation fills country/city on an existing click. A click
	// deleted in the interim is a no-op, not an error.
	UpdateGeolocation(clickID uint, country, city string) error
}

// GormClickRepository est l'implémentation de l'interface ClickRepository utilisant GORM.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository crée et retourne une nouvelle instance de GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// CreateClickAndIncrement insère le clic et incrémente le compteur du lien.
func (r *GormClickRepository) CreateClickAndIncrement(click *models.Click) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(click).Error; err != nil {
			return err
		}
		return tx.Model(&models.Link{}).
			Where("id = ?", click.LinkID).
			UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record click for link %d: %w", click.LinkID, err)
	}
	return nil
}

// CountClicksByLinkID compte le nombre total de clics pour un ID de lien donné.
func (r *GormClickRepository) CountClicksByLinkID(linkID uint) (int, error) {
	var count int64
	if err := r.db.Model(&models.Click{}).Where("link_id = ?", linkID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks for link ID %d: %w", linkID, err)
	}
	return int(count), nil
}

// UpdateGeolocation renseigne uniquement les champs country et city.
func (r *GormClickRepository) UpdateGeolocation(clickID uint, country, city string) error {
	result := r.db.Model(&models.Click{}).Where("id = ?", clickID).Updates(map[string]any{
		"country": country,
		"city":    city,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update geolocation for click %d: %w", clickID, result.Error)
	}
	return nil
}

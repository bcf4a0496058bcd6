package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Ifihan/briefen-me/internal/models"
	"gorm.io/gorm"
)

// LinkRepository est une interface qui définit les méthodes d'accès aux données
type LinkRepository interface {
	CreateLink(link *models.Link) error
	GetLinkBySlug(slug string) (*models.Link, error)
	GetLinksByUserID(userID uint) ([]models.Link, error)
	GetAllLinks() ([]models.Link, error)
	UpdateLink(link *models.Link) error
	DeleteLink(link *models.Link) error
	SlugsTaken(slugs []string) (map[string]bool, error)
}

// ErrDuplicateSlug signals that the unique index on slug rejected an
// insert or update. The race between the availability check and the
// insert resolves here, not as a crash.
var ErrDuplicateSlug = errors.New("duplicate slug")

// GormLinkRepository est l'implémentation de LinkRepository utilisant GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository crée et retourne une nouvelle instance de GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// CreateLink insère un nouveau lien dans la base de données.
func (r *GormLinkRepository) CreateLink(link *models.Link) error {
	if err := r.db.Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// GetLinkBySlug récupère un lien de la base de données via son slug.
func (r *GormLinkRepository) GetLinkBySlug(slug string) (*models.Link, error) {
	var link models.Link
	if err := r.db.Where("slug = ?", slug).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// GetLinksByUserID récupère les liens appartenant à un utilisateur.
func (r *GormLinkRepository) GetLinksByUserID(userID uint) ([]models.Link, error) {
	var links []models.Link
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve links for user %d: %w", userID, err)
	}
	return links, nil
}

// GetAllLinks récupère tous les liens de la base de données.
func (r *GormLinkRepository) GetAllLinks() ([]models.Link, error) {
	var links []models.Link
	if err := r.db.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all links: %w", err)
	}
	return links, nil
}

// UpdateLink persiste les modifications d'un lien existant.
func (r *GormLinkRepository) UpdateLink(link *models.Link) error {
	if err := r.db.Save(link).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update link: %w", err)
	}
	return nil
}

// DeleteLink supprime un lien et ses clics associés.
func (r *GormLinkRepository) DeleteLink(link *models.Link) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("link_id = ?", link.ID).Delete(&models.Click{}).Error; err != nil {
			return fmt.Errorf("failed to delete clicks: %w", err)
		}
		if err := tx.Delete(link).Error; err != nil {
			return fmt.Errorf("failed to delete link: %w", err)
		}
		return nil
	})
}

// SlugsTaken checks a whole candidate batch in one query and returns the
// subset already present as a lookup set.
func (r *GormLinkRepository) SlugsTaken(slugs []string) (map[string]bool, error) {
	taken := make(map[string]bool, len(slugs))
	if len(slugs) == 0 {
		return taken, nil
	}
	var existing []string
	if err := r.db.Model(&models.Link{}).Where("slug IN ?", slugs).Pluck("slug", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check slug availability: %w", err)
	}
	for _, s := range existing {
		taken[s] = true
	}
	return taken, nil
}

// isUniqueViolation matches gorm's translated duplicate-key error as well
// as the raw sqlite constraint message.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

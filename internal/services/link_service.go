// Package services contains the business logic layer of the application.
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	apperrors "github.com/Ifihan/briefen-me/internal/errors"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/repository"
	"github.com/Ifihan/briefen-me/internal/slug"
	"github.com/Ifihan/briefen-me/internal/validate"
	"gorm.io/gorm"
)

// slugCharset is the alphabet for generated slugs. Slugs are lowercase,
// so only letters and digits are drawn; no leading/trailing hyphen rules
// to worry about.
const slugCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// generatedSlugLength is the length of slugs generated when the caller
// does not choose one.
const generatedSlugLength = 6

// LinkService provides business logic for managing shortened links.
type LinkService struct {
	linkRepo repository.LinkRepository
}

// NewLinkService creates and returns a new instance of LinkService.
func NewLinkService(linkRepo repository.LinkRepository) *LinkService {
	return &LinkService{linkRepo: linkRepo}
}

// CreateLink validates the destination and the chosen slug, then persists
// the link. The URL is re-validated here even though the caller already
// validated it before scraping; both passes must agree on the normalized
// form. A unique-constraint rejection from the store is an ordinary
// "slug already taken" outcome.
func (s *LinkService) CreateLink(rawURL, slugStr string, userID *uint) (*models.Link, error) {
	normalized, err := validate.Validate(rawURL)
	if err != nil {
		return nil, err
	}

	if !slug.IsValid(slugStr) {
		return nil, fmt.Errorf("%w: use 1-%d lowercase letters, numbers and hyphens",
			apperrors.ErrInvalidSlug, slug.MaxLength)
	}

	link := &models.Link{
		Slug:        slugStr,
		OriginalURL: normalized,
		UserID:      userID,
	}

	if err := s.linkRepo.CreateLink(link); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, err
	}

	return link, nil
}

// GenerateSlug returns a cryptographically random slug of the given length.
func GenerateSlug(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slugCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = slugCharset[num.Int64()]
	}
	return string(code), nil
}

// CreateLinkWithGeneratedSlug persists a link under a random slug,
// regenerating on collision.
func (s *LinkService) CreateLinkWithGeneratedSlug(rawURL string, userID *uint) (*models.Link, error) {
	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		slugStr, err := GenerateSlug(generatedSlugLength)
		if err != nil {
			return nil, err
		}
		link, err := s.CreateLink(rawURL, slugStr, userID)
		if errors.Is(err, apperrors.ErrSlugTaken) {
			continue
		}
		return link, err
	}
	return nil, fmt.Errorf("could not find an available slug after %d attempts", maxRetries)
}

// GetLinkBySlug retrieves a link by its slug. This is the lookup behind
// every redirect.
func (s *LinkService) GetLinkBySlug(slugStr string) (*models.Link, error) {
	link, err := s.linkRepo.GetLinkBySlug(slugStr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSlugNotFound
		}
		return nil, err
	}
	return link, nil
}

// ListUserLinks returns the links owned by a user, newest first.
func (s *LinkService) ListUserLinks(userID uint) ([]models.Link, error) {
	return s.linkRepo.GetLinksByUserID(userID)
}

// ListAllLinks returns every link, used for the sitemap and CLI stats.
func (s *LinkService) ListAllLinks() ([]models.Link, error) {
	return s.linkRepo.GetAllLinks()
}

// UpdateLink edits a link's slug and/or destination, ownership-checked.
// Empty arguments leave the corresponding field unchanged.
func (s *LinkService) UpdateLink(currentSlug string, userID uint, newSlug, newURL string) (*models.Link, error) {
	link, err := s.GetLinkBySlug(currentSlug)
	if err != nil {
		return nil, err
	}
	if link.UserID == nil || *link.UserID != userID {
		return nil, apperrors.ErrNotOwner
	}

	if newSlug != "" && newSlug != link.Slug {
		if !slug.IsValid(newSlug) {
			return nil, fmt.Errorf("%w: use 1-%d lowercase letters, numbers and hyphens",
				apperrors.ErrInvalidSlug, slug.MaxLength)
		}
		link.Slug = newSlug
	}

	if newURL != "" {
		normalized, err := validate.Validate(newURL)
		if err != nil {
			return nil, err
		}
		link.OriginalURL = normalized
	}

	if err := s.linkRepo.UpdateLink(link); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, err
	}
	return link, nil
}

// DeleteLink removes a link and its click history, ownership-checked.
func (s *LinkService) DeleteLink(slugStr string, userID uint) error {
	link, err := s.GetLinkBySlug(slugStr)
	if err != nil {
		return err
	}
	if link.UserID == nil || *link.UserID != userID {
		return apperrors.ErrNotOwner
	}
	return s.linkRepo.DeleteLink(link)
}

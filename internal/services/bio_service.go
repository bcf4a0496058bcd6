package services

import (
	"errors"
	"regexp"

	apperrors "github.com/Ifihan/briefen-me/internal/errors"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/repository"
	"github.com/Ifihan/briefen-me/internal/validate"
	"gorm.io/gorm"
)

var validUsername = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// ErrInvalidUsername is returned for usernames outside the allowed
// charset or length.
var ErrInvalidUsername = errors.New("invalid username: use 3-30 lowercase letters, numbers and underscores")

// ErrTitleRequired is returned when a bio link is missing its title.
var ErrTitleRequired = errors.New("title is required")

// BioService provides business logic for bio pages and their links.
type BioService struct {
	bioRepo repository.BioRepository
}

// NewBioService creates and returns a new instance of BioService.
func NewBioService(bioRepo repository.BioRepository) *BioService {
	return &BioService{bioRepo: bioRepo}
}

// UpsertPage creates the user's bio page or updates it when it already
// exists. Username uniqueness is enforced by the store.
func (s *BioService) UpsertPage(userID uint, username, displayName, bio, theme string) (*models.BioPage, error) {
	if !validUsername.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	page, err := s.bioRepo.GetBioPageByUserID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		page = &models.BioPage{UserID: userID}
	}

	page.Username = username
	page.DisplayName = displayName
	page.Bio = bio
	if theme != "" {
		page.Theme = theme
	}

	if page.ID == 0 {
		err = s.bioRepo.CreateBioPage(page)
	} else {
		err = s.bioRepo.UpdateBioPage(page)
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, apperrors.ErrUsernameTaken
		}
		return nil, err
	}
	return page, nil
}

// GetPage returns the user's own bio page.
func (s *BioService) GetPage(userID uint) (*models.BioPage, error) {
	return s.bioRepo.GetBioPageByUserID(userID)
}

// GetPageWithLinks returns the user's own page with every link, active
// or not, for the management view.
func (s *BioService) GetPageWithLinks(userID uint) (*models.BioPage, []models.BioLink, error) {
	page, err := s.bioRepo.GetBioPageByUserID(userID)
	if err != nil {
		return nil, nil, err
	}
	links, err := s.bioRepo.GetBioLinks(page.ID)
	if err != nil {
		return nil, nil, err
	}
	return page, links, nil
}

// SetAvatar stores the avatar blob key on the page and returns the key
// that was replaced, if any, so the caller can delete the old blob.
func (s *BioService) SetAvatar(userID uint, blobName string) (string, error) {
	page, err := s.bioRepo.GetBioPageByUserID(userID)
	if err != nil {
		return "", err
	}
	previous := page.AvatarBlob
	page.AvatarBlob = blobName
	if err := s.bioRepo.UpdateBioPage(page); err != nil {
		return "", err
	}
	return previous, nil
}

// PublicPage returns the page and its active links in display order for
// public rendering.
func (s *BioService) PublicPage(username string) (*models.BioPage, []models.BioLink, error) {
	page, err := s.bioRepo.GetBioPageByUsername(username)
	if err != nil {
		return nil, nil, err
	}

	all, err := s.bioRepo.GetBioLinks(page.ID)
	if err != nil {
		return nil, nil, err
	}

	active := make([]models.BioLink, 0, len(all))
	for _, link := range all {
		if link.IsActive {
			active = append(active, link)
		}
	}
	return page, active, nil
}

// AddLink appends a link at the end of the user's bio page.
func (s *BioService) AddLink(userID uint, title, rawURL string, isSocial bool) (*models.BioLink, error) {
	page, err := s.bioRepo.GetBioPageByUserID(userID)
	if err != nil {
		return nil, err
	}

	normalized, err := validate.Validate(rawURL)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, ErrTitleRequired
	}

	existing, err := s.bioRepo.GetBioLinks(page.ID)
	if err != nil {
		return nil, err
	}
	position := 0
	for _, l := range existing {
		if l.Position >= position {
			position = l.Position + 1
		}
	}

	link := &models.BioLink{
		BioPageID: page.ID,
		Title:     title,
		URL:       normalized,
		Position:  position,
		IsActive:  true,
		IsSocial:  isSocial,
	}
	if err := s.bioRepo.CreateBioLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// UpdateLink edits a bio link, ownership-checked through the page.
func (s *BioService) UpdateLink(userID, linkID uint, title, rawURL string, isActive, isSocial *bool) (*models.BioLink, error) {
	link, err := s.ownedLink(userID, linkID)
	if err != nil {
		return nil, err
	}

	if title != "" {
		link.Title = title
	}
	if rawURL != "" {
		normalized, err := validate.Validate(rawURL)
		if err != nil {
			return nil, err
		}
		link.URL = normalized
	}
	if isActive != nil {
		link.IsActive = *isActive
	}
	if isSocial != nil {
		link.IsSocial = *isSocial
	}

	if err := s.bioRepo.UpdateBioLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// DeleteLink removes a bio link, ownership-checked.
func (s *BioService) DeleteLink(userID, linkID uint) error {
	link, err := s.ownedLink(userID, linkID)
	if err != nil {
		return err
	}
	return s.bioRepo.DeleteBioLink(link)
}

// Reorder applies a batch of positions given as an ordered list of link
// IDs: the first ID gets position 0, the second 1, and so on.
func (s *BioService) Reorder(userID uint, orderedIDs []uint) error {
	page, err := s.bioRepo.GetBioPageByUserID(userID)
	if err != nil {
		return err
	}

	positions := make(map[uint]int, len(orderedIDs))
	for i, id := range orderedIDs {
		positions[id] = i
	}
	return s.bioRepo.ReorderBioLinks(page.ID, positions)
}

// RecordLinkClick bumps a bio link's counter and returns its URL for the
// redirect. Scoped to the page so link IDs can't be guessed across pages.
func (s *BioService) RecordLinkClick(username string, linkID uint) (string, error) {
	page, err := s.bioRepo.GetBioPageByUsername(username)
	if err != nil {
		return "", err
	}
	link, err := s.bioRepo.GetBioLinkByID(linkID)
	if err != nil {
		return "", err
	}
	if link.BioPageID != page.ID || !link.IsActive {
		return "", gorm.ErrRecordNotFound
	}
	if err := s.bioRepo.IncrementBioLinkClicks(link.ID); err != nil {
		return "", err
	}
	return link.URL, nil
}

func (s *BioService) ownedLink(userID, linkID uint) (*models.BioLink, error) {
	page, err := s.bioRepo.GetBioPageByUserID(userID)
	if err != nil {
		return nil, err
	}
	link, err := s.bioRepo.GetBioLinkByID(linkID)
	if err != nil {
		return nil, err
	}
	if link.BioPageID != page.ID {
		return nil, apperrors.ErrNotOwner
	}
	return link, nil
}

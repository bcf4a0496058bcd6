package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ifihan/briefen-me/internal/auth"
	apperrors "github.com/Ifihan/briefen-me/internal/errors"
	"github.com/Ifihan/briefen-me/internal/models"
	"github.com/Ifihan/briefen-me/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BioPageRequest is the JSON body of the bio page upsert endpoint.
type BioPageRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Theme       string `json:"theme"`
}

// UpsertBioHandler creates or updates the user's bio page.
func (h *Handlers) UpsertBioHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)

	var req BioPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	page, err := h.Bio.UpsertPage(userID, req.Username, req.DisplayName, req.Bio, req.Theme)
	if err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
		return
	}

	c.JSON(http.StatusOK, bioPageJSON(page, nil))
}

// GetBioHandler returns the user's own bio page with all its links.
func (h *Handlers) GetBioHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)

	page, links, err := h.Bio.GetPageWithLinks(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No bio page yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if links == nil {
		links = []models.BioLink{}
	}
	c.JSON(http.StatusOK, bioPageJSON(page, links))
}

// BioLinkRequest is the JSON body for creating/editing bio links.
type BioLinkRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	IsActive *bool  `json:"is_active"`
	IsSocial *bool  `json:"is_social"`
}

// AddBioLinkHandler appends a new link to the user's bio page.
func (h *Handlers) AddBioLinkHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)

	var req BioLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	isSocial := req.IsSocial != nil && *req.IsSocial
	link, err := h.Bio.AddLink(userID, req.Title, req.URL, isSocial)
	if err != nil {
		h.respondBioError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bioLinkJSON(link))
}

// UpdateBioLinkHandler edits a bio link.
func (h *Handlers) UpdateBioLinkHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)
	linkID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link id"})
		return
	}

	var req BioLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	link, err := h.Bio.UpdateLink(userID, linkID, req.Title, req.URL, req.IsActive, req.IsSocial)
	if err != nil {
		h.respondBioError(c, err)
		return
	}
	c.JSON(http.StatusOK, bioLinkJSON(link))
}

// DeleteBioLinkHandler removes a bio link.
func (h *Handlers) DeleteBioLinkHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)
	linkID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link id"})
		return
	}

	if err := h.Bio.DeleteLink(userID, linkID); err != nil {
		h.respondBioError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReorderRequest carries the new display order as a list of link IDs.
type ReorderRequest struct {
	Order []uint `json:"order"`
}

// ReorderBioLinksHandler applies a batch reordering of the page's links.
func (h *Handlers) ReorderBioLinksHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Order) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order list is required"})
		return
	}

	if err := h.Bio.Reorder(userID, req.Order); err != nil {
		h.respondBioError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadAvatarHandler stores a new avatar image and deletes the previous
// blob, if any.
func (h *Handlers) UploadAvatarHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read avatar file"})
		return
	}

	blobName, err := h.Avatars.Put(c.Request.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
		return
	}

	previous, err := h.Bio.SetAvatar(userID, blobName)
	if err != nil {
		// Don't leak an orphaned blob when the page update failed.
		if delErr := h.Avatars.Delete(c.Request.Context(), blobName); delErr != nil {
			log.Printf("Failed to clean up avatar blob %s: %v", blobName, delErr)
		}
		h.respondBioError(c, err)
		return
	}
	if previous != "" {
		if err := h.Avatars.Delete(c.Request.Context(), previous); err != nil {
			log.Printf("Failed to delete previous avatar %s: %v", previous, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": avatarURL(blobName)})
}

// AvatarHandler serves an avatar blob.
func (h *Handlers) AvatarHandler(c *gin.Context) {
	data, contentType, err := h.Avatars.Get(c.Request.Context(), "avatars/"+c.Param("blob"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Avatar not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// PublicBioHandler renders a bio page publicly by username.
func (h *Handlers) PublicBioHandler(c *gin.Context) {
	page, links, err := h.Bio.PublicPage(c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bio page not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, bioPageJSON(page, links))
}

// BioLinkClickHandler counts a bio-link click and redirects to its URL.
func (h *Handlers) BioLinkClickHandler(c *gin.Context) {
	linkID, err := parseID(c.Param("linkID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link id"})
		return
	}

	target, err := h.Bio.RecordLinkClick(c.Param("username"), linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handlers) respondBioError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the owner of this resource"})
	case userFacing(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
	default:
		log.Printf("Bio operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func bioPageJSON(page *models.BioPage, links []models.BioLink) gin.H {
	out := gin.H{
		"username":     page.Username,
		"display_name": page.DisplayName,
		"bio":          page.Bio,
		"theme":        page.Theme,
	}
	if page.AvatarBlob != "" {
		out["avatar_url"] = avatarURL(page.AvatarBlob)
	}
	if links != nil {
		rendered := make([]gin.H, 0, len(links))
		for i := range links {
			rendered = append(rendered, bioLinkJSON(&links[i]))
		}
		out["links"] = rendered
	}
	return out
}

func bioLinkJSON(link *models.BioLink) gin.H {
	out := gin.H{
		"id":          link.ID,
		"title":       link.Title,
		"url":         link.URL,
		"position":    link.Position,
		"is_active":   link.IsActive,
		"is_social":   link.IsSocial,
		"click_count": link.ClickCount,
	}
	if platform := link.SocialPlatform(); platform != "" {
		out["social_platform"] = platform
	}
	return out
}

// avatarURL maps a stored blob key to its public serving path. Keys are
// namespaced under avatars/ by the store; the route param carries only
// the base name.
func avatarURL(blobName string) string {
	return "/api/avatar/" + strings.TrimPrefix(blobName, "avatars/")
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	return uint(id), err
}

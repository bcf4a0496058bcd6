package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ifihan/briefen-me/internal/auth"
	apperrors "github.com/Ifihan/briefen-me/internal/errors"
	"github.com/Ifihan/briefen-me/internal/services"
	"github.com/Ifihan/briefen-me/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	qrcode "github.com/skip2/go-qrcode"
)

// Handlers bundles the services the HTTP layer depends on.
type Handlers struct {
	BaseURL     string
	Links       *services.LinkService
	Clicks      *services.ClickService
	Suggestions *services.SlugSuggestionService
	Analytics   *services.AnalyticsService
	Bio         *services.BioService
	Users       *services.UserService
	Auth        *auth.Manager
	Avatars     storage.Store
}

// SetupRoutes configures all Gin routes.
func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/health", HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/sitemap.xml", h.SitemapHandler)
	router.GET("/robots.txt", RobotsHandler)

	api := router.Group("/api")
	{
		api.POST("/signup", h.SignupHandler)
		api.POST("/login", h.LoginHandler)
		api.GET("/me", h.Auth.Required(), h.MeHandler)

		api.POST("/generate-slugs", h.GenerateSlugsHandler)
		api.POST("/create-short-url", h.Auth.Optional(), h.CreateShortURLHandler)

		api.GET("/links", h.Auth.Required(), h.ListLinksHandler)
		api.PUT("/links/:slug", h.Auth.Required(), h.UpdateLinkHandler)
		api.DELETE("/links/:slug", h.Auth.Required(), h.DeleteLinkHandler)
		api.GET("/links/:slug/analytics", h.Auth.Required(), h.LinkAnalyticsHandler)
		api.GET("/links/:slug/qr", h.QRCodeHandler)

		api.POST("/bio", h.Auth.Required(), h.UpsertBioHandler)
		api.GET("/bio", h.Auth.Required(), h.GetBioHandler)
		api.POST("/bio/links", h.Auth.Required(), h.AddBioLinkHandler)
		api.PUT("/bio/links/reorder", h.Auth.Required(), h.ReorderBioLinksHandler)
		api.PUT("/bio/links/:id", h.Auth.Required(), h.UpdateBioLinkHandler)
		api.DELETE("/bio/links/:id", h.Auth.Required(), h.DeleteBioLinkHandler)
		api.POST("/bio/avatar", h.Auth.Required(), h.UploadAvatarHandler)
		api.GET("/avatar/:blob", h.AvatarHandler)
	}

	router.GET("/u/:username", h.PublicBioHandler)
	router.GET("/u/:username/go/:linkID", h.BioLinkClickHandler)

	// Redirection route at root level, e.g. localhost:8080/my-slug.
	router.GET("/:slug", h.RedirectHandler)
}

// HealthCheckHandler handles the /health route to verify service status.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateShortURLRequest is the JSON body of create-short-url.
type CreateShortURLRequest struct {
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

// CreateShortURLHandler creates a link with the caller's chosen slug.
func (h *Handlers) CreateShortURLHandler(c *gin.Context) {
	var req CreateShortURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.URL == "" || req.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL and slug are required"})
		return
	}

	var userID *uint
	if id, ok := auth.UserID(c); ok {
		userID = &id
	}

	link, err := h.Links.CreateLink(req.URL, req.Slug, userID)
	if err != nil {
		if userFacing(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
			return
		}
		log.Printf("Error creating link: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create short link"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"slug":         link.Slug,
		"short_url":    h.shortURL(link.Slug),
		"original_url": link.OriginalURL,
	})
}

// GenerateSlugsRequest is the JSON body of generate-slugs.
type GenerateSlugsRequest struct {
	URL string `json:"url"`
}

// GenerateSlugsHandler streams AI slug suggestions as Server-Sent
// Events. Each event is flushed as it is produced; closing the
// connection cancels scraping and further AI calls through the request
// context.
func (h *Handlers) GenerateSlugsHandler(c *gin.Context) {
	var req GenerateSlugsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	events := h.Suggestions.Generate(c.Request.Context(), req.URL)
	c.Stream(func(w io.Writer) bool {
		event, ok := <-events
		if !ok {
			return false
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return false
		}
		c.SSEvent("message", string(payload))
		return true
	})
}

// RedirectHandler resolves a slug, records the click and redirects.
// Click recording is synchronous but never fails the redirect.
func (h *Handlers) RedirectHandler(c *gin.Context) {
	slug := c.Param("slug")

	link, err := h.Links.GetLinkBySlug(slug)
	if err != nil {
		if errors.Is(err, apperrors.ErrSlugNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
			return
		}
		log.Printf("Error retrieving link for %s: %v", slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.Clicks.Record(link, c.ClientIP(), c.GetHeader("User-Agent"), c.GetHeader("Referer"))

	c.Redirect(http.StatusFound, link.OriginalURL)
}

// ListLinksHandler returns the authenticated user's links.
func (h *Handlers) ListLinksHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)
	links, err := h.Links.ListUserLinks(userID)
	if err != nil {
		log.Printf("Error listing links for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := make([]gin.H, 0, len(links))
	for _, link := range links {
		out = append(out, gin.H{
			"slug":         link.Slug,
			"original_url": link.OriginalURL,
			"short_url":    h.shortURL(link.Slug),
			"click_count":  link.ClickCount,
			"created_at":   link.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"links": out})
}

// UpdateLinkRequest is the JSON body of the link edit endpoint.
type UpdateLinkRequest struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// UpdateLinkHandler edits a link's slug and/or destination.
func (h *Handlers) UpdateLinkHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)

	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	link, err := h.Links.UpdateLink(c.Param("slug"), userID, req.Slug, req.URL)
	if err != nil {
		h.respondLinkError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":         link.Slug,
		"original_url": link.OriginalURL,
		"short_url":    h.shortURL(link.Slug),
	})
}

// DeleteLinkHandler deletes a link and its click history.
func (h *Handlers) DeleteLinkHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)
	if err := h.Links.DeleteLink(c.Param("slug"), userID); err != nil {
		h.respondLinkError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LinkAnalyticsHandler returns the aggregated click report for a link.
// Accepts ?days=N to restrict to a trailing window.
func (h *Handlers) LinkAnalyticsHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)

	link, err := h.Links.GetLinkBySlug(c.Param("slug"))
	if err != nil {
		h.respondLinkError(c, err)
		return
	}
	if link.UserID == nil || *link.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the owner of this link"})
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
			return
		}
	}

	report, err := h.Analytics.Aggregate(link.ID, days)
	if err != nil {
		log.Printf("Error aggregating analytics for %s: %v", link.Slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// QRCodeHandler renders a PNG QR code pointing at the short URL.
func (h *Handlers) QRCodeHandler(c *gin.Context) {
	slug := c.Param("slug")
	if _, err := h.Links.GetLinkBySlug(slug); err != nil {
		h.respondLinkError(c, err)
		return
	}

	png, err := qrcode.Encode(h.shortURL(slug), qrcode.Medium, 256)
	if err != nil {
		log.Printf("Error generating QR code for %s: %v", slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handlers) shortURL(slug string) string {
	return strings.TrimRight(h.BaseURL, "/") + "/" + slug
}

// respondLinkError maps service errors to HTTP responses.
func (h *Handlers) respondLinkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrSlugNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
	case errors.Is(err, apperrors.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the owner of this link"})
	case userFacing(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
	default:
		log.Printf("Link operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

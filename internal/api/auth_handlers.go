package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/Ifihan/briefen-me/internal/auth"
	"github.com/Ifihan/briefen-me/internal/services"
	"github.com/gin-gonic/gin"
)

// CredentialsRequest is the JSON body of signup and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupHandler registers a user and returns a session token.
func (h *Handlers) SignupHandler(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user, err := h.Users.Signup(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) || userFacing(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
			return
		}
		log.Printf("Signup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.issueSession(c, user.ID, http.StatusCreated)
}

// LoginHandler verifies credentials and returns a session token.
func (h *Handlers) LoginHandler(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user, err := h.Users.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Printf("Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.issueSession(c, user.ID, http.StatusOK)
}

// MeHandler returns the authenticated user.
func (h *Handlers) MeHandler(c *gin.Context) {
	userID, _ := auth.UserID(c)
	user, err := h.Users.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email, "created_at": user.CreatedAt})
}

func (h *Handlers) issueSession(c *gin.Context, userID uint, status int) {
	token, err := h.Auth.IssueToken(userID)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"token": token})
}

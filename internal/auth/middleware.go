package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// userIDKey is the gin context key holding the authenticated user ID.
const userIDKey = "auth.userID"

// Required rejects requests without a valid bearer token.
func (m *Manager) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.userFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// Optional resolves the user when a valid token is present but lets
// anonymous requests through. Used by create-short-url, where anonymous
// links are allowed.
func (m *Manager) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := m.userFromRequest(c); ok {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}

func (m *Manager) userFromRequest(c *gin.Context) (uint, bool) {
	var tokenString string
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	} else if cookie, err := c.Cookie("auth_token"); err == nil {
		// Browser flows carry the token as a cookie instead.
		tokenString = cookie
	}
	if tokenString == "" {
		return 0, false
	}

	userID, err := m.ParseToken(tokenString)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// UserID returns the authenticated user ID from the context, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

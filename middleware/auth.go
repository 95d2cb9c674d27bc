package middleware

import (
	"net/http"
	"strings"

	"lifestyle-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName holds the access token issued at sign-in. It is scoped to
// the root domain so every tenant subdomain shares it.
const SessionCookieName = "lsn-session"

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// sessionToken returns the bearer token from the Authorization header, falling
// back to the session cookie when there is no bearer token.
func sessionToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

func loadSession(c *gin.Context, secret string) bool {
	token := sessionToken(c)
	if token == "" {
		return false
	}
	claims, err := utils.ValidateSessionToken(secret, token)
	if err != nil {
		return false
	}
	userID, err := claims.UserID()
	if err != nil {
		return false
	}
	c.Set(ContextUserID, userID)
	c.Set(ContextUserEmail, claims.Email)
	return true
}

// SessionMiddleware requires a valid session and stores the user in the context.
func SessionMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadSession(c, secret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalSessionMiddleware loads the session when there is one and never rejects.
func OptionalSessionMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		loadSession(c, secret)
		c.Next()
	}
}

// SessionUser returns the signed-in user, if any.
func SessionUser(c *gin.Context) (uuid.UUID, string, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, "", false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, c.GetString(ContextUserEmail), true
}

// AdminKeyMiddleware guards operator endpoints with a shared key whose bcrypt
// hash is configured. Without a hash the admin API is disabled.
func AdminKeyMiddleware(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin API is not configured"})
			c.Abort()
			return
		}

		key := c.GetHeader("X-Admin-Key")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin key required"})
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

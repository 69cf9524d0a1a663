package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adrianstroescu/saasrevive/internal/auth"
	"github.com/adrianstroescu/saasrevive/internal/models"
)

const (
	// ContextKeyUserID holds the key for user ID in Gin context.
	ContextKeyUserID = "userID"
	// ContextKeyRole holds the key for the user role in Gin context.
	ContextKeyRole = "userRole"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// OptionalAuthMiddleware populates user identity when a valid token is
// present but never rejects the request. Used on routes with a guest
// fallback.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := claimsFromRequest(c, jwtSecret); err == nil {
			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyRole, claims.Role)
		}
		c.Next()
	}
}

// RequireRole creates a Gin middleware that rejects callers whose role does
// not match. Assumes AuthMiddleware runs first.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, exists := c.Get(ContextKeyRole)
		if !exists || current.(models.Role) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, jwtSecret string) (*auth.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("authorization header format must be Bearer {token}")
	}

	claims, err := auth.ValidateJWT(parts[1], jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token: %w", err)
	}
	return claims, nil
}

// CurrentUserID returns the authenticated user ID from the Gin context, or
// empty string when the request is anonymous.
func CurrentUserID(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyUserID); exists {
		return v.(string)
	}
	return ""
}

// CurrentRole returns the authenticated user's role, or empty string when the
// request is anonymous.
func CurrentRole(c *gin.Context) models.Role {
	if v, exists := c.Get(ContextKeyRole); exists {
		return v.(models.Role)
	}
	return ""
}

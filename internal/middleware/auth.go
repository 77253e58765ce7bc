package middleware

import (
	"errors"
	"net/http"
	"strings"

	"todo-manager/internal/models"
	"todo-manager/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// ContextUserKey holds the resolved *models.User for protected routes.
	ContextUserKey = "current_user"
	// ContextTokenKey holds the presented bearer token string.
	ContextTokenKey = "current_token"
)

// RequireAuth resolves the bearer token to a user before any handler runs.
// Resolution happens before every ownership check.
func RequireAuth(db *gorm.DB, authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "Authorization header must use Bearer token",
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		user, err := authService.Resolve(db, token)
		if err != nil {
			if errors.Is(err, models.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "unauthenticated",
					"message": "Token is invalid or has been revoked",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to resolve credentials",
			})
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// CurrentToken returns the bearer token set by RequireAuth.
func CurrentToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextTokenKey)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}

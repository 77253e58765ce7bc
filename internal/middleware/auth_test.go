package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"todo-manager/internal/middleware"
	"todo-manager/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubAuthService struct {
	user  *models.User
	token string
}

func (s *stubAuthService) Register(db *gorm.DB, name, email, password string) (*models.User, string, error) {
	return s.user, s.token, nil
}

func (s *stubAuthService) Login(db *gorm.DB, email, password string) (*models.User, string, error) {
	return s.user, s.token, nil
}

func (s *stubAuthService) Logout(db *gorm.DB, token string) error {
	return nil
}

func (s *stubAuthService) Resolve(db *gorm.DB, token string) (*models.User, error) {
	if token == s.token {
		return s.user, nil
	}
	return nil, models.ErrInvalidToken
}

func setupProtectedRouter() (*gin.Engine, *stubAuthService) {
	gin.SetMode(gin.TestMode)
	stub := &stubAuthService{
		user:  &models.User{ID: uuid.Must(uuid.NewV4()), Name: "Jamie"},
		token: "live-token",
	}

	router := gin.New()
	router.Use(middleware.RequireAuth(nil, stub))
	router.GET("/protected", func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "user missing from context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID.String()})
	})
	return router, stub
}

func TestRequireAuthMissingHeader(t *testing.T) {
	router, _ := setupProtectedRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthenticated")
}

func TestRequireAuthWrongScheme(t *testing.T) {
	router, _ := setupProtectedRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthUnknownToken(t *testing.T) {
	router, _ := setupProtectedRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthResolvesUser(t *testing.T) {
	router, stub := setupProtectedRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+stub.token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), stub.user.ID.String())
}

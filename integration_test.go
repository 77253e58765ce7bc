package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"todo-manager/internal/config"
	"todo-manager/internal/database"
	"todo-manager/internal/handlers"
	"todo-manager/internal/models"
	"todo-manager/internal/monitoring"
	"todo-manager/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("DB_MAX_OPEN_CONNS", "1")
	t.Setenv("DB_MAX_IDLE_CONNS", "1")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	gin.SetMode(gin.TestMode)
	router := handlers.NewRouter(handlers.RouterDeps{
		Config:          cfg,
		DB:              db,
		Collector:       monitoring.NewCollector(),
		AuthService:     services.NewAuthService(bcrypt.MinCost),
		TodoService:     services.NewTodoService(),
		CategoryService: services.NewCategoryService(),
	})
	return router, db
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router *gin.Engine, name, email string) (map[string]interface{}, string) {
	w := doJSON(router, "POST", "/api/register", "", map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              "secret-password",
		"password_confirmation": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var payload struct {
		User  map[string]interface{} `json:"user"`
		Token string                 `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Token)
	return payload.User, payload.Token
}

func TestAuthLifecycle(t *testing.T) {
	router, _ := setupApp(t)

	_, token := registerUser(t, router, "Jamie", "jamie@example.com")

	w := doJSON(router, "GET", "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jamie@example.com")
	assert.NotContains(t, w.Body.String(), "secret-password")

	w = doJSON(router, "POST", "/api/login", "", map[string]string{
		"email":    "jamie@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(router, "POST", "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked token stops working")
}

func TestUnauthenticatedCreateLeavesNoRow(t *testing.T) {
	router, db := setupApp(t)

	w := doJSON(router, "POST", "/api/todos", "", map[string]string{"title": "Sneaky"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Todo{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTodoCategoryRoundTrip(t *testing.T) {
	router, _ := setupApp(t)
	_, token := registerUser(t, router, "Jamie", "jamie@example.com")

	w := doJSON(router, "POST", "/api/categories", token, map[string]string{
		"name":  "Errands",
		"color": "#00aa00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))

	w = doJSON(router, "POST", "/api/todos", token, map[string]interface{}{
		"title":       "Buy groceries",
		"description": "milk and eggs",
		"category_id": category["id"],
		"due_date":    "2025-12-24",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created["category"])

	w = doJSON(router, "GET", fmt.Sprintf("/api/todos/%v", created["id"]), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))

	embedded, ok := fetched["category"].(map[string]interface{})
	require.True(t, ok, "fetched todo embeds its category")
	assert.Equal(t, category["id"], embedded["id"])
	assert.Equal(t, "Errands", embedded["name"])
	assert.Equal(t, "2025-12-24", fetched["due_date"])
}

func TestPartialUpdateTouchesOnlyPresentFields(t *testing.T) {
	router, _ := setupApp(t)
	_, token := registerUser(t, router, "Jamie", "jamie@example.com")

	w := doJSON(router, "POST", "/api/todos", token, map[string]interface{}{
		"title":       "Buy groceries",
		"description": "milk and eggs",
		"due_date":    "2025-12-24",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(router, "PUT", fmt.Sprintf("/api/todos/%v", created["id"]), token, map[string]interface{}{
		"is_complete": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))

	assert.Equal(t, true, updated["is_complete"])
	assert.Equal(t, "Buy groceries", updated["title"])
	assert.Equal(t, "milk and eggs", updated["description"])
	assert.Equal(t, "2025-12-24", updated["due_date"])
}

func TestListFiltersAndSorting(t *testing.T) {
	router, _ := setupApp(t)
	_, token := registerUser(t, router, "Jamie", "jamie@example.com")

	for _, todo := range []map[string]interface{}{
		{"title": "Buy groceries", "due_date": "2025-12-01"},
		{"title": "Clean house", "due_date": "2025-11-01"},
		{"title": "File taxes"},
	} {
		w := doJSON(router, "POST", "/api/todos", token, todo)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(router, "GET", "/api/todos?search=groceries", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var todos []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todos))
	require.Len(t, todos, 1)
	assert.Equal(t, "Buy groceries", todos[0]["title"])

	w = doJSON(router, "GET", "/api/todos?sort_by=due_date&sort_order=asc", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todos))
	require.Len(t, todos, 3)
	assert.Equal(t, "Clean house", todos[0]["title"])
	assert.Equal(t, "Buy groceries", todos[1]["title"])
	assert.Equal(t, "File taxes", todos[2]["title"], "undated todo sorts last")

	w = doJSON(router, "GET", "/api/todos?sort_by=priority", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCrossUserAccessIsForbiddenNotHidden(t *testing.T) {
	router, _ := setupApp(t)
	_, ownerToken := registerUser(t, router, "Owner", "owner@example.com")
	_, otherToken := registerUser(t, router, "Other", "other@example.com")

	w := doJSON(router, "POST", "/api/todos", ownerToken, map[string]string{"title": "Private"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/todos/%v", created["id"])

	assert.Equal(t, http.StatusForbidden, doJSON(router, "GET", path, otherToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(router, "PUT", path, otherToken, map[string]string{"title": "Mine now"}).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(router, "DELETE", path, otherToken, nil).Code)

	assert.Equal(t, http.StatusOK, doJSON(router, "GET", path, ownerToken, nil).Code)
}

func TestCategoryDeleteLeavesTodoUncategorized(t *testing.T) {
	router, _ := setupApp(t)
	_, token := registerUser(t, router, "Jamie", "jamie@example.com")

	w := doJSON(router, "POST", "/api/categories", token, map[string]string{"name": "Work", "color": "#123456"})
	require.Equal(t, http.StatusCreated, w.Code)
	var category map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))

	w = doJSON(router, "POST", "/api/todos", token, map[string]interface{}{
		"title":       "Report",
		"category_id": category["id"],
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var todo map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todo))

	w = doJSON(router, "DELETE", fmt.Sprintf("/api/categories/%v", category["id"]), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, "GET", fmt.Sprintf("/api/todos/%v", todo["id"]), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Nil(t, fetched["category_id"])
	assert.Nil(t, fetched["category"])
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupApp(t)

	w := doJSON(router, "GET", "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

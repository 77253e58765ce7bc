package monitoring_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"todo-manager/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	collector := monitoring.NewCollector()

	router := gin.New()
	router.Use(collector.Middleware())
	router.GET("/api/todos", func(c *gin.Context) {
		c.JSON(http.StatusOK, []string{})
	})
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/api/todos", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "todo_manager_http_requests_total")
	assert.Contains(t, body, `route="/api/todos"`)
	assert.Contains(t, body, `status="200"`)
	assert.Contains(t, body, "todo_manager_http_request_duration_seconds")
}

func TestMiddlewareLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	collector := monitoring.NewCollector()

	router := gin.New()
	router.Use(collector.Middleware())
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	req, _ := http.NewRequest("GET", "/no/such/route", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	req, _ = http.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `route="unmatched"`)
}

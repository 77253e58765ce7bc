package handlers

import (
	"log/slog"

	"todo-manager/internal/config"
	"todo-manager/internal/middleware"
	"todo-manager/internal/monitoring"
	"todo-manager/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RouterDeps bundles everything the HTTP layer needs.
type RouterDeps struct {
	Config          *config.Config
	DB              *gorm.DB
	Logger          *slog.Logger
	Collector       *monitoring.Collector
	AuthService     services.AuthService
	TodoService     services.TodoService
	CategoryService services.CategoryService
}

// NewRouter assembles middleware and routes for the API.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if deps.Logger != nil {
		router.Use(middleware.RequestLogger(deps.Logger))
	}
	if deps.Collector != nil {
		router.Use(deps.Collector.Middleware())
	}
	router.Use(middleware.CORS(deps.Config))

	authHandler := NewAuthHandler(deps.DB, deps.AuthService)
	registerHandler := NewRegisterHandler(deps.DB, deps.AuthService)
	logoutHandler := NewLogoutHandler(deps.DB, deps.AuthService)
	todoHandler := NewTodoHandler(deps.DB, deps.TodoService)
	categoryHandler := NewCategoryHandler(deps.DB, deps.CategoryService)

	if deps.Collector != nil {
		router.GET("/metrics", gin.WrapH(deps.Collector.Handler()))
	}
	router.GET("/healthz", monitoring.HealthHandler(deps.DB))

	api := router.Group("/api")
	{
		api.POST("/register", registerHandler.Register)
		api.POST("/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(deps.DB, deps.AuthService))
		{
			protected.POST("/logout", logoutHandler.Logout)
			protected.GET("/me", authHandler.Me)

			protected.GET("/todos", todoHandler.List)
			protected.POST("/todos", todoHandler.Create)
			protected.GET("/todos/:id", todoHandler.Get)
			protected.PUT("/todos/:id", todoHandler.Update)
			protected.PATCH("/todos/:id", todoHandler.Update)
			protected.DELETE("/todos/:id", todoHandler.Delete)

			protected.GET("/categories", categoryHandler.List)
			protected.POST("/categories", categoryHandler.Create)
			protected.GET("/categories/:id", categoryHandler.Get)
			protected.PUT("/categories/:id", categoryHandler.Update)
			protected.PATCH("/categories/:id", categoryHandler.Update)
			protected.DELETE("/categories/:id", categoryHandler.Delete)
		}
	}

	return router
}

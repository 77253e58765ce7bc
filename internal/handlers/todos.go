package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"todo-manager/internal/middleware"
	"todo-manager/internal/models"
	"todo-manager/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TodoHandler struct {
	db          *gorm.DB
	todoService services.TodoService
}

func NewTodoHandler(db *gorm.DB, todoService services.TodoService) *TodoHandler {
	return &TodoHandler{db: db, todoService: todoService}
}

// List returns the caller's todos narrowed by the optional query filters and
// ordered per sort_by/sort_order.
func (h *TodoHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Not authenticated"})
		return
	}

	filter, err := parseTodoFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	todos, err := h.todoService.List(h.db, user.ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func parseTodoFilter(c *gin.Context) (services.TodoFilter, error) {
	var filter services.TodoFilter

	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.FromString(raw)
		if err != nil {
			return filter, models.NewValidationError("category_id", "must be a valid id")
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("is_complete"); raw != "" {
		complete, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, models.NewValidationError("is_complete", "must be a boolean")
		}
		filter.IsComplete = &complete
	}

	switch sortBy := c.DefaultQuery("sort_by", services.SortByCreatedAt); sortBy {
	case services.SortByCreatedAt, services.SortByDueDate, services.SortByTitle:
		filter.SortBy = sortBy
	default:
		return filter, models.NewValidationError("sort_by", "must be one of: created_at, due_date, title")
	}

	switch sortOrder := c.DefaultQuery("sort_order", services.SortDesc); sortOrder {
	case services.SortAsc, services.SortDesc:
		filter.SortOrder = sortOrder
	default:
		return filter, models.NewValidationError("sort_order", "must be one of: asc, desc")
	}

	return filter, nil
}

type CreateTodoRequest struct {
	Title       string       `json:"title" binding:"required,max=255"`
	Description string       `json:"description"`
	IsComplete  bool         `json:"is_complete"`
	CategoryID  *uuid.UUID   `json:"category_id"`
	DueDate     *models.Date `json:"due_date"`
}

func (h *TodoHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Not authenticated"})
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// The owner is always the caller; a client-supplied user id is ignored.
	todo, err := h.todoService.Create(h.db, user, services.TodoInput{
		Title:       req.Title,
		Description: req.Description,
		IsComplete:  req.IsComplete,
		CategoryID:  req.CategoryID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Not authenticated"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		respondError(c, models.ErrNotFound)
		return
	}

	todo, err := h.todoService.GetByID(h.db, user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

type updateTodoRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	IsComplete  *bool        `json:"is_complete"`
	CategoryID  *uuid.UUID   `json:"category_id"`
	DueDate     *models.Date `json:"due_date"`
}

// Update applies a partial update: only keys present in the payload change,
// and present-null clears the nullable fields.
func (h *TodoHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Not authenticated"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		respondError(c, models.ErrNotFound)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		respondBindError(c, err)
		return
	}

	var req updateTodoRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondBindError(c, err)
		return
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		respondBindError(c, err)
		return
	}

	_, hasDescription := present["description"]
	_, hasCategory := present["category_id"]
	_, hasDueDate := present["due_date"]

	patch := services.TodoPatch{
		Title:          req.Title,
		Description:    req.Description,
		DescriptionSet: hasDescription,
		IsComplete:     req.IsComplete,
		CategoryID:     req.CategoryID,
		CategorySet:    hasCategory,
		DueDate:        req.DueDate,
		DueDateSet:     hasDueDate,
	}

	todo, err := h.todoService.Update(h.db, user, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Not authenticated"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		respondError(c, models.ErrNotFound)
		return
	}

	if err := h.todoService.Delete(h.db, user, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

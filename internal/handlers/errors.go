package handlers

import (
	"errors"
	"net/http"

	"todo-manager/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps service failures onto the API error taxonomy:
// 422 validation, 403 forbidden, 404 not found, 500 otherwise.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_failed",
			"message": validationErr.Message,
			"field":   validationErr.Field,
		})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You do not own this resource",
		})
	case errors.Is(err, models.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Resource not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to process request",
		})
	}
}

// respondBindError rejects malformed or missing request input before any
// persistence is attempted.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   "validation_failed",
		"message": "Invalid request data",
		"details": err.Error(),
	})
}

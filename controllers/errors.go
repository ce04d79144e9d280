package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/services"
)

// respondServiceError maps a domain error onto the HTTP error envelope.
// Unrecognized errors are gateway/store failures and deliberately map to
// a generic DATABASE_ERROR so internals never leak to kiosk clients.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": err.Error()},
		})
	case errors.Is(err, services.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_AMOUNT", "message": err.Error()},
		})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "VALIDATION_ERROR", "message": err.Error()},
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_TRANSITION", "message": err.Error()},
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   gin.H{"code": "CONFLICT", "message": err.Error()},
		})
	case errors.Is(err, services.ErrLocked):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error":   gin.H{"code": "LOCKED", "message": err.Error()},
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "INVALID_CREDENTIALS", "message": "Invalid email or password"},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "DATABASE_ERROR", "message": "Operation failed"},
		})
	}
}

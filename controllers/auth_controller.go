package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/kapehan/kiosk-pos-api/services"
)

// LoginRequest represents the request body for a dashboard login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login - the admin-first login
// dispatch. The admin credential path is tried before the staff path;
// the response carries the dashboard route for the role that matched.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Email and password are required",
				"details": err.Error(),
			},
		})
		return
	}

	result, err := services.GetAuthService().Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// LockoutStatus handles GET /api/v1/admin/lockouts?email=&type= - lets
// an administrator inspect the lockout window for an account
func LockoutStatus(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "email query parameter is required",
			},
		})
		return
	}

	attemptType := models.AttemptType(c.DefaultQuery("type", string(models.AttemptTypeStaff)))
	if attemptType != models.AttemptTypeAdmin && attemptType != models.AttemptTypeStaff {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "type must be 'admin' or 'staff'",
			},
		})
		return
	}

	status, err := services.GetAuthService().IsLocked(email, attemptType)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/config"
	"github.com/kapehan/kiosk-pos-api/models"
)

// SubmitFeedbackRequest represents the request body for customer feedback
type SubmitFeedbackRequest struct {
	Rating   int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment  string `json:"comment"`
	Terminal string `json:"terminal"`
}

// SubmitFeedback handles POST /api/v1/feedback - a thin pass-through to
// the customer_feedbacks table
func SubmitFeedback(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Rating between 1 and 5 is required",
				"details": err.Error(),
			},
		})
		return
	}

	feedback := models.CustomerFeedback{
		Rating:   req.Rating,
		Comment:  req.Comment,
		Terminal: req.Terminal,
	}

	db := config.GetDB()
	if err := db.Create(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save feedback",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    feedback,
	})
}

// ListFeedback handles GET /api/v1/admin/feedback - feedback entries,
// newest first
func ListFeedback(c *gin.Context) {
	db := config.GetDB()

	var feedback []models.CustomerFeedback
	if err := db.Order("created_at DESC").Find(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load feedback",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    feedback,
	})
}

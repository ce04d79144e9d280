package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/config"
	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/kapehan/kiosk-pos-api/services"
	"github.com/kapehan/kiosk-pos-api/utils"
)

// UploadMenuPhoto handles POST /api/v1/admin/menu/:id/photo - attaches a
// photo to a menu item, replacing any previous one
func UploadMenuPhoto(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var item models.MenuItem
	if err := db.First(&item, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Menu item not found",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A photo upload named 'photo' is required",
			},
		})
		return
	}

	photoService := services.GetPhotoService()
	if photoService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAVAILABLE",
				"message": "Photo storage is not configured",
			},
		})
		return
	}

	key, err := photoService.UploadPhoto(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to store photo",
			},
		})
		return
	}

	oldKey := item.PhotoS3Key
	if err := db.Model(&item).Update("photo_s3_key", key).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save photo reference",
			},
		})
		return
	}

	// Best-effort cleanup of the replaced photo.
	if oldKey != nil && *oldKey != key {
		if err := photoService.DeletePhoto(*oldKey); err != nil {
			log.Printf("Failed to delete replaced photo %s: %v", *oldKey, err)
		}
	}

	url, err := photoService.GetPhotoURL(key)
	if err != nil {
		log.Printf("Failed to generate photo URL for key %s: %v", key, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"photo_s3_key": key,
			"photo_url":    url,
		},
	})
}

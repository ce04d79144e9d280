package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/config"
	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/kapehan/kiosk-pos-api/services"
	"github.com/shopspring/decimal"
)

// MenuItemRequest represents the request body for creating or updating a menu item
type MenuItemRequest struct {
	Name                 string                         `json:"name" binding:"required"`
	Description          string                         `json:"description"`
	Price                decimal.Decimal                `json:"price"`
	Category             string                         `json:"category"`
	Available            *bool                          `json:"available"`
	CustomizationOptions models.CustomizationOptionList `json:"customization_options"`
	Quantity             *int                           `json:"quantity"`
}

// ListMenu handles GET /api/v1/menu - the kiosk menu. Only orderable
// items are returned: unavailable items and items with zero tracked
// stock are filtered out.
func ListMenu(c *gin.Context) {
	db := config.GetDB()

	var items []models.MenuItem
	if err := db.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load menu",
			},
		})
		return
	}

	orderable := make([]models.MenuItem, 0, len(items))
	for i := range items {
		if items[i].Orderable() {
			attachPhotoURL(&items[i])
			orderable = append(orderable, items[i])
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderable,
	})
}

// AdminListMenu handles GET /api/v1/admin/menu - every menu item,
// including unavailable and out-of-stock ones
func AdminListMenu(c *gin.Context) {
	db := config.GetDB()

	var items []models.MenuItem
	if err := db.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load menu",
			},
		})
		return
	}

	for i := range items {
		attachPhotoURL(&items[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// CreateMenuItem handles POST /api/v1/admin/menu - adds a menu item
func CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	item := models.MenuItem{
		Name:                 req.Name,
		Description:          req.Description,
		Price:                req.Price,
		Category:             req.Category,
		Available:            available,
		CustomizationOptions: req.CustomizationOptions,
		Quantity:             req.Quantity,
	}

	db := config.GetDB()
	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create menu item",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}

// UpdateMenuItem handles PUT /api/v1/admin/menu/:id - updates a menu item
func UpdateMenuItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
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

	updates := map[string]interface{}{
		"name":                  req.Name,
		"description":           req.Description,
		"price":                 req.Price,
		"category":              req.Category,
		"customization_options": req.CustomizationOptions,
		"quantity":              req.Quantity,
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}

	if err := db.Model(&item).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update menu item",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}

// DeleteMenuItem handles DELETE /api/v1/admin/menu/:id - removes a menu
// item and its stored photo
func DeleteMenuItem(c *gin.Context) {
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

	if err := db.Delete(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete menu item",
			},
		})
		return
	}

	// Photo cleanup is best-effort; the item row is already gone.
	if item.PhotoS3Key != nil {
		if photoService := services.GetPhotoService(); photoService != nil {
			if err := photoService.DeletePhoto(*item.PhotoS3Key); err != nil {
				log.Printf("Failed to delete photo for menu item %d: %v", item.ID, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Menu item deleted",
	})
}

// attachPhotoURL fills the computed PhotoURL field from the photo
// service when the item has a stored photo.
func attachPhotoURL(item *models.MenuItem) {
	if item.PhotoS3Key == nil {
		return
	}
	photoService := services.GetPhotoService()
	if photoService == nil {
		return
	}
	url, err := photoService.GetPhotoURL(*item.PhotoS3Key)
	if err != nil {
		log.Printf("Failed to generate photo URL for menu item %d: %v", item.ID, err)
		return
	}
	if url != "" {
		item.PhotoURL = &url
	}
}

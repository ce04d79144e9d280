package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/kapehan/kiosk-pos-api/services"
	"github.com/kapehan/kiosk-pos-api/utils"
	"github.com/shopspring/decimal"
)

// inventoryItemView decorates an item with its derived stock status.
type inventoryItemView struct {
	models.InventoryItem
	StockStatus models.StockStatus `json:"stock_status"`
}

func toInventoryView(items []models.InventoryItem) []inventoryItemView {
	views := make([]inventoryItemView, 0, len(items))
	for _, item := range items {
		views = append(views, inventoryItemView{InventoryItem: item, StockStatus: item.Status()})
	}
	return views
}

// ListInventory handles GET /api/v1/admin/inventory - all stocked items
// with derived status
func ListInventory(c *gin.Context) {
	items, err := services.GetInventoryService().ListItems()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toInventoryView(items),
	})
}

// CreateInventoryItem handles POST /api/v1/admin/inventory
func CreateInventoryItem(c *gin.Context) {
	var input services.InventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
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

	id, err := services.GetInventoryService().AddItem(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	item, err := services.GetInventoryService().GetItem(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    inventoryItemView{InventoryItem: *item, StockStatus: item.Status()},
	})
}

// UpdateInventoryItem handles PUT /api/v1/admin/inventory/:id
func UpdateInventoryItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var input services.InventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
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

	if err := services.GetInventoryService().UpdateItem(id, input); err != nil {
		respondServiceError(c, err)
		return
	}

	item, err := services.GetInventoryService().GetItem(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    inventoryItemView{InventoryItem: *item, StockStatus: item.Status()},
	})
}

// DeleteInventoryItem handles DELETE /api/v1/admin/inventory/:id
func DeleteInventoryItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := services.GetInventoryService().DeleteItem(id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Inventory item deleted",
	})
}

// AdjustStockRequest represents the request body for a stock adjustment.
// Amount is the entered magnitude; the sign is derived from the reason
// here, not by the ledger: receive adds, every other reason subtracts.
type AdjustStockRequest struct {
	Amount decimal.Decimal         `json:"amount" binding:"required"`
	Reason models.AdjustmentReason `json:"reason" binding:"required"`
	Note   *string                 `json:"note,omitempty"`
}

// AdjustStock handles POST /api/v1/admin/inventory/:id/adjust
func AdjustStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AdjustStockRequest
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

	if req.Amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_AMOUNT",
				"message": "Adjustment amount must be greater than zero",
			},
		})
		return
	}

	delta := req.Amount
	if req.Reason != models.ReasonReceive {
		delta = delta.Neg()
	}

	item, err := services.GetInventoryService().AdjustStock(id, delta, req.Reason, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    inventoryItemView{InventoryItem: *item, StockStatus: item.Status()},
	})
}

// ListStockAdjustments handles GET /api/v1/admin/inventory/:id/adjustments
func ListStockAdjustments(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	adjustments, err := services.GetInventoryService().ListAdjustments(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    adjustments,
	})
}

// ExportInventoryCSV handles GET /api/v1/admin/inventory/export
func ExportInventoryCSV(c *gin.Context) {
	items, err := services.GetInventoryService().ListItems()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="inventory.csv"`)
	if err := utils.WriteInventoryCSV(c.Writer, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to export inventory",
			},
		})
	}
}

// ImportInventoryCSV handles POST /api/v1/admin/inventory/import - a
// multipart CSV upload. Malformed rows are skipped, not fatal; the
// response reports both counts so the skip is never silent.
func ImportInventoryCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A CSV file upload named 'file' is required",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Failed to open uploaded file",
			},
		})
		return
	}
	defer file.Close()

	rows, skipped, err := utils.ParseInventoryCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Failed to parse CSV",
			},
		})
		return
	}

	result, err := services.GetInventoryService().ImportItems(rows, skipped)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

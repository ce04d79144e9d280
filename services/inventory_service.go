package services

import (
	"fmt"

	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryService owns the stock ledger: item CRUD and signed stock
// adjustments. Stock is never assigned directly; every change goes
// through AdjustStock so the adjustment rows form an audit trail.
type InventoryService struct {
	db *gorm.DB
}

var inventoryServiceInstance *InventoryService

// InitInventoryService initializes the inventory service with a database handle
func InitInventoryService(db *gorm.DB) *InventoryService {
	inventoryServiceInstance = &InventoryService{db: db}
	return inventoryServiceInstance
}

// GetInventoryService returns the initialized inventory service instance
func GetInventoryService() *InventoryService {
	return inventoryServiceInstance
}

// InventoryItemInput is the payload for creating or updating an item.
type InventoryItemInput struct {
	SKU              string           `json:"sku" binding:"required"`
	Name             string           `json:"name" binding:"required"`
	Category         string           `json:"category"`
	Unit             models.Unit      `json:"unit"`
	Stock            decimal.Decimal  `json:"stock"`
	ReorderThreshold decimal.Decimal  `json:"reorder_threshold"`
	CostPrice        *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice     *decimal.Decimal `json:"selling_price,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}

func (in *InventoryItemInput) validate() error {
	if in.SKU == "" {
		return fmt.Errorf("%w: sku is required", ErrInvalidInput)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Unit != "" && !in.Unit.Valid() {
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidInput, in.Unit)
	}
	return nil
}

// AddItem creates a new inventory item and returns its ID.
func (s *InventoryService) AddItem(input InventoryItemInput) (uint, error) {
	if err := input.validate(); err != nil {
		return 0, err
	}
	unit := input.Unit
	if unit == "" {
		unit = models.UnitPcs
	}
	item := models.InventoryItem{
		SKU:              input.SKU,
		Name:             input.Name,
		Category:         input.Category,
		Unit:             unit,
		Stock:            input.Stock,
		ReorderThreshold: input.ReorderThreshold,
		CostPrice:        input.CostPrice,
		SellingPrice:     input.SellingPrice,
		Notes:            input.Notes,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return 0, err
	}
	return item.ID, nil
}

// UpdateItem replaces the descriptive fields of an item. Stock is NOT
// updated here; use AdjustStock.
func (s *InventoryService) UpdateItem(id uint, input InventoryItemInput) error {
	if err := input.validate(); err != nil {
		return err
	}
	var item models.InventoryItem
	if err := s.db.First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: inventory item %d", ErrNotFound, id)
		}
		return err
	}

	updates := map[string]interface{}{
		"sku":               input.SKU,
		"name":              input.Name,
		"category":          input.Category,
		"reorder_threshold": input.ReorderThreshold,
		"cost_price":        input.CostPrice,
		"selling_price":     input.SellingPrice,
		"notes":             input.Notes,
	}
	if input.Unit != "" {
		updates["unit"] = input.Unit
	}
	return s.db.Model(&item).Updates(updates).Error
}

// DeleteItem removes an inventory item.
func (s *InventoryService) DeleteItem(id uint) error {
	var item models.InventoryItem
	if err := s.db.First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: inventory item %d", ErrNotFound, id)
		}
		return err
	}
	return s.db.Delete(&item).Error
}

// GetItem loads one inventory item.
func (s *InventoryService) GetItem(id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: inventory item %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &item, nil
}

// ListItems returns all inventory items ordered by SKU.
func (s *InventoryService) ListItems() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.Order("sku ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AdjustStock applies a signed delta to an item's stock and appends the
// adjustment row, both in one transaction. The delta's magnitude must be
// positive; its sign is the caller's responsibility (receive is
// positive, usage/spoilage/adjustment negative). Stock is not clamped:
// it may go negative, which then surfaces as "out" until an admin
// reconciles the count.
func (s *InventoryService) AdjustStock(id uint, delta decimal.Decimal, reason models.AdjustmentReason, note *string) (*models.InventoryItem, error) {
	if delta.IsZero() {
		return nil, fmt.Errorf("%w: adjustment amount must be greater than zero", ErrInvalidAmount)
	}
	if !reason.Valid() {
		return nil, fmt.Errorf("%w: unknown adjustment reason %q", ErrInvalidInput, reason)
	}

	var item models.InventoryItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: inventory item %d", ErrNotFound, id)
			}
			return err
		}

		item.Stock = item.Stock.Add(delta)
		if err := tx.Model(&item).Update("stock", item.Stock).Error; err != nil {
			return err
		}

		adjustment := models.StockAdjustment{
			InventoryItemID: item.ID,
			Delta:           delta,
			Reason:          reason,
			Note:            note,
		}
		return tx.Create(&adjustment).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListAdjustments returns an item's adjustment history, newest first.
func (s *InventoryService) ListAdjustments(itemID uint) ([]models.StockAdjustment, error) {
	var adjustments []models.StockAdjustment
	err := s.db.Where("inventory_item_id = ?", itemID).
		Order("created_at DESC").
		Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

// ImportResult reports the outcome of a best-effort CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportItems upserts parsed CSV rows by SKU: an existing SKU is
// updated in place, a new one is created. The skipped count from the
// parse stage is passed through so the caller can surface it.
func (s *InventoryService) ImportItems(rows []models.InventoryItem, skipped int) (*ImportResult, error) {
	result := &ImportResult{Skipped: skipped}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			var existing models.InventoryItem
			err := tx.Where("sku = ?", row.SKU).First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				item := row
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
				result.Imported++
				continue
			}
			if err != nil {
				return err
			}

			updates := map[string]interface{}{
				"name":              row.Name,
				"category":          row.Category,
				"unit":              row.Unit,
				"stock":             row.Stock,
				"reorder_threshold": row.ReorderThreshold,
				"cost_price":        row.CostPrice,
				"selling_price":     row.SellingPrice,
				"notes":             row.Notes,
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

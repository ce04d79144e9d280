package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Unit is the measurement unit of an inventory item.
type Unit string

const (
	UnitPcs  Unit = "pcs"
	UnitKg   Unit = "kg"
	UnitG    Unit = "g"
	UnitL    Unit = "l"
	UnitMl   Unit = "ml"
	UnitPack Unit = "pack"
)

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitPcs, UnitKg, UnitG, UnitL, UnitMl, UnitPack:
		return true
	}
	return false
}

// StockStatus is the derived stock level classification.
type StockStatus string

const (
	StockStatusInStock StockStatus = "in-stock"
	StockStatusLow     StockStatus = "low"
	StockStatusOut     StockStatus = "out"
)

// AdjustmentReason classifies a stock movement.
type AdjustmentReason string

const (
	ReasonReceive    AdjustmentReason = "receive"
	ReasonUsage      AdjustmentReason = "usage"
	ReasonSpoilage   AdjustmentReason = "spoilage"
	ReasonAdjustment AdjustmentReason = "adjustment"
)

// Valid reports whether r is a known adjustment reason.
func (r AdjustmentReason) Valid() bool {
	switch r {
	case ReasonReceive, ReasonUsage, ReasonSpoilage, ReasonAdjustment:
		return true
	}
	return false
}

// InventoryItem represents a stocked ingredient or supply
type InventoryItem struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	SKU              string           `gorm:"uniqueIndex;not null" json:"sku"`
	Name             string           `gorm:"not null" json:"name"`
	Category         string           `gorm:"index" json:"category"`
	Unit             Unit             `gorm:"not null;default:'pcs'" json:"unit"`
	Stock            decimal.Decimal  `gorm:"type:decimal(12,3);not null" json:"stock"`
	ReorderThreshold decimal.Decimal  `gorm:"type:decimal(12,3);not null" json:"reorder_threshold"`
	CostPrice        *decimal.Decimal `gorm:"type:decimal(10,2)" json:"cost_price,omitempty"`
	SellingPrice     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"selling_price,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

// TableName specifies the table name for the InventoryItem model
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// Status derives the stock classification from current stock vs the
// reorder threshold. Stock exactly at the threshold is low, not in-stock.
func (i *InventoryItem) Status() StockStatus {
	if i.Stock.Sign() <= 0 {
		return StockStatusOut
	}
	if i.Stock.LessThanOrEqual(i.ReorderThreshold) {
		return StockStatusLow
	}
	return StockStatusInStock
}

// StockAdjustment is one signed stock movement. Rows are append-only;
// the current stock of an item is only ever changed through these.
type StockAdjustment struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	InventoryItemID uint             `gorm:"not null;index" json:"inventory_item_id"`
	Delta           decimal.Decimal  `gorm:"type:decimal(12,3);not null" json:"delta"`
	Reason          AdjustmentReason `gorm:"not null" json:"reason"`
	Note            *string          `json:"note,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// TableName specifies the table name for the StockAdjustment model
func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}

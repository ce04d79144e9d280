package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomizationOption is a priced modifier offered on a menu item
// (e.g. "Extra Cheese, +10").
type CustomizationOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CustomizationOptionList stores the offered options as a JSON column.
type CustomizationOptionList []CustomizationOption

// Value implements driver.Valuer so GORM can persist the list as JSON.
func (l CustomizationOptionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customization options: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading the JSON column back.
func (l *CustomizationOptionList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for customization options: %T", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

// MenuItem represents a sellable item on the kiosk menu
type MenuItem struct {
	ID                   uint                    `gorm:"primaryKey" json:"id"`
	Name                 string                  `gorm:"not null" json:"name"`
	Description          string                  `json:"description"`
	Price                decimal.Decimal         `gorm:"type:decimal(10,2);not null" json:"price"`
	Category             string                  `gorm:"index" json:"category"`
	Available            bool                    `gorm:"not null;default:true" json:"available"`
	CustomizationOptions CustomizationOptionList `gorm:"type:text" json:"customization_options"`
	Quantity             *int                    `json:"quantity,omitempty"` // nil means unlimited stock
	PhotoS3Key           *string                 `json:"photo_s3_key,omitempty"`
	PhotoURL             *string                 `gorm:"-" json:"photo_url,omitempty"` // computed, presigned URL
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
	DeletedAt            gorm.DeletedAt          `gorm:"index" json:"-"`
}

// TableName specifies the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}

// InStock reports whether the item has stock left. A nil Quantity means
// the item is not stock-tracked and is always in stock.
func (m *MenuItem) InStock() bool {
	return m.Quantity == nil || *m.Quantity > 0
}

// Orderable reports whether the kiosk may offer the item: it must be
// marked available AND have stock. Quantity <= 0 forces unavailable
// regardless of the Available flag.
func (m *MenuItem) Orderable() bool {
	return m.Available && m.InStock()
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order on the kitchen board.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
)

// orderTransitions is the set of legal status edges. The only backward
// edge is ready -> preparing, the kitchen correction path.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPreparing},
	OrderStatusPreparing: {OrderStatusReady},
	OrderStatusReady:     {OrderStatusCompleted, OrderStatusPreparing},
	OrderStatusCompleted: {},
}

// Valid reports whether s is one of the four known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> next is in the
// transition table.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Customization is a priced modifier applied to one order line. A record
// that could not be decoded keeps its literal payload in RawLabel with a
// zero price instead of failing the order.
type Customization struct {
	Name     string          `json:"name,omitempty"`
	Price    decimal.Decimal `json:"price"`
	RawLabel string          `json:"raw_label,omitempty"`
}

// Label returns the display text for the customization.
func (c Customization) Label() string {
	if c.RawLabel != "" {
		return c.RawLabel
	}
	return c.Name
}

// CustomizationList is the ordered sequence of customizations on an
// order line. It is stored as a JSON array whose elements are either
// {"name","price"} objects or bare strings; decoding happens once here
// at the storage boundary so renderers never re-parse the payload.
type CustomizationList []Customization

// Value implements driver.Valuer.
func (l CustomizationList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	out := make([]interface{}, 0, len(l))
	for _, c := range l {
		if c.RawLabel != "" {
			out = append(out, c.RawLabel)
			continue
		}
		out = append(out, map[string]interface{}{"name": c.Name, "price": c.Price})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customizations: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Malformed elements degrade to zero-price
// raw labels rather than erroring the whole row.
func (l *CustomizationList) Scan(value interface{}) error {
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
		return fmt.Errorf("unsupported type for customizations: %T", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not a JSON array at all; keep the payload as one raw label.
		*l = CustomizationList{{RawLabel: string(data)}}
		return nil
	}

	list := make(CustomizationList, 0, len(raw))
	for _, el := range raw {
		list = append(list, DecodeCustomization(string(el)))
	}
	*l = list
	return nil
}

// DecodeCustomization parses one serialized customization record. It
// accepts a {"name","price"} object or a JSON string; any other payload
// degrades to a zero-price raw label.
func DecodeCustomization(payload string) Customization {
	var obj struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal([]byte(payload), &obj); err == nil && obj.Name != "" {
		return Customization{Name: obj.Name, Price: obj.Price}
	}

	var s string
	if err := json.Unmarshal([]byte(payload), &s); err == nil {
		return Customization{RawLabel: s}
	}
	return Customization{RawLabel: payload}
}

// OrderItem is one line of an order. Name and unit price are snapshots
// taken at creation time, not live references to the menu item, so later
// menu edits never change what was sold.
type OrderItem struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	OrderID        uint              `gorm:"not null;index" json:"order_id"`
	MenuItemID     uint              `gorm:"not null" json:"menu_item_id"`
	MenuItemName   string            `gorm:"not null" json:"menu_item_name"`
	UnitPrice      decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity       int               `gorm:"not null;check:quantity > 0" json:"quantity"`
	Customizations CustomizationList `gorm:"type:text" json:"customizations"`
	Notes          *string           `json:"notes,omitempty"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is unitPrice*qty plus every customization price times qty.
func (i *OrderItem) LineTotal() decimal.Decimal {
	qty := decimal.NewFromInt(int64(i.Quantity))
	total := i.UnitPrice.Mul(qty)
	for _, c := range i.Customizations {
		total = total.Add(c.Price.Mul(qty))
	}
	return total
}

// Order represents a placed kiosk order
type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderNumber  int             `gorm:"uniqueIndex;not null" json:"order_number"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status       OrderStatus     `gorm:"not null;default:'pending';index" json:"status"`
	CustomerName *string         `json:"customer_name,omitempty"`
	Terminal     string          `gorm:"not null" json:"terminal"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderCounter is the single-row sequence behind order numbering. The
// next number is reserved with a conditional UPDATE inside the creating
// transaction, so two terminals can never read the same value.
type OrderCounter struct {
	Name  string `gorm:"primaryKey"`
	Value int64  `gorm:"not null"`
}

// TableName specifies the table name for the OrderCounter model
func (OrderCounter) TableName() string {
	return "order_counters"
}

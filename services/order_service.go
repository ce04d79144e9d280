package services

import (
	"fmt"
	"time"

	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// orderNumberCounter names the single sequence row behind order numbers.
const orderNumberCounter = "order_number"

// OrderService owns the order lifecycle: creation with snapshot pricing,
// status transitions, and the queue read paths.
type OrderService struct {
	db *gorm.DB
}

var orderServiceInstance *OrderService

// InitOrderService initializes the order service with a database handle
func InitOrderService(db *gorm.DB) *OrderService {
	orderServiceInstance = &OrderService{db: db}
	return orderServiceInstance
}

// GetOrderService returns the initialized order service instance
func GetOrderService() *OrderService {
	return orderServiceInstance
}

// CreateOrderItemInput is one requested line of a new order. The
// customizations arrive as serialized records from the kiosk and are
// decoded defensively.
type CreateOrderItemInput struct {
	MenuItemID     uint     `json:"menu_item_id" binding:"required"`
	Quantity       int      `json:"quantity" binding:"required,gt=0"`
	Customizations []string `json:"customizations"`
	Notes          *string  `json:"notes,omitempty"`
}

// CreateOrderInput is the payload for creating an order from a kiosk.
type CreateOrderInput struct {
	Items        []CreateOrderItemInput `json:"items" binding:"required"`
	CustomerName *string                `json:"customer_name,omitempty"`
	Terminal     string                 `json:"terminal" binding:"required"`
}

// CreateOrder places a new order. Item names and unit prices are
// snapshotted from the menu at this moment; the stored total is never
// recomputed from live menu prices afterwards. The order number is
// reserved with a conditional increment on the counter row inside the
// same transaction, so concurrent terminals get distinct numbers.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	if input.Terminal == "" {
		return nil, fmt.Errorf("%w: terminal is required", ErrInvalidInput)
	}

	var created models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))

		for _, in := range input.Items {
			if in.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidInput)
			}

			var menuItem models.MenuItem
			if err := tx.First(&menuItem, in.MenuItemID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("%w: menu item %d", ErrNotFound, in.MenuItemID)
				}
				return err
			}
			if !menuItem.Orderable() {
				return fmt.Errorf("%w: %q is not available", ErrConflict, menuItem.Name)
			}

			// Decrement tracked stock inside the same transaction.
			if menuItem.Quantity != nil {
				if *menuItem.Quantity < in.Quantity {
					return fmt.Errorf("%w: insufficient stock for %q", ErrConflict, menuItem.Name)
				}
				remaining := *menuItem.Quantity - in.Quantity
				if err := tx.Model(&menuItem).Update("quantity", remaining).Error; err != nil {
					return err
				}
			}

			customizations := make(models.CustomizationList, 0, len(in.Customizations))
			for _, payload := range in.Customizations {
				customizations = append(customizations, models.DecodeCustomization(payload))
			}

			item := models.OrderItem{
				MenuItemID:     menuItem.ID,
				MenuItemName:   menuItem.Name,
				UnitPrice:      menuItem.Price,
				Quantity:       in.Quantity,
				Customizations: customizations,
				Notes:          in.Notes,
			}
			total = total.Add(item.LineTotal())
			items = append(items, item)
		}

		number, err := s.nextOrderNumber(tx)
		if err != nil {
			return err
		}

		created = models.Order{
			OrderNumber:  number,
			Items:        items,
			Total:        total,
			Status:       models.OrderStatusPending,
			CustomerName: input.CustomerName,
			Terminal:     input.Terminal,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// nextOrderNumber reserves the next order number. The conditional UPDATE
// takes a row lock on the counter, so two concurrent creations serialize
// here instead of both reading the same max.
func (s *OrderService) nextOrderNumber(tx *gorm.DB) (int, error) {
	res := tx.Model(&models.OrderCounter{}).
		Where("name = ?", orderNumberCounter).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		counter := models.OrderCounter{Name: orderNumberCounter, Value: 1}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var counter models.OrderCounter
	if err := tx.Where("name = ?", orderNumberCounter).First(&counter).Error; err != nil {
		return 0, err
	}
	return int(counter.Value), nil
}

// UpdateStatus moves an order along the status state machine. Illegal
// edges are rejected with ErrInvalidTransition; reaching completed
// stamps CompletedAt.
func (s *OrderService) UpdateStatus(orderID uint, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, next)
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
		}

		updates := map[string]interface{}{"status": next}
		if next == models.OrderStatusCompleted {
			now := time.Now()
			updates["completed_at"] = &now
			order.CompletedAt = &now
		}
		order.Status = next
		return tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrder removes an order and its items. Deletion is allowed from
// any status; it is admin-only and irreversible.
func (s *OrderService) DeleteOrder(orderID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}

// GetOrder loads one order with its items.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *OrderService) ListOrders(status *models.OrderStatus) ([]models.Order, error) {
	q := s.db.Preload("Items").Order("created_at DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ActiveOrders returns every order that is not yet completed, oldest
// first, for the kitchen and queue boards.
func (s *OrderService) ActiveOrders() ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("status IN ?", []models.OrderStatus{
			models.OrderStatusPending,
			models.OrderStatusPreparing,
			models.OrderStatusReady,
		}).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// PendingQueue returns pending orders ordered by creation time
// ascending; an order's index here drives its estimated wait.
func (s *OrderService) PendingQueue() ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("status = ?", models.OrderStatusPending).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

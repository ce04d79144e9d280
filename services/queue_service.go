package services

import (
	"time"

	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/shopspring/decimal"
)

// Estimated wait parameters: a flat base plus a per-order increment for
// every order ahead in the pending queue. Presentational only, never
// persisted.
const (
	BaseWaitMinutes     = 10
	PerOrderWaitMinutes = 5
)

// EstimatedWaitMinutes returns the wait estimate for an order at the
// given zero-based position in the pending queue.
func EstimatedWaitMinutes(position int) int {
	return BaseWaitMinutes + position*PerOrderWaitMinutes
}

// TicketLine is one display line on a kitchen ticket.
type TicketLine struct {
	MenuItemName   string          `json:"menu_item_name"`
	Quantity       int             `json:"quantity"`
	Customizations []string        `json:"customizations,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	LinePrice      decimal.Decimal `json:"line_price"`
}

// Ticket is the kitchen-board projection of one order.
type Ticket struct {
	OrderID      uint               `json:"order_id"`
	OrderNumber  int                `json:"order_number"`
	CustomerName *string            `json:"customer_name,omitempty"`
	Terminal     string             `json:"terminal"`
	Status       models.OrderStatus `json:"status"`
	Lines        []TicketLine       `json:"lines"`
	Total        decimal.Decimal    `json:"total"`
	CreatedAt    time.Time          `json:"created_at"`
}

// KitchenBoard partitions the active order set by status.
type KitchenBoard struct {
	Pending   []Ticket `json:"pending"`
	Preparing []Ticket `json:"preparing"`
	Ready     []Ticket `json:"ready"`
}

// QueueEntry is the customer-facing projection of one order.
type QueueEntry struct {
	OrderNumber          int                `json:"order_number"`
	CustomerName         *string            `json:"customer_name,omitempty"`
	Status               models.OrderStatus `json:"status"`
	EstimatedWaitMinutes *int               `json:"estimated_wait_minutes,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
}

// BuildTicket projects one order onto a kitchen ticket. The display
// price per line is recomputed from the snapshot unit price and the
// decoded customizations; a raw-label customization contributes its
// label at zero cost.
func BuildTicket(order models.Order) Ticket {
	lines := make([]TicketLine, 0, len(order.Items))
	for _, item := range order.Items {
		labels := make([]string, 0, len(item.Customizations))
		for _, c := range item.Customizations {
			labels = append(labels, c.Label())
		}
		lines = append(lines, TicketLine{
			MenuItemName:   item.MenuItemName,
			Quantity:       item.Quantity,
			Customizations: labels,
			Notes:          item.Notes,
			LinePrice:      item.LineTotal(),
		})
	}
	return Ticket{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		Terminal:     order.Terminal,
		Status:       order.Status,
		Lines:        lines,
		Total:        order.Total,
		CreatedAt:    order.CreatedAt,
	}
}

// BuildKitchenBoard buckets active orders into the three kitchen
// columns. Pure projection: it issues no writes and is recomputed on
// every poll.
func BuildKitchenBoard(orders []models.Order) KitchenBoard {
	board := KitchenBoard{
		Pending:   []Ticket{},
		Preparing: []Ticket{},
		Ready:     []Ticket{},
	}
	for _, order := range orders {
		ticket := BuildTicket(order)
		switch order.Status {
		case models.OrderStatusPending:
			board.Pending = append(board.Pending, ticket)
		case models.OrderStatusPreparing:
			board.Preparing = append(board.Preparing, ticket)
		case models.OrderStatusReady:
			board.Ready = append(board.Ready, ticket)
		}
	}
	return board
}

// BuildQueue projects active orders onto the customer queue board.
// Orders must arrive sorted by creation time ascending; the wait
// estimate is derived from each pending order's position among pending
// orders only.
func BuildQueue(orders []models.Order) []QueueEntry {
	entries := make([]QueueEntry, 0, len(orders))
	pendingPos := 0
	for _, order := range orders {
		entry := QueueEntry{
			OrderNumber:  order.OrderNumber,
			CustomerName: order.CustomerName,
			Status:       order.Status,
			CreatedAt:    order.CreatedAt,
		}
		if order.Status == models.OrderStatusPending {
			wait := EstimatedWaitMinutes(pendingPos)
			entry.EstimatedWaitMinutes = &wait
			pendingPos++
		}
		entries = append(entries, entry)
	}
	return entries
}

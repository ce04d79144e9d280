package services

import (
	"testing"

	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEstimatedWaitMinutes(t *testing.T) {
	tests := []struct {
		position int
		expected int
	}{
		{0, 10},
		{1, 15},
		{2, 20},
		{5, 35},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, EstimatedWaitMinutes(tt.position),
			"position %d", tt.position)
	}
}

func TestBuildTicket(t *testing.T) {
	notes := "extra napkins"
	order := models.Order{
		ID:          7,
		OrderNumber: 42,
		Terminal:    "kiosk-1",
		Status:      models.OrderStatusPreparing,
		Total:       decimal.NewFromInt(120),
		Items: []models.OrderItem{
			{
				MenuItemName: "Burger",
				UnitPrice:    decimal.NewFromInt(50),
				Quantity:     2,
				Notes:        &notes,
				Customizations: models.CustomizationList{
					{Name: "Extra Cheese", Price: decimal.NewFromInt(10)},
					{RawLabel: "No onions"},
				},
			},
		},
	}

	ticket := BuildTicket(order)
	assert.Equal(t, 42, ticket.OrderNumber)
	assert.Equal(t, models.OrderStatusPreparing, ticket.Status)
	assert.Len(t, ticket.Lines, 1)
	assert.Equal(t, []string{"Extra Cheese", "No onions"}, ticket.Lines[0].Customizations)
	assert.True(t, decimal.NewFromInt(120).Equal(ticket.Lines[0].LinePrice))
}

func TestBuildKitchenBoardBuckets(t *testing.T) {
	orders := []models.Order{
		{OrderNumber: 1, Status: models.OrderStatusPending},
		{OrderNumber: 2, Status: models.OrderStatusPreparing},
		{OrderNumber: 3, Status: models.OrderStatusReady},
		{OrderNumber: 4, Status: models.OrderStatusPending},
	}

	board := BuildKitchenBoard(orders)
	assert.Len(t, board.Pending, 2)
	assert.Len(t, board.Preparing, 1)
	assert.Len(t, board.Ready, 1)
	assert.Equal(t, 1, board.Pending[0].OrderNumber)
	assert.Equal(t, 4, board.Pending[1].OrderNumber)
}

func TestBuildQueueWaitOnlyForPending(t *testing.T) {
	orders := []models.Order{
		{OrderNumber: 1, Status: models.OrderStatusPreparing},
		{OrderNumber: 2, Status: models.OrderStatusPending},
		{OrderNumber: 3, Status: models.OrderStatusReady},
		{OrderNumber: 4, Status: models.OrderStatusPending},
	}

	entries := BuildQueue(orders)
	assert.Len(t, entries, 4)

	// Non-pending orders carry no estimate.
	assert.Nil(t, entries[0].EstimatedWaitMinutes)
	assert.Nil(t, entries[2].EstimatedWaitMinutes)

	// Pending waits count position among pending orders only.
	assert.NotNil(t, entries[1].EstimatedWaitMinutes)
	assert.Equal(t, 10, *entries[1].EstimatedWaitMinutes)
	assert.NotNil(t, entries[3].EstimatedWaitMinutes)
	assert.Equal(t, 15, *entries[3].EstimatedWaitMinutes)
}

func TestBuildQueueEmpty(t *testing.T) {
	entries := BuildQueue(nil)
	assert.NotNil(t, entries)
	assert.Len(t, entries, 0)
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMenuItemTableName(t *testing.T) {
	item := MenuItem{}
	assert.Equal(t, "menu_items", item.TableName(), "Table name should be 'menu_items'")
}

func TestMenuItemOrderable(t *testing.T) {
	qty := func(n int) *int { return &n }

	tests := []struct {
		name      string
		available bool
		quantity  *int
		orderable bool
	}{
		{"available with untracked stock", true, nil, true},
		{"available with positive stock", true, qty(3), true},
		{"available but sold out", true, qty(0), false},
		{"available with negative stock", true, qty(-1), false},
		{"unavailable with stock", false, qty(3), false},
		{"unavailable and untracked", false, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := MenuItem{Available: tt.available, Quantity: tt.quantity}
			assert.Equal(t, tt.orderable, item.Orderable())
		})
	}
}

func TestCustomizationOptionListRoundTrip(t *testing.T) {
	list := CustomizationOptionList{
		{Name: "Extra Cheese"},
		{Name: "Large"},
	}

	value, err := list.Value()
	assert.NoError(t, err)

	var decoded CustomizationOptionList
	err = decoded.Scan(value)
	assert.NoError(t, err)
	assert.Len(t, decoded, 2)
	assert.Equal(t, "Extra Cheese", decoded[0].Name)
}

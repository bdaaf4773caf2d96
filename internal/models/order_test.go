package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidOrderStatus(t *testing.T) {
	for _, status := range []string{"pending", "confirmed", "shipped", "delivered", "cancelled"} {
		assert.True(t, IsValidOrderStatus(status), status)
	}
	for _, status := range []string{"", "paid", "Pending", "done"} {
		assert.False(t, IsValidOrderStatus(status), status)
	}
}

func TestOrderIsTerminal(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusDelivered}).IsTerminal())
	assert.True(t, (&Order{Status: OrderStatusCancelled}).IsTerminal())
	assert.False(t, (&Order{Status: OrderStatusPending}).IsTerminal())
	assert.False(t, (&Order{Status: OrderStatusConfirmed}).IsTerminal())
	assert.False(t, (&Order{Status: OrderStatusShipped}).IsTerminal())
}

func TestOrderCanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		to     string
		result bool
	}{
		{"pending到confirmed", OrderStatusPending, OrderStatusConfirmed, true},
		{"pending直接到shipped", OrderStatusPending, OrderStatusShipped, true},
		{"pending取消", OrderStatusPending, OrderStatusCancelled, true},
		{"confirmed到shipped", OrderStatusConfirmed, OrderStatusShipped, true},
		{"shipped到delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"shipped取消", OrderStatusShipped, OrderStatusCancelled, true},
		{"confirmed回pending", OrderStatusConfirmed, OrderStatusPending, true},

		{"同状态拒绝", OrderStatusPending, OrderStatusPending, false},
		{"delivered是终态", OrderStatusDelivered, OrderStatusPending, false},
		{"delivered不能取消", OrderStatusDelivered, OrderStatusCancelled, false},
		{"cancelled是终态", OrderStatusCancelled, OrderStatusPending, false},
		{"cancelled不能复活", OrderStatusCancelled, OrderStatusConfirmed, false},
		{"目标状态不合法", OrderStatusPending, "paid", false},
		{"目标状态为空", OrderStatusPending, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Status: tt.from}
			assert.Equal(t, tt.result, order.CanTransitionTo(tt.to))
		})
	}
}

package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, CanTransitionOrderStatus(OrderStatusPending, OrderStatusPaid))
	assert.True(t, CanTransitionOrderStatus(OrderStatusPending, OrderStatusCancelled))
	assert.True(t, CanTransitionOrderStatus(OrderStatusPaid, OrderStatusProcessing))
	assert.True(t, CanTransitionOrderStatus(OrderStatusProcessing, OrderStatusShipped))
	assert.True(t, CanTransitionOrderStatus(OrderStatusShipped, OrderStatusDelivered))

	// shipped orders cannot be cancelled
	assert.False(t, CanTransitionOrderStatus(OrderStatusShipped, OrderStatusCancelled))
	// no skipping straight to delivered
	assert.False(t, CanTransitionOrderStatus(OrderStatusPending, OrderStatusDelivered))
	// no reversing
	assert.False(t, CanTransitionOrderStatus(OrderStatusPaid, OrderStatusPending))
	// terminal states go nowhere
	assert.False(t, CanTransitionOrderStatus(OrderStatusDelivered, OrderStatusShipped))
	assert.False(t, CanTransitionOrderStatus(OrderStatusCancelled, OrderStatusPending))
}

func TestValidateOrderStatusTransition(t *testing.T) {
	assert.NoError(t, ValidateOrderStatusTransition(OrderStatusPending, OrderStatusPaid))

	err := ValidateOrderStatusTransition(OrderStatusDelivered, OrderStatusCancelled)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status transition")
}

func TestIsTerminalOrderStatus(t *testing.T) {
	assert.True(t, IsTerminalOrderStatus(OrderStatusDelivered))
	assert.True(t, IsTerminalOrderStatus(OrderStatusCancelled))
	assert.False(t, IsTerminalOrderStatus(OrderStatusPending))
	assert.False(t, IsTerminalOrderStatus(OrderStatusShipped))
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 30, 0, 0, time.UTC)
	number := GenerateOrderNumber(now)

	assert.Regexp(t, regexp.MustCompile(`^SF-20260307-\d{6}$`), number)
}

package models

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ValidOrderTransitions defines valid state transitions for OrderStatus.
// Flow: PENDING → PAID → PROCESSING → SHIPPED → DELIVERED.
// Orders are cancellable up until they ship.
var ValidOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransitionOrderStatus checks if a transition between order statuses is valid
func CanTransitionOrderStatus(from, to OrderStatus) bool {
	for _, validTo := range ValidOrderTransitions[from] {
		if validTo == to {
			return true
		}
	}
	return false
}

// ValidateOrderStatusTransition returns an error if the transition is invalid
func ValidateOrderStatusTransition(from, to OrderStatus) error {
	if !CanTransitionOrderStatus(from, to) {
		return fmt.Errorf("invalid order status transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminalOrderStatus checks if the order status is a terminal state
func IsTerminalOrderStatus(status OrderStatus) bool {
	return len(ValidOrderTransitions[status]) == 0
}

// DisplayName returns a human-readable name for the order status
func (s OrderStatus) DisplayName() string {
	switch s {
	case OrderStatusPending:
		return "Awaiting Payment"
	case OrderStatusPaid:
		return "Paid"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Order represents a customer order
type Order struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderNumber     string           `json:"orderNumber" gorm:"not null;uniqueIndex"`
	Status          OrderStatus      `json:"status" gorm:"not null;default:'PENDING';index"`
	CustomerName    string           `json:"customerName" gorm:"not null"`
	CustomerEmail   string           `json:"customerEmail" gorm:"not null;index"`
	CustomerPhone   *string          `json:"customerPhone,omitempty"`
	ShippingAddress string           `json:"shippingAddress" gorm:"not null"`
	ShippingCity    string           `json:"shippingCity" gorm:"not null"`
	ShippingZip     *string          `json:"shippingZip,omitempty"`
	Subtotal        decimal.Decimal  `json:"subtotal" gorm:"type:numeric(15,2);not null"`
	DiscountAmount  decimal.Decimal  `json:"discountAmount" gorm:"type:numeric(15,2);not null;default:0"`
	ShippingFee     decimal.Decimal  `json:"shippingFee" gorm:"type:numeric(15,2);not null;default:0"`
	Total           decimal.Decimal  `json:"total" gorm:"type:numeric(15,2);not null"`
	VoucherCode     *string          `json:"voucherCode,omitempty"`
	TrackingNumber  *string          `json:"trackingNumber,omitempty"`
	GineeOrderID    *string          `json:"gineeOrderId,omitempty" gorm:"index"`
	Notes           *string          `json:"notes,omitempty"`
	PaidAt          *time.Time       `json:"paidAt,omitempty"`
	ShippedAt       *time.Time       `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time       `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time       `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	DeletedAt       *gorm.DeletedAt  `json:"deletedAt,omitempty" gorm:"index"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns an order number when none is set
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber == "" {
		o.OrderNumber = GenerateOrderNumber(time.Now())
	}
	return nil
}

// GenerateOrderNumber builds an order number of the form SF-YYYYMMDD-XXXXXX
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("SF-%s-%06d", now.Format("20060102"), rand.Intn(1000000))
}

// OrderItem represents one line of an order. Product name, SKU and unit
// price are denormalized at checkout time so later catalog edits do not
// rewrite order history.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `json:"productId" gorm:"type:uuid;not null;index"`
	SKU       string          `json:"sku" gorm:"not null"`
	Name      string          `json:"name" gorm:"not null"`
	Size      *string         `json:"size,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:numeric(15,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	LineTotal decimal.Decimal `json:"lineTotal" gorm:"type:numeric(15,2);not null"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// CheckoutRequest represents a storefront checkout submission
type CheckoutRequest struct {
	CartID          uuid.UUID `json:"cartId" binding:"required"`
	CustomerName    string    `json:"customerName" binding:"required"`
	CustomerEmail   string    `json:"customerEmail" binding:"required,email"`
	CustomerPhone   *string   `json:"customerPhone,omitempty"`
	ShippingAddress string    `json:"shippingAddress" binding:"required"`
	ShippingCity    string    `json:"shippingCity" binding:"required"`
	ShippingZip     *string   `json:"shippingZip,omitempty"`
	VoucherCode     *string   `json:"voucherCode,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

// UpdateOrderStatusRequest represents an admin status change
type UpdateOrderStatusRequest struct {
	Status         OrderStatus `json:"status" binding:"required"`
	TrackingNumber *string     `json:"trackingNumber,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
}

// TrackOrderRequest represents a public order-tracking lookup
type TrackOrderRequest struct {
	OrderNumber string `json:"orderNumber" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
}

// OrderFilters represents admin order listing filters
type OrderFilters struct {
	Status        *OrderStatus `form:"status"`
	CustomerEmail *string      `form:"email"`
	DateFrom      *time.Time   `form:"date_from" time_format:"2006-01-02"`
	DateTo        *time.Time   `form:"date_to" time_format:"2006-01-02"`
	Page          int          `form:"page"`
	Limit         int          `form:"limit"`
}

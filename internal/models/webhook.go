package models

import (
	"time"

	"github.com/google/uuid"
)

// GineeEventType identifies the kind of Ginee webhook event
type GineeEventType string

const (
	GineeEventStockUpdated   GineeEventType = "MASTER_PRODUCT_STOCK_UPDATED"
	GineeEventProductUpdated GineeEventType = "MASTER_PRODUCT_UPDATED"
	GineeEventOrderCreated   GineeEventType = "ORDER_CREATED"
	GineeEventOrderUpdated   GineeEventType = "ORDER_STATUS_UPDATED"
)

// GineeWebhookEvent persists an incoming Ginee webhook for idempotent
// processing. EventID comes from the payload and doubles as the
// idempotency key: a replayed delivery is acknowledged without reprocessing.
type GineeWebhookEvent struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventID     string         `json:"eventId" gorm:"not null;uniqueIndex"`
	EventType   GineeEventType `json:"eventType" gorm:"not null;index"`
	Payload     JSON           `json:"payload" gorm:"type:jsonb"`
	Processed   bool           `json:"processed" gorm:"not null;default:false"`
	ProcessedAt *time.Time     `json:"processedAt,omitempty"`
	LastError   *string        `json:"lastError,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (GineeWebhookEvent) TableName() string {
	return "ginee_webhook_events"
}

// GineeWebhookPayload is the envelope Ginee posts to the webhook endpoint
type GineeWebhookPayload struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Timestamp int64  `json:"timestamp"`
	Data      JSON   `json:"data"`
}

// GineeStockData is the data block of a stock-updated event
type GineeStockData struct {
	SKU            string `json:"masterSku"`
	WarehouseStock int    `json:"warehouseStock"`
	GineeProductID string `json:"productId"`
}

// GineeOrderData is the data block of an order event
type GineeOrderData struct {
	GineeOrderID string `json:"orderId"`
	OrderNumber  string `json:"externalOrderNumber"`
	Status       string `json:"status"`
}

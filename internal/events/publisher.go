package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/models"
)

// Event channels on the Redis bus
const (
	ChannelOrders   = "sneakerflash.orders"
	ChannelProducts = "sneakerflash.products"
	ChannelImports  = "sneakerflash.imports"
)

// Event types
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	ProductStockSynced = "product.stock_synced"
	ImportCompleted    = "import.completed"
)

// Event is the envelope published on every channel
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Publisher fans domain events out over Redis pub/sub. Publishing is best
// effort: a failed publish is logged and never fails the operation that
// produced the event.
type Publisher struct {
	redis  *redis.Client
	logger *logrus.Entry
}

func NewPublisher(redisClient *redis.Client, logger *logrus.Logger) *Publisher {
	return &Publisher{
		redis:  redisClient,
		logger: logger.WithField("component", "events"),
	}
}

func (p *Publisher) publish(ctx context.Context, channel, eventType string, data interface{}) {
	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("type", eventType).Error("failed to encode event")
		return
	}

	if err := p.redis.Publish(ctx, channel, payload).Err(); err != nil {
		p.logger.WithError(err).WithField("type", eventType).Warn("failed to publish event")
	}
}

// PublishOrderCreated announces a newly placed order
func (p *Publisher) PublishOrderCreated(ctx context.Context, order *models.Order) {
	p.publish(ctx, ChannelOrders, OrderCreated, map[string]interface{}{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"total":       order.Total,
		"itemCount":   len(order.Items),
	})
}

// PublishOrderStatusChanged announces an order status transition
func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, from models.OrderStatus) {
	p.publish(ctx, ChannelOrders, OrderStatusChanged, map[string]interface{}{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"from":        from,
		"to":          order.Status,
	})
}

// PublishStockSynced announces a stock level pushed in from Ginee
func (p *Publisher) PublishStockSynced(ctx context.Context, sku string, quantity int) {
	p.publish(ctx, ChannelProducts, ProductStockSynced, map[string]interface{}{
		"sku":      sku,
		"quantity": quantity,
	})
}

// PublishImportCompleted announces a finished import batch
func (p *Publisher) PublishImportCompleted(ctx context.Context, result *models.ImportResult) {
	p.publish(ctx, ChannelImports, ImportCompleted, result)
}

package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sneakerflash/internal/clients/ginee"
	"sneakerflash/internal/events"
	"sneakerflash/internal/models"
	"sneakerflash/internal/repository"
)

// ErrInvalidSignature is returned when a webhook delivery fails HMAC
// verification
var ErrInvalidSignature = fmt.Errorf("invalid webhook signature")

// gineeOrderStatuses maps Ginee order statuses onto the local lifecycle
var gineeOrderStatuses = map[string]models.OrderStatus{
	"PAID":      models.OrderStatusPaid,
	"READY":     models.OrderStatusProcessing,
	"SHIPPING":  models.OrderStatusShipped,
	"SHIPPED":   models.OrderStatusShipped,
	"DELIVERED": models.OrderStatusDelivered,
	"CANCELLED": models.OrderStatusCancelled,
}

// GineeService processes marketplace webhooks pushed by Ginee. Every
// delivery is verified against the shared webhook secret and recorded
// before handling; the event ID makes replays harmless.
type GineeService struct {
	webhooks      *repository.WebhookRepository
	products      *repository.ProductsRepository
	orders        *repository.OrderRepository
	client        *ginee.Client
	publisher     *events.Publisher
	log           *logrus.Logger
	webhookSecret string
}

func NewGineeService(webhooks *repository.WebhookRepository, products *repository.ProductsRepository, orders *repository.OrderRepository, client *ginee.Client, publisher *events.Publisher, log *logrus.Logger, webhookSecret string) *GineeService {
	return &GineeService{
		webhooks:      webhooks,
		products:      products,
		orders:        orders,
		client:        client,
		publisher:     publisher,
		log:           log,
		webhookSecret: webhookSecret,
	}
}

// SyncResult summarizes one catalog sync against Ginee
type SyncResult struct {
	Fetched int `json:"fetched"`
	Matched int `json:"matched"`
	Updated int `json:"updated"`
}

const syncPageSize = 100

// SyncCatalog pulls the Ginee master catalog page by page and applies its
// stock levels to local products matched by SKU. Unknown SKUs are counted
// but left alone.
func (s *GineeService) SyncCatalog(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}

	for page := 0; ; page++ {
		batch, total, err := s.client.ListMasterProducts(ctx, page, syncPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list ginee products: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		result.Fetched += len(batch)

		for _, remote := range batch {
			if remote.MasterSKU == "" {
				continue
			}
			product, err := s.products.FindBySKU(remote.MasterSKU)
			if err != nil {
				return nil, err
			}
			if product == nil {
				continue
			}
			result.Matched++

			changed := false
			if product.GineeProductID == nil || *product.GineeProductID != remote.ProductID {
				id := remote.ProductID
				product.GineeProductID = &id
				changed = true
			}
			if product.StockQuantity != remote.WarehouseStock {
				product.StockQuantity = remote.WarehouseStock
				changed = true
			}
			if changed {
				if err := s.products.UpdateProduct(product); err != nil {
					return nil, err
				}
				result.Updated++
				s.publisher.PublishStockSynced(ctx, product.SKU, product.StockQuantity)
			}
		}

		if result.Fetched >= total {
			break
		}
	}

	s.log.WithFields(logrus.Fields{
		"fetched": result.Fetched,
		"matched": result.Matched,
		"updated": result.Updated,
	}).Info("ginee catalog sync finished")
	return result, nil
}

// PushStock reports a product's local stock level back to Ginee
func (s *GineeService) PushStock(ctx context.Context, sku string) error {
	product, err := s.products.FindBySKU(sku)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("product %s not found", sku)
	}
	return s.client.PushStock(ctx, product.SKU, product.StockQuantity)
}

// VerifySignature checks the HMAC-SHA256 signature Ginee sends with each
// delivery. Comparison is constant time.
func (s *GineeService) VerifySignature(payload []byte, signature string) error {
	if s.webhookSecret == "" {
		return fmt.Errorf("no webhook secret configured")
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}

// HandleWebhook verifies, records and dispatches one delivery. A replayed
// event ID is acknowledged without reprocessing. Handler failures are
// stored on the event for later replay but still acknowledged, so Ginee
// stops redelivering.
func (s *GineeService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := s.VerifySignature(payload, signature); err != nil {
		return err
	}

	var envelope models.GineeWebhookPayload
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("failed to decode webhook payload: %w", err)
	}
	if envelope.EventID == "" {
		return fmt.Errorf("webhook payload missing event id")
	}

	exists, err := s.webhooks.EventExists(envelope.EventID)
	if err != nil {
		return err
	}
	if exists {
		s.log.WithField("event_id", envelope.EventID).Info("duplicate webhook delivery ignored")
		return nil
	}

	event := &models.GineeWebhookEvent{
		EventID:   envelope.EventID,
		EventType: models.GineeEventType(envelope.EventType),
		Payload:   envelope.Data,
	}
	if err := s.webhooks.CreateEvent(event); err != nil {
		// A concurrent delivery of the same event can win the insert
		// between the existence check and here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.WithField("event_id", envelope.EventID).Info("duplicate webhook delivery ignored")
			return nil
		}
		return err
	}

	if err := s.processEvent(ctx, &envelope); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event_id":   envelope.EventID,
			"event_type": envelope.EventType,
		}).Error("webhook handler failed")
		if markErr := s.webhooks.MarkFailed(envelope.EventID, err); markErr != nil {
			s.log.WithError(markErr).Error("failed to record webhook failure")
		}
		return nil
	}

	return s.webhooks.MarkProcessed(envelope.EventID)
}

func (s *GineeService) processEvent(ctx context.Context, envelope *models.GineeWebhookPayload) error {
	switch models.GineeEventType(envelope.EventType) {
	case models.GineeEventStockUpdated, models.GineeEventProductUpdated:
		return s.handleStockEvent(ctx, envelope)
	case models.GineeEventOrderCreated, models.GineeEventOrderUpdated:
		return s.handleOrderEvent(ctx, envelope)
	default:
		s.log.WithField("event_type", envelope.EventType).Warn("unhandled webhook event type")
		return nil
	}
}

// handleStockEvent applies a marketplace stock level to the local catalog
func (s *GineeService) handleStockEvent(ctx context.Context, envelope *models.GineeWebhookPayload) error {
	var data models.GineeStockData
	if err := decodeEventData(envelope.Data, &data); err != nil {
		return err
	}
	if data.SKU == "" {
		return fmt.Errorf("stock event missing sku")
	}

	if err := s.products.SetStockBySKU(data.SKU, data.WarehouseStock); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"sku":      data.SKU,
		"quantity": data.WarehouseStock,
	}).Info("stock synced from ginee")
	s.publisher.PublishStockSynced(ctx, data.SKU, data.WarehouseStock)
	return nil
}

// handleOrderEvent links a Ginee order to the local order and mirrors its
// status when the transition is legal. Illegal transitions are logged and
// skipped rather than failing the delivery.
func (s *GineeService) handleOrderEvent(ctx context.Context, envelope *models.GineeWebhookPayload) error {
	var data models.GineeOrderData
	if err := decodeEventData(envelope.Data, &data); err != nil {
		return err
	}
	if data.OrderNumber == "" {
		return fmt.Errorf("order event missing order number")
	}

	order, err := s.orders.GetOrderByNumber(data.OrderNumber)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order %s not found", data.OrderNumber)
	}

	if order.GineeOrderID == nil && data.GineeOrderID != "" {
		order.GineeOrderID = &data.GineeOrderID
	}

	if target, ok := gineeOrderStatuses[strings.ToUpper(data.Status)]; ok && target != order.Status {
		if models.CanTransitionOrderStatus(order.Status, target) {
			from := order.Status
			order.Status = target
			defer s.publisher.PublishOrderStatusChanged(ctx, order, from)
		} else {
			s.log.WithFields(logrus.Fields{
				"order_number": order.OrderNumber,
				"from":         order.Status,
				"to":           target,
			}).Warn("ignoring illegal order transition from ginee")
		}
	}

	return s.orders.UpdateOrder(order)
}

func decodeEventData(data models.JSON, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode event data: %w", err)
	}
	return nil
}

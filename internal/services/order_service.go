package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/events"
	"sneakerflash/internal/models"
	"sneakerflash/internal/repository"
)

// OrderService owns checkout and the order lifecycle
type OrderService struct {
	orders      *repository.OrderRepository
	carts       *CartService
	vouchers    *VoucherService
	publisher   *events.Publisher
	log         *logrus.Logger
	shippingFee decimal.Decimal
}

func NewOrderService(orders *repository.OrderRepository, carts *CartService, vouchers *VoucherService, publisher *events.Publisher, log *logrus.Logger, shippingFee decimal.Decimal) *OrderService {
	return &OrderService{
		orders:      orders,
		carts:       carts,
		vouchers:    vouchers,
		publisher:   publisher,
		log:         log,
		shippingFee: shippingFee,
	}
}

// Checkout turns a cart into a pending order. Stock for every line and the
// voucher redemption, when one applies, are committed in one transaction;
// the cart is cleared only after the order is placed.
func (s *OrderService) Checkout(ctx context.Context, req *models.CheckoutRequest) (*models.Order, error) {
	cart, err := s.carts.GetCart(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}
	for _, line := range cart.Lines {
		if !line.InStock {
			return nil, fmt.Errorf("%s is out of stock", line.Name)
		}
	}

	subtotal := cart.Subtotal
	discount := decimal.Zero
	var usage *models.VoucherUsage

	if req.VoucherCode != nil && *req.VoucherCode != "" {
		validation, err := s.vouchers.Validate(&models.ValidateVoucherRequest{
			Code:          *req.VoucherCode,
			CustomerEmail: req.CustomerEmail,
			OrderValue:    subtotal,
		})
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, fmt.Errorf("voucher rejected: %s", *validation.Message)
		}
		discount = *validation.DiscountAmount
		usage = &models.VoucherUsage{
			VoucherID:      validation.Voucher.ID,
			CustomerEmail:  req.CustomerEmail,
			OrderValue:     subtotal,
			DiscountAmount: discount,
			UsedAt:         time.Now(),
		}
	}

	order := &models.Order{
		Status:          models.OrderStatusPending,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
		ShippingZip:     req.ShippingZip,
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		ShippingFee:     s.shippingFee,
		Total:           subtotal.Sub(discount).Add(s.shippingFee),
		VoucherCode:     req.VoucherCode,
		Notes:           req.Notes,
	}
	for _, line := range cart.Lines {
		item := models.OrderItem{
			ProductID: line.ProductID,
			SKU:       line.SKU,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		}
		if line.Size != "" {
			size := line.Size
			item.Size = &size
		}
		order.Items = append(order.Items, item)
	}

	if err := s.orders.PlaceOrder(order, usage); err != nil {
		return nil, err
	}

	if err := s.carts.ClearCart(ctx, req.CartID); err != nil {
		s.log.WithError(err).WithField("cart_id", req.CartID).Warn("failed to clear cart after checkout")
	}

	s.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"total":        order.Total,
		"items":        len(order.Items),
	}).Info("order placed")
	s.publisher.PublishOrderCreated(ctx, order)

	return order, nil
}

// UpdateStatus moves an order through its lifecycle, enforcing the
// transition table. Cancelling returns the order's stock to the catalog.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	from := order.Status
	if err := models.ValidateOrderStatusTransition(from, req.Status); err != nil {
		return nil, err
	}

	now := time.Now()
	order.Status = req.Status
	switch req.Status {
	case models.OrderStatusPaid:
		order.PaidAt = &now
	case models.OrderStatusShipped:
		order.ShippedAt = &now
		if req.TrackingNumber != nil {
			order.TrackingNumber = req.TrackingNumber
		}
	case models.OrderStatusDelivered:
		order.DeliveredAt = &now
	case models.OrderStatusCancelled:
		order.CancelledAt = &now
	}
	if req.Notes != nil {
		order.Notes = req.Notes
	}

	if err := s.orders.UpdateOrder(order); err != nil {
		return nil, err
	}

	if req.Status == models.OrderStatusCancelled {
		if err := s.orders.RestockOrderItems(order); err != nil {
			s.log.WithError(err).WithField("order_number", order.OrderNumber).Error("failed to restock cancelled order")
		}
	}

	s.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"from":         from,
		"to":           order.Status,
	}).Info("order status changed")
	s.publisher.PublishOrderStatusChanged(ctx, order, from)

	return order, nil
}

// TrackOrder is the public lookup: both the number and email must match
func (s *OrderService) TrackOrder(orderNumber, email string) (*models.Order, error) {
	return s.orders.GetOrderByNumberAndEmail(orderNumber, email)
}

// GetOrder retrieves an order for the admin panel
func (s *OrderService) GetOrder(orderID uuid.UUID) (*models.Order, error) {
	return s.orders.GetOrderByID(orderID)
}

// ListOrders retrieves a filtered admin order page
func (s *OrderService) ListOrders(filters *models.OrderFilters, page, limit int) ([]models.Order, int64, error) {
	return s.orders.GetOrderList(filters, page, limit)
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/models"
	"sneakerflash/internal/repository"
	"sneakerflash/internal/services"
)

// OrdersHandler serves storefront checkout/tracking and admin order
// management
type OrdersHandler struct {
	svc *services.OrderService
	log *logrus.Logger
}

func NewOrdersHandler(svc *services.OrderService, log *logrus.Logger) *OrdersHandler {
	return &OrdersHandler{svc: svc, log: log}
}

// Checkout places an order from a cart
// POST /api/v1/storefront/checkout
func (h *OrdersHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.svc.Checkout(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrOutOfStock) {
			respondError(c, http.StatusConflict, "OUT_OF_STOCK", err.Error())
			return
		}
		if errors.Is(err, repository.ErrVoucherExhausted) {
			respondError(c, http.StatusConflict, "VOUCHER_EXHAUSTED", err.Error())
			return
		}
		respondError(c, http.StatusUnprocessableEntity, "CHECKOUT_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

// TrackOrder is the public lookup by order number and email
// POST /api/v1/storefront/orders/track
func (h *OrdersHandler) TrackOrder(c *gin.Context) {
	var req models.TrackOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.svc.TrackOrder(strings.TrimSpace(req.OrderNumber), strings.TrimSpace(req.Email))
	if err != nil {
		h.log.WithError(err).Error("order tracking lookup failed")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up order")
		return
	}
	if order == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "No order matches that number and email")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"order":         order,
		"statusDisplay": order.Status.DisplayName(),
	})
}

// ListOrders returns a filtered admin order page
// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	var filters models.OrderFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	page, limit := parsePagination(c)
	orders, total, err := h.svc.ListOrders(&filters, page, limit)
	if err != nil {
		h.log.WithError(err).Error("failed to list orders")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"orders":     orders,
		"pagination": models.NewPaginationInfo(page, limit, total),
	})
}

// GetOrder returns one order with items
// GET /api/v1/orders/:id
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order ID")
		return
	}

	order, err := h.svc.GetOrder(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch order")
		return
	}
	if order == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// UpdateOrderStatus moves an order through its lifecycle
// PUT /api/v1/orders/:id/status
func (h *OrdersHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order ID")
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error())
		return
	}
	if order == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

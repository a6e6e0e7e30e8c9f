package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/models"
	"sneakerflash/internal/services"
)

// CartHandler serves the storefront cart API. The client holds the cart ID
// it receives from CreateCart and passes it on every call.
type CartHandler struct {
	svc *services.CartService
	log *logrus.Logger
}

func NewCartHandler(svc *services.CartService, log *logrus.Logger) *CartHandler {
	return &CartHandler{svc: svc, log: log}
}

// CreateCart issues a new cart ID
// POST /api/v1/storefront/cart
func (h *CartHandler) CreateCart(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "cartId": h.svc.NewCartID()})
}

// GetCart returns the cart with live prices
// GET /api/v1/storefront/cart/:id
func (h *CartHandler) GetCart(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cart ID")
		return
	}

	cart, err := h.svc.GetCart(c.Request.Context(), cartID)
	if err != nil {
		h.log.WithError(err).Error("failed to load cart")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
}

// AddItem adds a product to the cart
// POST /api/v1/storefront/cart/:id/items
func (h *CartHandler) AddItem(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cart ID")
		return
	}

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cart, err := h.svc.AddItem(c.Request.Context(), cartID, &req)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "CART_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
}

// UpdateItem sets a line's quantity; zero removes the line
// PUT /api/v1/storefront/cart/:id/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cart ID")
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product ID")
		return
	}

	var req struct {
		Size     string `json:"size,omitempty"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cart, err := h.svc.SetItemQuantity(c.Request.Context(), cartID, productID, req.Size, req.Quantity)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
}

// RemoveItem deletes a cart line
// DELETE /api/v1/storefront/cart/:id/items/:productId?size=42
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cart ID")
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product ID")
		return
	}

	cart, err := h.svc.SetItemQuantity(c.Request.Context(), cartID, productID, c.Query("size"), 0)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
}

// ClearCart empties the cart
// DELETE /api/v1/storefront/cart/:id
func (h *CartHandler) ClearCart(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid cart ID")
		return
	}

	if err := h.svc.ClearCart(c.Request.Context(), cartID); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

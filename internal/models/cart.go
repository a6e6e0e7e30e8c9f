package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line in a shopping cart. Carts live in Redis, keyed by
// cart ID; prices are re-read from the catalog whenever the cart is viewed.
type CartItem struct {
	ProductID uuid.UUID `json:"productId"`
	Size      string    `json:"size,omitempty"`
	Quantity  int       `json:"quantity"`
}

// CartLine is a cart item joined with current catalog data for display
type CartLine struct {
	ProductID uuid.UUID       `json:"productId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Image     *string         `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	InStock   bool            `json:"inStock"`
}

// Cart is the storefront view of a cart
type Cart struct {
	ID       uuid.UUID       `json:"id"`
	Lines    []CartLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// AddCartItemRequest represents adding or updating a cart line
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Size      string    `json:"size,omitempty"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

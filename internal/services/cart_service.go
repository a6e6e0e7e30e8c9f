package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sneakerflash/internal/models"
)

// CartItemStore persists cart contents. Implemented by
// repository.CartRepository.
type CartItemStore interface {
	GetItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	SaveItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
}

// CartProductStore resolves cart lines against the catalog. Implemented by
// repository.ProductsRepository.
type CartProductStore interface {
	GetProductByID(productID uuid.UUID) (*models.Product, error)
}

// CartService manages Redis-backed shopping carts. Carts store only product
// references and quantities; prices come from the catalog at view time, so
// a price change is reflected the next time the cart is opened.
type CartService struct {
	carts    CartItemStore
	products CartProductStore
}

func NewCartService(carts CartItemStore, products CartProductStore) *CartService {
	return &CartService{carts: carts, products: products}
}

// NewCartID issues an identifier for a fresh cart. Nothing is stored until
// the first item is added.
func (s *CartService) NewCartID() uuid.UUID {
	return uuid.New()
}

// AddItem adds a product to the cart or bumps the quantity of an existing
// line with the same product and size
func (s *CartService) AddItem(ctx context.Context, cartID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {
	product, err := s.products.GetProductByID(req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, fmt.Errorf("product not found")
	}

	items, err := s.carts.GetItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if items[i].ProductID == req.ProductID && items[i].Size == req.Size {
			items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, models.CartItem{
			ProductID: req.ProductID,
			Size:      req.Size,
			Quantity:  req.Quantity,
		})
	}

	if err := s.carts.SaveItems(ctx, cartID, items); err != nil {
		return nil, err
	}
	return s.buildCart(ctx, cartID, items)
}

// SetItemQuantity sets a line's quantity; zero removes the line
func (s *CartService) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, size string, quantity int) (*models.Cart, error) {
	items, err := s.carts.GetItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	updated := items[:0]
	for _, item := range items {
		if item.ProductID == productID && item.Size == size {
			if quantity <= 0 {
				continue
			}
			item.Quantity = quantity
		}
		updated = append(updated, item)
	}

	if err := s.carts.SaveItems(ctx, cartID, updated); err != nil {
		return nil, err
	}
	return s.buildCart(ctx, cartID, updated)
}

// GetCart returns the cart joined with current catalog data
func (s *CartService) GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	items, err := s.carts.GetItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.buildCart(ctx, cartID, items)
}

// ClearCart empties a cart, typically after checkout
func (s *CartService) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return s.carts.DeleteCart(ctx, cartID)
}

// buildCart joins cart items with live product data. Lines whose product
// vanished or was deactivated are dropped from the view.
func (s *CartService) buildCart(ctx context.Context, cartID uuid.UUID, items []models.CartItem) (*models.Cart, error) {
	cart := &models.Cart{
		ID:       cartID,
		Lines:    []models.CartLine{},
		Subtotal: decimal.Zero,
	}

	now := time.Now()
	for _, item := range items {
		product, err := s.products.GetProductByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			continue
		}

		unitPrice := product.EffectivePrice(now)
		line := models.CartLine{
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			InStock:   product.StockQuantity >= item.Quantity,
		}
		if len(product.Images) > 0 {
			line.Image = &product.Images[0]
		}

		cart.Lines = append(cart.Lines, line)
		cart.Subtotal = cart.Subtotal.Add(line.LineTotal)
	}

	return cart, nil
}

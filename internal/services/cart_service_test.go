package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sneakerflash/internal/models"
)

type fakeCartStore struct {
	carts map[uuid.UUID][]models.CartItem
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[uuid.UUID][]models.CartItem)}
}

func (s *fakeCartStore) GetItems(_ context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	items, ok := s.carts[cartID]
	if !ok {
		return []models.CartItem{}, nil
	}
	return items, nil
}

func (s *fakeCartStore) SaveItems(_ context.Context, cartID uuid.UUID, items []models.CartItem) error {
	s.carts[cartID] = items
	return nil
}

func (s *fakeCartStore) DeleteCart(_ context.Context, cartID uuid.UUID) error {
	delete(s.carts, cartID)
	return nil
}

type fakeCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (c *fakeCatalog) GetProductByID(productID uuid.UUID) (*models.Product, error) {
	return c.products[productID], nil
}

func newCartFixture() (*CartService, *fakeCartStore, *fakeCatalog, *models.Product) {
	product := &models.Product{
		ID:            uuid.New(),
		Name:          "Air Zoom Pegasus 41",
		SKU:           "NIK-AIRZOO-TEST",
		Price:         decimal.NewFromInt(1200000),
		StockQuantity: 10,
		IsActive:      true,
	}
	store := newFakeCartStore()
	catalog := &fakeCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}
	return NewCartService(store, catalog), store, catalog, product
}

func TestCartAddAndGetRoundTrip(t *testing.T) {
	svc, _, _, product := newCartFixture()
	cartID := svc.NewCartID()

	cart, err := svc.AddItem(context.Background(), cartID, &models.AddCartItemRequest{
		ProductID: product.ID,
		Size:      "42",
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "NIK-AIRZOO-TEST", cart.Lines[0].SKU)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.True(t, cart.Lines[0].InStock)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(2400000)))

	fetched, err := svc.GetCart(context.Background(), cartID)
	require.NoError(t, err)
	require.Len(t, fetched.Lines, 1)
	assert.True(t, fetched.Subtotal.Equal(cart.Subtotal))
}

func TestCartAddMergesSameProductAndSize(t *testing.T) {
	svc, _, _, product := newCartFixture()
	cartID := svc.NewCartID()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, &models.AddCartItemRequest{ProductID: product.ID, Size: "42", Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, cartID, &models.AddCartItemRequest{ProductID: product.ID, Size: "42", Quantity: 2})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
}

func TestCartDifferentSizesStaySeparate(t *testing.T) {
	svc, _, _, product := newCartFixture()
	cartID := svc.NewCartID()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, &models.AddCartItemRequest{ProductID: product.ID, Size: "42", Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, cartID, &models.AddCartItemRequest{ProductID: product.ID, Size: "43", Quantity: 1})
	require.NoError(t, err)

	assert.Len(t, cart.Lines, 2)
}

func TestCartZeroQuantityRemovesLine(t *testing.T) {
	svc, _, _, product := newCartFixture()
	cartID := svc.NewCartID()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, &models.AddCartItemRequest{ProductID: product.ID, Size: "42", Quantity: 2})
	require.NoError(t, err)

	cart, err := svc.SetItemQuantity(ctx, cartID, product.ID, "42", 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.True(t, cart.Subtotal.IsZero())
}

func TestCartAddRejectsUnknownProduct(t *testing.T) {
	svc, _, _, _ := newCartFixture()
	cartID := svc.NewCartID()

	_, err := svc.AddItem(context.Background(), cartID, &models.AddCartItemRequest{
		ProductID: uuid.New(),
		Quantity:  1,
	})
	assert.Error(t, err)
}

func TestCartPrunesVanishedProducts(t *testing.T) {
	svc, _, catalog, product := newCartFixture()
	cartID := svc.NewCartID()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, &models.AddCartItemRequest{ProductID: product.ID, Size: "42", Quantity: 1})
	require.NoError(t, err)

	delete(catalog.products, product.ID)

	cart, err := svc.GetCart(ctx, cartID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.True(t, cart.Subtotal.IsZero())
}

func TestCartPrunesDeactivatedProducts(t *testing.T) {
	svc, _, _, product := newCartFixture()
	cartID := svc.NewCartID()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, &models.AddCartItemRequest{ProductID: product.ID, Size: "42", Quantity: 1})
	require.NoError(t, err)

	product.IsActive = false

	cart, err := svc.GetCart(ctx, cartID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestCartOutOfStockFlag(t *testing.T) {
	svc, _, _, product := newCartFixture()
	cartID := svc.NewCartID()

	cart, err := svc.AddItem(context.Background(), cartID, &models.AddCartItemRequest{
		ProductID: product.ID,
		Size:      "42",
		Quantity:  product.StockQuantity + 1,
	})
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.False(t, cart.Lines[0].InStock)
}

func TestClearCart(t *testing.T) {
	svc, store, _, product := newCartFixture()
	cartID := svc.NewCartID()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, cartID, &models.AddCartItemRequest{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, cartID))
	_, ok := store.carts[cartID]
	assert.False(t, ok)
}

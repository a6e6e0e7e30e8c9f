package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sneakerflash/internal/models"
)

// CartRepository stores shopping carts in Redis. A cart is a JSON-encoded
// slice of items under cart:{id}; each write refreshes the TTL so active
// carts survive and abandoned ones expire on their own.
type CartRepository struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCartRepository(redisClient *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{redis: redisClient, ttl: ttl}
}

func cartKey(cartID uuid.UUID) string {
	return fmt.Sprintf("cart:%s", cartID)
}

// GetItems returns the items in a cart. A missing or expired cart is an
// empty cart, not an error.
func (r *CartRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	data, err := r.redis.Get(ctx, cartKey(cartID)).Result()
	if err == redis.Nil {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return items, nil
}

// SaveItems replaces a cart's contents and refreshes its TTL
func (r *CartRepository) SaveItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.redis.Set(ctx, cartKey(cartID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}

// DeleteCart removes a cart, typically after checkout
func (r *CartRepository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	if err := r.redis.Del(ctx, cartKey(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sneakerflash/internal/models"
)

// ErrOutOfStock is returned when an order line asks for more units than the
// product has left. It is wrapped with the offending SKU.
var ErrOutOfStock = errors.New("insufficient stock")

// ErrVoucherExhausted is returned when a concurrent checkout claimed the
// voucher's last redemption first.
var ErrVoucherExhausted = errors.New("voucher usage limit reached")

// OrderRepository handles database operations for orders
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// orderNumberAttempts bounds retries when a generated order number collides
// with an existing one on the same day.
const orderNumberAttempts = 3

// PlaceOrder persists an order atomically: every line's stock is decremented
// with a guard against going negative, the order and its items are created,
// and when a voucher was applied its usage record and counter are written in
// the same transaction. Any failure rolls the whole order back. A duplicate
// order number regenerates and retries the whole transaction.
func (r *OrderRepository) PlaceOrder(order *models.Order, usage *models.VoucherUsage) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		err = r.placeOrderOnce(order, usage)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		order.OrderNumber = ""
	}
	return err
}

func (r *OrderRepository) placeOrderOnce(order *models.Order, usage *models.VoucherUsage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrOutOfStock, item.SKU)
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if usage != nil {
			usage.OrderID = &order.ID
			if err := tx.Create(usage).Error; err != nil {
				return err
			}
			// Re-check the limit here: validation ran outside this
			// transaction, so a concurrent checkout may have taken the
			// last redemption in between.
			result := tx.Model(&models.Voucher{}).
				Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", usage.VoucherID).
				UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrVoucherExhausted
			}
		}

		return nil
	})
}

// GetOrderByID retrieves an order with its items
func (r *OrderRepository) GetOrderByID(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetOrderByNumber retrieves an order by its order number
func (r *OrderRepository) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetOrderByNumberAndEmail retrieves an order for public tracking. Both the
// order number and the customer email must match.
func (r *OrderRepository) GetOrderByNumberAndEmail(orderNumber, email string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").
		Where("order_number = ? AND LOWER(customer_email) = LOWER(?)", orderNumber, email).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetOrderByGineeID retrieves an order previously linked to a Ginee order
func (r *OrderRepository) GetOrderByGineeID(gineeOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("ginee_order_id = ?", gineeOrderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// UpdateOrder updates an existing order
func (r *OrderRepository) UpdateOrder(order *models.Order) error {
	return r.db.Save(order).Error
}

// GetOrderList retrieves a paginated list of orders with filters
func (r *OrderRepository) GetOrderList(filters *models.OrderFilters, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.Model(&models.Order{})

	if filters != nil {
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.CustomerEmail != nil && *filters.CustomerEmail != "" {
			query = query.Where("LOWER(customer_email) = LOWER(?)", *filters.CustomerEmail)
		}
		if filters.DateFrom != nil {
			query = query.Where("created_at >= ?", *filters.DateFrom)
		}
		if filters.DateTo != nil {
			// Inclusive upper bound covering the whole day
			query = query.Where("created_at < ?", filters.DateTo.Add(24*time.Hour))
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Items").Offset(offset).Limit(limit).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// RestockOrderItems returns the stock an order's lines held. Used when a
// paid order is cancelled.
func (r *OrderRepository) RestockOrderItems(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

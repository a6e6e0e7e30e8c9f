package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sneakerflash/internal/models"
)

func testOrder() *models.Order {
	return &models.Order{
		CustomerName:    "Budi",
		CustomerEmail:   "budi@example.com",
		ShippingAddress: "Jl. Sudirman 1",
		ShippingCity:    "Jakarta",
		Subtotal:        decimal.NewFromInt(1200000),
		Total:           decimal.NewFromInt(1215000),
	}
}

func TestPlaceOrderRejectsInsufficientStock(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewOrderRepository(gormDB)

	order := testOrder()
	order.Items = []models.OrderItem{{
		ProductID: uuid.New(),
		SKU:       "NIK-1",
		Quantity:  5,
	}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.PlaceOrder(order, nil)
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderRejectsExhaustedVoucher(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewOrderRepository(gormDB)

	order := testOrder()
	usage := &models.VoucherUsage{
		VoucherID:      uuid.New(),
		CustomerEmail:  order.CustomerEmail,
		OrderValue:     order.Subtotal,
		DiscountAmount: decimal.NewFromInt(100000),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "voucher_usages"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "vouchers"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.PlaceOrder(order, usage)
	assert.ErrorIs(t, err, ErrVoucherExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderRetriesOrderNumberCollision(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewOrderRepository(gormDB)

	order := testOrder()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.PlaceOrder(order, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

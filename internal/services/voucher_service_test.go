package services

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"sneakerflash/internal/models"
)

func newTestVoucherService() *VoucherService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewVoucherService(nil, log)
}

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestCalculateDiscountPercentage(t *testing.T) {
	svc := newTestVoucherService()
	voucher := &models.Voucher{
		DiscountType:  models.VoucherDiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	}

	discount := svc.CalculateDiscount(voucher, decimal.NewFromInt(1200000))
	assert.True(t, discount.Equal(decimal.NewFromInt(120000)), "got %s", discount)
}

func TestCalculateDiscountPercentageCappedByMax(t *testing.T) {
	svc := newTestVoucherService()
	voucher := &models.Voucher{
		DiscountType:  models.VoucherDiscountPercentage,
		DiscountValue: decimal.NewFromInt(50),
		MaxDiscount:   decPtr(decimal.NewFromInt(100000)),
	}

	discount := svc.CalculateDiscount(voucher, decimal.NewFromInt(1000000))
	assert.True(t, discount.Equal(decimal.NewFromInt(100000)), "got %s", discount)
}

func TestCalculateDiscountFixed(t *testing.T) {
	svc := newTestVoucherService()
	voucher := &models.Voucher{
		DiscountType:  models.VoucherDiscountFixed,
		DiscountValue: decimal.NewFromInt(50000),
	}

	discount := svc.CalculateDiscount(voucher, decimal.NewFromInt(300000))
	assert.True(t, discount.Equal(decimal.NewFromInt(50000)), "got %s", discount)
}

func TestCalculateDiscountNeverExceedsOrderValue(t *testing.T) {
	svc := newTestVoucherService()
	voucher := &models.Voucher{
		DiscountType:  models.VoucherDiscountFixed,
		DiscountValue: decimal.NewFromInt(500000),
	}

	discount := svc.CalculateDiscount(voucher, decimal.NewFromInt(75000))
	assert.True(t, discount.Equal(decimal.NewFromInt(75000)), "got %s", discount)
}

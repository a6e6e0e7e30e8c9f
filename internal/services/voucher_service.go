package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/models"
	"sneakerflash/internal/repository"
)

// Voucher rejection reason codes returned to the storefront
const (
	VoucherReasonNotFound       = "NOT_FOUND"
	VoucherReasonDisabled       = "DISABLED"
	VoucherReasonNotStarted     = "NOT_STARTED"
	VoucherReasonExpired        = "EXPIRED"
	VoucherReasonFullyRedeemed  = "FULLY_REDEEMED"
	VoucherReasonMinPurchase    = "MIN_PURCHASE_NOT_MET"
	VoucherReasonCustomerLimit  = "CUSTOMER_LIMIT_REACHED"
)

var hundred = decimal.NewFromInt(100)

// VoucherService owns voucher lifecycle and redemption rules
type VoucherService struct {
	vouchers *repository.VoucherRepository
	log      *logrus.Logger
	now      func() time.Time
}

func NewVoucherService(vouchers *repository.VoucherRepository, log *logrus.Logger) *VoucherService {
	return &VoucherService{vouchers: vouchers, log: log, now: time.Now}
}

// CreateVoucher creates a voucher, rejecting duplicate codes
func (s *VoucherService) CreateVoucher(req *models.CreateVoucherRequest) (*models.Voucher, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.vouchers.VoucherCodeExists(code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("voucher code %s already exists", code)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	voucher := &models.Voucher{
		Code:             code,
		Name:             req.Name,
		Description:      req.Description,
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
		MaxDiscount:      req.MaxDiscount,
		MinPurchase:      req.MinPurchase,
		UsageLimit:       req.UsageLimit,
		PerCustomerLimit: req.PerCustomerLimit,
		IsActive:         isActive,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
	}
	if err := s.vouchers.CreateVoucher(voucher); err != nil {
		return nil, err
	}

	s.log.WithField("code", voucher.Code).Info("voucher created")
	return voucher, nil
}

// UpdateVoucher applies the non-nil fields of the request. The code itself
// is immutable once issued.
func (s *VoucherService) UpdateVoucher(id uuid.UUID, req *models.UpdateVoucherRequest) (*models.Voucher, error) {
	voucher, err := s.vouchers.GetVoucherByID(id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, nil
	}

	if req.Name != nil {
		voucher.Name = *req.Name
	}
	if req.Description != nil {
		voucher.Description = req.Description
	}
	if req.DiscountType != nil {
		voucher.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		voucher.DiscountValue = *req.DiscountValue
	}
	if req.MaxDiscount != nil {
		voucher.MaxDiscount = req.MaxDiscount
	}
	if req.MinPurchase != nil {
		voucher.MinPurchase = req.MinPurchase
	}
	if req.UsageLimit != nil {
		voucher.UsageLimit = req.UsageLimit
	}
	if req.PerCustomerLimit != nil {
		voucher.PerCustomerLimit = req.PerCustomerLimit
	}
	if req.IsActive != nil {
		voucher.IsActive = *req.IsActive
	}
	if req.StartDate != nil {
		voucher.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		voucher.EndDate = req.EndDate
	}

	if err := s.vouchers.UpdateVoucher(voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

// Validate checks a voucher against an order value and customer, returning
// the discount it would grant. It does not consume the voucher.
func (s *VoucherService) Validate(req *models.ValidateVoucherRequest) (*models.VoucherValidationResponse, error) {
	voucher, err := s.vouchers.GetVoucherByCode(strings.TrimSpace(req.Code))
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return rejection(VoucherReasonNotFound, "Voucher not found"), nil
	}

	now := s.now()
	switch voucher.DerivedStatus(now) {
	case models.VoucherStatusDisabled:
		return rejection(VoucherReasonDisabled, "Voucher is not active"), nil
	case models.VoucherStatusScheduled:
		return rejection(VoucherReasonNotStarted, "Voucher is not valid yet"), nil
	case models.VoucherStatusExpired:
		return rejection(VoucherReasonExpired, "Voucher has expired"), nil
	case models.VoucherStatusFullyRedeemed:
		return rejection(VoucherReasonFullyRedeemed, "Voucher has been fully redeemed"), nil
	}

	if voucher.MinPurchase != nil && req.OrderValue.LessThan(*voucher.MinPurchase) {
		msg := fmt.Sprintf("Minimum purchase of %s not met", voucher.MinPurchase.StringFixed(0))
		return rejection(VoucherReasonMinPurchase, msg), nil
	}

	if voucher.PerCustomerLimit != nil && req.CustomerEmail != "" {
		used, err := s.vouchers.CountUsageByCustomer(voucher.ID, req.CustomerEmail)
		if err != nil {
			return nil, err
		}
		if used >= int64(*voucher.PerCustomerLimit) {
			return rejection(VoucherReasonCustomerLimit, "Voucher usage limit reached for this customer"), nil
		}
	}

	discount := s.CalculateDiscount(voucher, req.OrderValue)
	return &models.VoucherValidationResponse{
		Success:        true,
		Valid:          true,
		DiscountAmount: &discount,
		Voucher:        voucher,
	}, nil
}

// CalculateDiscount computes the discount a voucher grants on an order
// value. Percentage discounts are capped by MaxDiscount when set; no
// discount ever exceeds the order value.
func (s *VoucherService) CalculateDiscount(voucher *models.Voucher, orderValue decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch voucher.DiscountType {
	case models.VoucherDiscountPercentage:
		discount = orderValue.Mul(voucher.DiscountValue).Div(hundred).Round(2)
		if voucher.MaxDiscount != nil && discount.GreaterThan(*voucher.MaxDiscount) {
			discount = *voucher.MaxDiscount
		}
	case models.VoucherDiscountFixed:
		discount = voucher.DiscountValue
	}
	if discount.GreaterThan(orderValue) {
		discount = orderValue
	}
	return discount
}

// ListVouchers returns one admin tab page plus the per-tab counts
func (s *VoucherService) ListVouchers(tab models.VoucherTab, search string, page, limit int) ([]models.Voucher, int64, *models.VoucherTabCounts, error) {
	now := s.now()
	vouchers, total, err := s.vouchers.GetVoucherList(tab, search, page, limit, now)
	if err != nil {
		return nil, 0, nil, err
	}
	counts, err := s.vouchers.GetVoucherTabCounts(now)
	if err != nil {
		return nil, 0, nil, err
	}
	return vouchers, total, counts, nil
}

func rejection(code, message string) *models.VoucherValidationResponse {
	return &models.VoucherValidationResponse{
		Success:    true,
		Valid:      false,
		ReasonCode: &code,
		Message:    &message,
	}
}

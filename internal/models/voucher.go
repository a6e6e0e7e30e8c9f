package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherDiscountType represents the type of discount
type VoucherDiscountType string

const (
	VoucherDiscountPercentage VoucherDiscountType = "PERCENTAGE"
	VoucherDiscountFixed      VoucherDiscountType = "FIXED"
)

// VoucherStatus is derived from the voucher's flags, dates and usage; it is
// never stored. See Voucher.DerivedStatus.
type VoucherStatus string

const (
	VoucherStatusActive        VoucherStatus = "ACTIVE"
	VoucherStatusScheduled     VoucherStatus = "SCHEDULED"
	VoucherStatusExpired       VoucherStatus = "EXPIRED"
	VoucherStatusFullyRedeemed VoucherStatus = "FULLY_REDEEMED"
	VoucherStatusDisabled      VoucherStatus = "DISABLED"
)

// VoucherTab identifies an admin-panel tab filtering vouchers by status
type VoucherTab string

const (
	VoucherTabAll       VoucherTab = "all"
	VoucherTabActive    VoucherTab = "active"
	VoucherTabScheduled VoucherTab = "scheduled"
	VoucherTabExpired   VoucherTab = "expired"
	VoucherTabDisabled  VoucherTab = "disabled"
)

// Voucher represents a promotional voucher code
type Voucher struct {
	ID               uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code             string              `json:"code" gorm:"not null;uniqueIndex"`
	Name             string              `json:"name" gorm:"not null"`
	Description      *string             `json:"description,omitempty"`
	DiscountType     VoucherDiscountType `json:"discountType" gorm:"not null"`
	DiscountValue    decimal.Decimal     `json:"discountValue" gorm:"type:numeric(15,2);not null"`
	MaxDiscount      *decimal.Decimal    `json:"maxDiscount,omitempty" gorm:"type:numeric(15,2)"`
	MinPurchase      *decimal.Decimal    `json:"minPurchase,omitempty" gorm:"type:numeric(15,2)"`
	UsageLimit       *int                `json:"usageLimit,omitempty"`
	UsedCount        int                 `json:"usedCount" gorm:"not null;default:0"`
	PerCustomerLimit *int                `json:"perCustomerLimit,omitempty"`
	IsActive         bool                `json:"isActive" gorm:"not null;default:true"`
	StartDate        *time.Time          `json:"startDate,omitempty"`
	EndDate          *time.Time          `json:"endDate,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
	DeletedAt        *gorm.DeletedAt     `json:"deletedAt,omitempty" gorm:"index"`
}

func (Voucher) TableName() string {
	return "vouchers"
}

// DerivedStatus computes the voucher's status at the given instant.
// Precedence: disabled, then scheduled, then expired, then fully redeemed.
func (v *Voucher) DerivedStatus(now time.Time) VoucherStatus {
	if !v.IsActive {
		return VoucherStatusDisabled
	}
	if v.StartDate != nil && now.Before(*v.StartDate) {
		return VoucherStatusScheduled
	}
	if v.EndDate != nil && now.After(*v.EndDate) {
		return VoucherStatusExpired
	}
	if v.UsageLimit != nil && v.UsedCount >= *v.UsageLimit {
		return VoucherStatusFullyRedeemed
	}
	return VoucherStatusActive
}

// VoucherUsage records one redemption of a voucher
type VoucherUsage struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VoucherID      uuid.UUID       `json:"voucherId" gorm:"type:uuid;not null;index"`
	CustomerEmail  string          `json:"customerEmail" gorm:"not null;index"`
	OrderID        *uuid.UUID      `json:"orderId,omitempty" gorm:"type:uuid"`
	OrderValue     decimal.Decimal `json:"orderValue" gorm:"type:numeric(15,2);not null"`
	DiscountAmount decimal.Decimal `json:"discountAmount" gorm:"type:numeric(15,2);not null"`
	UsedAt         time.Time       `json:"usedAt" gorm:"not null"`
	CreatedAt      time.Time       `json:"createdAt"`

	Voucher Voucher `json:"-" gorm:"foreignKey:VoucherID"`
}

func (VoucherUsage) TableName() string {
	return "voucher_usage"
}

// CreateVoucherRequest represents a request to create a voucher
type CreateVoucherRequest struct {
	Code             string              `json:"code" binding:"required"`
	Name             string              `json:"name" binding:"required"`
	Description      *string             `json:"description,omitempty"`
	DiscountType     VoucherDiscountType `json:"discountType" binding:"required"`
	DiscountValue    decimal.Decimal     `json:"discountValue" binding:"required"`
	MaxDiscount      *decimal.Decimal    `json:"maxDiscount,omitempty"`
	MinPurchase      *decimal.Decimal    `json:"minPurchase,omitempty"`
	UsageLimit       *int                `json:"usageLimit,omitempty"`
	PerCustomerLimit *int                `json:"perCustomerLimit,omitempty"`
	IsActive         *bool               `json:"isActive,omitempty"`
	StartDate        *time.Time          `json:"startDate,omitempty"`
	EndDate          *time.Time          `json:"endDate,omitempty"`
}

// UpdateVoucherRequest represents a request to update a voucher
type UpdateVoucherRequest struct {
	Name             *string              `json:"name,omitempty"`
	Description      *string              `json:"description,omitempty"`
	DiscountType     *VoucherDiscountType `json:"discountType,omitempty"`
	DiscountValue    *decimal.Decimal     `json:"discountValue,omitempty"`
	MaxDiscount      *decimal.Decimal     `json:"maxDiscount,omitempty"`
	MinPurchase      *decimal.Decimal     `json:"minPurchase,omitempty"`
	UsageLimit       *int                 `json:"usageLimit,omitempty"`
	PerCustomerLimit *int                 `json:"perCustomerLimit,omitempty"`
	IsActive         *bool                `json:"isActive,omitempty"`
	StartDate        *time.Time           `json:"startDate,omitempty"`
	EndDate          *time.Time           `json:"endDate,omitempty"`
}

// ValidateVoucherRequest represents a storefront voucher validation request
type ValidateVoucherRequest struct {
	Code          string          `json:"code" binding:"required"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	OrderValue    decimal.Decimal `json:"orderValue" binding:"required"`
}

// VoucherValidationResponse represents a voucher validation response
type VoucherValidationResponse struct {
	Success        bool             `json:"success"`
	Valid          bool             `json:"valid"`
	DiscountAmount *decimal.Decimal `json:"discountAmount,omitempty"`
	ReasonCode     *string          `json:"reasonCode,omitempty"`
	Message        *string          `json:"message,omitempty"`
	Voucher        *Voucher         `json:"voucher,omitempty"`
}

// VoucherTabCounts holds per-tab voucher totals for the admin panel
type VoucherTabCounts struct {
	All       int64 `json:"all"`
	Active    int64 `json:"active"`
	Scheduled int64 `json:"scheduled"`
	Expired   int64 `json:"expired"`
	Disabled  int64 `json:"disabled"`
}

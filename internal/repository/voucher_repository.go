package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sneakerflash/internal/models"
)

// VoucherRepository handles database operations for vouchers and their usage
// records. Voucher status is never stored; tab filters are expressed as SQL
// conditions over the same flags and dates Voucher.DerivedStatus reads.
type VoucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) *VoucherRepository {
	return &VoucherRepository{db: db}
}

// CreateVoucher creates a new voucher
func (r *VoucherRepository) CreateVoucher(voucher *models.Voucher) error {
	return r.db.Create(voucher).Error
}

// GetVoucherByID retrieves a voucher by ID
func (r *VoucherRepository) GetVoucherByID(id uuid.UUID) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.Where("id = ?", id).First(&voucher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// GetVoucherByCode retrieves a voucher by its code, case-insensitively
func (r *VoucherRepository) GetVoucherByCode(code string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.db.Where("LOWER(code) = LOWER(?)", code).First(&voucher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

// VoucherCodeExists reports whether a voucher with the given code exists
func (r *VoucherRepository) VoucherCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Voucher{}).Where("LOWER(code) = LOWER(?)", code).Count(&count).Error
	return count > 0, err
}

// UpdateVoucher updates an existing voucher
func (r *VoucherRepository) UpdateVoucher(voucher *models.Voucher) error {
	return r.db.Save(voucher).Error
}

// DeleteVoucher soft deletes a voucher
func (r *VoucherRepository) DeleteVoucher(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&models.Voucher{}).Error
}

// GetVoucherList retrieves a paginated list of vouchers filtered by tab
func (r *VoucherRepository) GetVoucherList(tab models.VoucherTab, search string, page, limit int, now time.Time) ([]models.Voucher, int64, error) {
	var vouchers []models.Voucher
	var total int64

	query := r.db.Model(&models.Voucher{})
	query = r.applyTabFilter(query, tab, now)

	if search != "" {
		term := "%" + search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&vouchers).Error; err != nil {
		return nil, 0, err
	}

	return vouchers, total, nil
}

// applyTabFilter narrows a voucher query to one admin tab. The conditions
// mirror DerivedStatus precedence: disabled, then scheduled, then expired.
func (r *VoucherRepository) applyTabFilter(query *gorm.DB, tab models.VoucherTab, now time.Time) *gorm.DB {
	switch tab {
	case models.VoucherTabActive:
		return query.
			Where("is_active = ?", true).
			Where("start_date IS NULL OR start_date <= ?", now).
			Where("end_date IS NULL OR end_date >= ?", now).
			Where("usage_limit IS NULL OR used_count < usage_limit")
	case models.VoucherTabScheduled:
		return query.
			Where("is_active = ?", true).
			Where("start_date IS NOT NULL AND start_date > ?", now)
	case models.VoucherTabExpired:
		return query.
			Where("is_active = ?", true).
			Where("start_date IS NULL OR start_date <= ?", now).
			Where("end_date IS NOT NULL AND end_date < ?", now)
	case models.VoucherTabDisabled:
		return query.Where("is_active = ?", false)
	default:
		return query
	}
}

// GetVoucherTabCounts computes per-tab voucher totals in a single query
func (r *VoucherRepository) GetVoucherTabCounts(now time.Time) (*models.VoucherTabCounts, error) {
	var counts models.VoucherTabCounts
	err := r.db.Raw(`
		SELECT
			COUNT(*) AS "all",
			COUNT(*) FILTER (
				WHERE is_active
				  AND (start_date IS NULL OR start_date <= @now)
				  AND (end_date IS NULL OR end_date >= @now)
				  AND (usage_limit IS NULL OR used_count < usage_limit)
			) AS active,
			COUNT(*) FILTER (
				WHERE is_active AND start_date IS NOT NULL AND start_date > @now
			) AS scheduled,
			COUNT(*) FILTER (
				WHERE is_active
				  AND (start_date IS NULL OR start_date <= @now)
				  AND end_date IS NOT NULL AND end_date < @now
			) AS expired,
			COUNT(*) FILTER (WHERE NOT is_active) AS disabled
		FROM vouchers
		WHERE deleted_at IS NULL`,
		map[string]interface{}{"now": now},
	).Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// IncrementUsage atomically bumps a voucher's redemption counter
func (r *VoucherRepository) IncrementUsage(voucherID uuid.UUID) error {
	return r.db.Model(&models.Voucher{}).
		Where("id = ?", voucherID).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1)).Error
}

// CreateVoucherUsage records a redemption
func (r *VoucherRepository) CreateVoucherUsage(usage *models.VoucherUsage) error {
	return r.db.Create(usage).Error
}

// CountUsageByCustomer returns how many times a customer has redeemed a voucher
func (r *VoucherRepository) CountUsageByCustomer(voucherID uuid.UUID, customerEmail string) (int64, error) {
	var count int64
	err := r.db.Model(&models.VoucherUsage{}).
		Where("voucher_id = ? AND LOWER(customer_email) = LOWER(?)", voucherID, customerEmail).
		Count(&count).Error
	return count, err
}

// GetVoucherUsageList retrieves paginated redemption records for a voucher
func (r *VoucherRepository) GetVoucherUsageList(voucherID uuid.UUID, page, limit int) ([]models.VoucherUsage, int64, error) {
	var usages []models.VoucherUsage
	var total int64

	query := r.db.Model(&models.VoucherUsage{}).Where("voucher_id = ?", voucherID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("used_at DESC").Find(&usages).Error; err != nil {
		return nil, 0, err
	}

	return usages, total, nil
}

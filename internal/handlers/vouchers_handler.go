package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/models"
	"sneakerflash/internal/repository"
	"sneakerflash/internal/services"
)

// VouchersHandler serves voucher administration and the storefront
// validation endpoint
type VouchersHandler struct {
	svc  *services.VoucherService
	repo *repository.VoucherRepository
	log  *logrus.Logger
}

func NewVouchersHandler(svc *services.VoucherService, repo *repository.VoucherRepository, log *logrus.Logger) *VouchersHandler {
	return &VouchersHandler{svc: svc, repo: repo, log: log}
}

// voucherView decorates a voucher with its derived status for the admin UI
type voucherView struct {
	*models.Voucher
	Status models.VoucherStatus `json:"status"`
}

func voucherViews(vouchers []models.Voucher, now time.Time) []voucherView {
	views := make([]voucherView, len(vouchers))
	for i := range vouchers {
		views[i] = voucherView{
			Voucher: &vouchers[i],
			Status:  vouchers[i].DerivedStatus(now),
		}
	}
	return views
}

// ListVouchers returns one admin tab page with per-tab counts
// GET /api/v1/vouchers?tab=all|active|scheduled|expired|disabled
func (h *VouchersHandler) ListVouchers(c *gin.Context) {
	tab := models.VoucherTab(c.DefaultQuery("tab", string(models.VoucherTabAll)))
	page, limit := parsePagination(c)

	vouchers, total, counts, err := h.svc.ListVouchers(tab, c.Query("q"), page, limit)
	if err != nil {
		h.log.WithError(err).Error("failed to list vouchers")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list vouchers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"vouchers":   voucherViews(vouchers, time.Now()),
		"counts":     counts,
		"pagination": models.NewPaginationInfo(page, limit, total),
	})
}

// GetVoucher returns one voucher
// GET /api/v1/vouchers/:id
func (h *VouchersHandler) GetVoucher(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid voucher ID")
		return
	}

	voucher, err := h.repo.GetVoucherByID(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch voucher")
		return
	}
	if voucher == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Voucher not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"voucher": voucherView{Voucher: voucher, Status: voucher.DerivedStatus(time.Now())},
	})
}

// CreateVoucher creates a voucher
// POST /api/v1/vouchers
func (h *VouchersHandler) CreateVoucher(c *gin.Context) {
	var req models.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	voucher, err := h.svc.CreateVoucher(&req)
	if err != nil {
		respondError(c, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "voucher": voucher})
}

// UpdateVoucher applies a partial update
// PUT /api/v1/vouchers/:id
func (h *VouchersHandler) UpdateVoucher(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid voucher ID")
		return
	}

	var req models.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	voucher, err := h.svc.UpdateVoucher(id, &req)
	if err != nil {
		h.log.WithError(err).Error("failed to update voucher")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update voucher")
		return
	}
	if voucher == nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Voucher not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "voucher": voucher})
}

// DeleteVoucher soft deletes a voucher
// DELETE /api/v1/vouchers/:id
func (h *VouchersHandler) DeleteVoucher(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid voucher ID")
		return
	}

	if err := h.repo.DeleteVoucher(id); err != nil {
		h.log.WithError(err).Error("failed to delete voucher")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete voucher")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetVoucherUsage lists a voucher's redemption history
// GET /api/v1/vouchers/:id/usage
func (h *VouchersHandler) GetVoucherUsage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid voucher ID")
		return
	}

	page, limit := parsePagination(c)
	usages, total, err := h.repo.GetVoucherUsageList(id, page, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch voucher usage")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"usage":      usages,
		"pagination": models.NewPaginationInfo(page, limit, total),
	})
}

// ValidateVoucher checks a code against an order value for the storefront
// POST /api/v1/storefront/vouchers/validate
func (h *VouchersHandler) ValidateVoucher(c *gin.Context) {
	var req models.ValidateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	response, err := h.svc.Validate(&req)
	if err != nil {
		h.log.WithError(err).Error("voucher validation failed")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to validate voucher")
		return
	}

	c.JSON(http.StatusOK, response)
}

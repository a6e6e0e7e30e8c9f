package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sneakerflash/internal/services"
)

// GineeSignatureHeader carries the HMAC signature of the raw request body
const GineeSignatureHeader = "X-Ginee-Signature"

// WebhookHandler receives Ginee marketplace webhooks
type WebhookHandler struct {
	svc *services.GineeService
	log *logrus.Logger
}

func NewWebhookHandler(svc *services.GineeService, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, log: log}
}

// HandleGineeWebhook verifies and processes one delivery. Ginee expects a
// 200 to stop redelivering; handler failures are stored for replay and
// still acknowledged.
// POST /webhooks/ginee
func (h *WebhookHandler) HandleGineeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to read request body")
		return
	}

	signature := c.GetHeader(GineeSignatureHeader)
	if signature == "" {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing webhook signature")
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			h.log.Warn("rejected webhook with bad signature")
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid webhook signature")
			return
		}
		h.log.WithError(err).Error("webhook processing failed")
		respondError(c, http.StatusBadRequest, "WEBHOOK_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SyncCatalog triggers a pull of the Ginee master catalog
// POST /api/v1/ginee/sync
func (h *WebhookHandler) SyncCatalog(c *gin.Context) {
	result, err := h.svc.SyncCatalog(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("ginee catalog sync failed")
		respondError(c, http.StatusBadGateway, "SYNC_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// PushStock reports one product's stock back to Ginee
// POST /api/v1/ginee/stock/:sku
func (h *WebhookHandler) PushStock(c *gin.Context) {
	if err := h.svc.PushStock(c.Request.Context(), c.Param("sku")); err != nil {
		h.log.WithError(err).Error("ginee stock push failed")
		respondError(c, http.StatusBadGateway, "SYNC_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

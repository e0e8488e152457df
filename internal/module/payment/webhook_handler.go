package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/provider"
	"go.uber.org/zap"
)

// gatewayWebhookRequest is the envelope the card gateway posts. The
// signature covers the timestamp and the canonical encoding of Data.
type gatewayWebhookRequest struct {
	EventID   string         `json:"event_id" binding:"required"`
	EventType string         `json:"event_type"`
	Timestamp string         `json:"timestamp" binding:"required"`
	Signature string         `json:"signature" binding:"required"`
	Data      map[string]any `json:"data" binding:"required"`
}

// WebhookHandler handles gateway webhook deliveries. Webhook routes are
// authenticated by signature, not by bearer token, and are registered
// outside the actor middleware.
type WebhookHandler struct {
	processor *Processor
	gateway   *provider.GatewayProvider
	logger    *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(processor *Processor, gateway *provider.GatewayProvider, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		gateway:   gateway,
		logger:    logger.Named("webhook"),
	}
}

// RegisterRoutes registers the webhook routes.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/gateway", h.HandleGatewayWebhook)
}

// HandleGatewayWebhook verifies, deduplicates and applies one gateway
// event. Replayed deliveries are acknowledged without effect.
func (h *WebhookHandler) HandleGatewayWebhook(c *gin.Context) {
	var req gatewayWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	if err := h.gateway.VerifyWebhookSignature(req.Data, req.Timestamp, req.Signature); err != nil {
		h.logger.Warn("webhook signature rejected",
			zap.String("event_id", req.EventID),
			zap.Error(err),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	paymentRef, _ := req.Data["reference"].(string)
	paymentID, err := uuid.Parse(paymentRef)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment reference"})
		return
	}

	externalStatus, _ := req.Data["status"].(string)
	transactionID, _ := req.Data["transaction_id"].(string)
	cardSummary, _ := req.Data["card_summary"].(string)
	processingFee, _ := req.Data["processing_fee"].(float64)

	out, err := h.processor.HandleGatewayWebhook(
		c.Request.Context(),
		req.EventID,
		req.EventType,
		paymentID,
		req.Data,
		provider.ConfirmData{
			ExternalStatus: externalStatus,
			TransactionID:  transactionID,
			CardSummary:    cardSummary,
			ProcessingFee:  int64(processingFee),
		},
	)
	if err != nil {
		if errors.Is(err, ErrWebhookEventExists) {
			c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
			return
		}
		if errors.Is(err, ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown payment"})
			return
		}
		if errors.Is(err, provider.ErrInvalidState) || errors.Is(err, domain.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("webhook processing failed",
			zap.String("event_id", req.EventID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "processed",
		"payment_status": string(out.Payment.Status()),
	})
}

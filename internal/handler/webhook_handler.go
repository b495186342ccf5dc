package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/repository"
	"telemart/storecore/internal/service"
	"telemart/storecore/pkg/response"
)

const webhookDedupTTL = 24 * time.Hour

// WebhookHandler ingests payment-provider callbacks. Replays of the same
// event id are acknowledged without effect; races with the poller or the
// sweep resolve inside the order state machine.
type WebhookHandler struct {
	orderService service.OrderService
	state        repository.StateStore
	logger       *zap.Logger
}

func NewWebhookHandler(orderService service.OrderService, state repository.StateStore, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{orderService: orderService, state: state, logger: logger}
}

type PaymentWebhookRequest struct {
	EventID           string          `json:"event_id" binding:"required"`
	Event             string          `json:"event" binding:"required,oneof=payment.registered payment.checked payment.succeeded payment.failed"`
	OrderID           *uuid.UUID      `json:"order_id"`
	ExternalPaymentID string          `json:"external_payment_id" binding:"required"`
	TransactionID     string          `json:"transaction_id"`
	PaymentData       json.RawMessage `json:"payment_data"`
}

func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	dedupKey := "webhook:event:" + req.EventID
	fresh, dedupErr := h.state.SetNX(ctx, dedupKey, []byte("1"), webhookDedupTTL)
	if dedupErr != nil {
		h.logger.Warn("webhook dedup check failed, processing anyway", zap.Error(dedupErr))
	} else if !fresh {
		response.Success(c, gin.H{"deduplicated": true})
		return
	}

	if err := h.process(c, &req); err != nil {
		// Release the event id so the provider's retry is processed instead
		// of being answered as a replay of a delivery that never took effect.
		if dedupErr == nil {
			if derr := h.state.Delete(ctx, dedupKey); derr != nil {
				h.logger.Warn("failed to release webhook dedup key",
					zap.String("event_id", req.EventID), zap.Error(derr))
			}
		}
		if errors.Is(err, service.ErrIntegrity) {
			h.logger.Error("webhook integrity violation",
				zap.String("event_id", req.EventID),
				zap.String("external_payment_id", req.ExternalPaymentID),
				zap.Error(err))
		}
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *WebhookHandler) process(c *gin.Context, req *PaymentWebhookRequest) error {
	ctx := c.Request.Context()

	if req.Event == "payment.registered" {
		if req.OrderID == nil {
			return fmt.Errorf("payment.registered requires order_id: %w", service.ErrValidation)
		}
		return h.orderService.AttachExternalPayment(ctx, *req.OrderID, req.ExternalPaymentID, req.PaymentData)
	}

	order, err := h.orderService.GetByExternalPaymentID(ctx, req.ExternalPaymentID)
	if err != nil {
		return err
	}

	if err := h.orderService.MarkChecked(ctx, order.ID, req.PaymentData); err != nil {
		return err
	}

	meta := service.TransitionMeta{
		TransactionID: req.TransactionID,
		Source:        "webhook",
		Extra:         map[string]any{"event_id": req.EventID},
	}
	switch req.Event {
	case "payment.succeeded":
		return h.orderService.Transition(ctx, order.ID, model.OrderStatusPaid, meta)
	case "payment.failed":
		meta.Reason = "provider reported failure"
		return h.orderService.Transition(ctx, order.ID, model.OrderStatusFailed, meta)
	default: // payment.checked
		return nil
	}
}

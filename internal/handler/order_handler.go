package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/service"
	"telemart/storecore/pkg/response"
)

// maxCustomExpirationSeconds caps a caller-supplied validity window at 7 days.
const maxCustomExpirationSeconds = 604800

type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

type CreateOrderRequest struct {
	UserID           uuid.UUID `json:"user_id" binding:"required"`
	ProductID        uuid.UUID `json:"product_id" binding:"required"`
	Quantity         int       `json:"quantity" binding:"required,min=1"`
	PaymentType      string    `json:"payment_type" binding:"required"`
	ExchangeRate     string    `json:"exchange_rate" binding:"required"`
	RateValidSeconds int       `json:"rate_valid_seconds" binding:"omitempty,min=1"`
	CustomExpiration *int      `json:"custom_expiration"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	// Boundary validation happens here, not inside the core type.
	if req.CustomExpiration != nil &&
		(*req.CustomExpiration < 1 || *req.CustomExpiration > maxCustomExpirationSeconds) {
		response.BadRequest(c, "custom_expiration must be between 1 and 604800 seconds")
		return
	}

	rate, err := decimal.NewFromString(req.ExchangeRate)
	if err != nil {
		response.BadRequest(c, "invalid exchange_rate")
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), service.CreateOrderParams{
		UserID:           req.UserID,
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		PaymentType:      model.PaymentType(req.PaymentType),
		ExchangeRate:     rate,
		RateValidSeconds: req.RateValidSeconds,
		CustomExpiration: req.CustomExpiration,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "order_id")
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

func (h *OrderHandler) ListByUser(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	orders, err := h.orderService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, orders)
}

func (h *OrderHandler) History(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "order_id")
	if !ok {
		return
	}
	entries, err := h.orderService.History(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, entries)
}

type RefundOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *OrderHandler) Refund(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "order_id")
	if !ok {
		return
	}
	var req RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	meta := service.TransitionMeta{Source: "api", Reason: req.Reason}
	err := h.orderService.Transition(c.Request.Context(), orderID, model.OrderStatusRefunded, meta)
	if err != nil {
		if errors.Is(err, service.ErrIntegrity) {
			h.logger.Error("refund integrity violation",
				zap.String("order_id", orderID.String()), zap.Error(err))
		}
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

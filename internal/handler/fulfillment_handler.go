package handler

import (
	"github.com/gin-gonic/gin"

	"telemart/storecore/internal/service"
	"telemart/storecore/pkg/response"
)

type FulfillmentHandler struct {
	fulfillmentService service.FulfillmentService
}

func NewFulfillmentHandler(fulfillmentService service.FulfillmentService) *FulfillmentHandler {
	return &FulfillmentHandler{fulfillmentService: fulfillmentService}
}

func (h *FulfillmentHandler) GetByOrder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "order_id")
	if !ok {
		return
	}
	userOrder, err := h.fulfillmentService.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, userOrder)
}

func (h *FulfillmentHandler) Complete(c *gin.Context) {
	userOrderID, ok := parseUUIDParam(c, "user_order_id")
	if !ok {
		return
	}
	if err := h.fulfillmentService.Complete(c.Request.Context(), userOrderID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *FulfillmentHandler) Cancel(c *gin.Context) {
	userOrderID, ok := parseUUIDParam(c, "user_order_id")
	if !ok {
		return
	}
	if err := h.fulfillmentService.Cancel(c.Request.Context(), userOrderID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

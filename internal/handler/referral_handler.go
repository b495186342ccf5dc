package handler

import (
	"github.com/gin-gonic/gin"

	"telemart/storecore/internal/service"
	"telemart/storecore/pkg/response"
)

type ReferralHandler struct {
	referralService service.ReferralService
}

func NewReferralHandler(referralService service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

func (h *ReferralHandler) Ancestors(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	rows, err := h.referralService.Ancestors(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rows)
}

func (h *ReferralHandler) Descendants(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	rows, err := h.referralService.Descendants(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rows)
}

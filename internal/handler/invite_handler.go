package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telemart/storecore/internal/service"
	"telemart/storecore/pkg/response"
)

type InviteHandler struct {
	inviteService service.InviteService
	defaultTTL    time.Duration
}

func NewInviteHandler(inviteService service.InviteService, defaultTTL time.Duration) *InviteHandler {
	return &InviteHandler{inviteService: inviteService, defaultTTL: defaultTTL}
}

type IssueInviteRequest struct {
	OwnerID uuid.UUID `json:"owner_id" binding:"required"`
	// TTLSeconds omitted applies the configured default; a negative value
	// issues a code that never expires.
	TTLSeconds int64 `json:"ttl_seconds"`
}

func (h *InviteHandler) Issue(c *gin.Context) {
	var req IssueInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if req.TTLSeconds == 0 {
		ttl = h.defaultTTL
	} else if req.TTLSeconds < 0 {
		ttl = 0
	}

	code, err := h.inviteService.Issue(c.Request.Context(), req.OwnerID, ttl)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, code)
}

type RedeemInviteRequest struct {
	Code       string    `json:"code" binding:"required"`
	RedeemerID uuid.UUID `json:"redeemer_id" binding:"required"`
}

func (h *InviteHandler) Redeem(c *gin.Context) {
	var req RedeemInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	inviterID, err := h.inviteService.Redeem(c.Request.Context(), req.Code, req.RedeemerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"inviter_id": inviterID})
}

func (h *InviteHandler) ListByOwner(c *gin.Context) {
	ownerID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	codes, err := h.inviteService.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, codes)
}

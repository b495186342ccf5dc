package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"telemart/storecore/internal/service"
	"telemart/storecore/pkg/response"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type CreateUserRequest struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name"`
	InviteCode  string `json:"invite_code"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.userService.Create(c.Request.Context(), service.CreateUserParams{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		InviteCode:  req.InviteCode,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

type GrantVIPRequest struct {
	Level int        `json:"level" binding:"required,min=1"`
	Until *time.Time `json:"until"`
}

func (h *UserHandler) GrantVIP(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	var req GrantVIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.userService.GrantVIP(c.Request.Context(), userID, req.Level, req.Until); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

type AdjustCoinsRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

func (h *UserHandler) AdjustCoins(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	var req AdjustCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.userService.AdjustCoins(c.Request.Context(), userID, req.Delta); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

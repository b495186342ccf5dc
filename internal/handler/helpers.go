package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"telemart/storecore/internal/service"
	"telemart/storecore/pkg/response"
)

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service error kinds onto HTTP responses.
// Integrity errors are the caller's contract violation; they come back as 500
// after the handler has logged them.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, service.ErrIntegrity):
		response.InternalError(c, err.Error())
	default:
		response.InternalError(c, "internal error")
	}
}

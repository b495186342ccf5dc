package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"telemart/storecore/internal/model"
)

type UserOrderRepository interface {
	Create(ctx context.Context, userOrder *model.UserOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.UserOrder, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.UserOrder, error)
	// UpdateStatus is guarded on the current status like order transitions.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.FulfillmentStatus, completedAt *time.Time) error
}

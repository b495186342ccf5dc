package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"telemart/storecore/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	SetInviter(ctx context.Context, userID, inviterID uuid.UUID) error
	GrantVIP(ctx context.Context, userID uuid.UUID, level int, until *time.Time) error
	// AdjustCoins atomically applies delta to the coin balance; a negative
	// delta that would take the balance below zero yields ErrNoRowsUpdated.
	AdjustCoins(ctx context.Context, userID uuid.UUID, delta int64) error
}

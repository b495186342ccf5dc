package repository

import (
	"context"

	"github.com/google/uuid"

	"telemart/storecore/internal/model"
)

type InviteCodeRepository interface {
	Create(ctx context.Context, code *model.InviteCode) error
	GetByCode(ctx context.Context, code string) (*model.InviteCode, error)
	// MarkUsed flips is_used exactly once; if the code was already used the
	// guard misses and ErrNoRowsUpdated is returned, so of two concurrent
	// redeemers exactly one wins.
	MarkUsed(ctx context.Context, id uuid.UUID, redeemerID uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.InviteCode, error)
}

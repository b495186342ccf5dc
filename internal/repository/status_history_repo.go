package repository

import (
	"context"

	"github.com/google/uuid"

	"telemart/storecore/internal/model"
)

type StatusHistoryRepository interface {
	// Append writes a history row; entries are never updated or deleted.
	Append(ctx context.Context, entry *model.StatusHistoryEntry) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error)
}

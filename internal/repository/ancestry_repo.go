package repository

import (
	"context"

	"github.com/google/uuid"

	"telemart/storecore/internal/model"
)

type AncestryRepository interface {
	// InsertBatch inserts all rows or none; unique (ancestor, descendant)
	// violations surface as an error that fails the surrounding transaction.
	InsertBatch(ctx context.Context, rows []model.AncestryRow) error
	// Ancestors returns the full upward chain of a user ordered by ascending
	// depth, self-row (depth 0) first.
	Ancestors(ctx context.Context, descendantID uuid.UUID) ([]model.AncestryRow, error)
	// Descendants returns everyone transitively invited by a user, the
	// self-row excluded, ordered by ascending depth.
	Descendants(ctx context.Context, ancestorID uuid.UUID) ([]model.AncestryRow, error)
	HasSelfRow(ctx context.Context, userID uuid.UUID) (bool, error)
}

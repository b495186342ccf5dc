package repository

import (
	"context"
	"errors"
)

// ErrNoRowsUpdated is returned by conditional updates whose guard matched no
// row. Services re-read state and decide between an idempotent no-op and a
// conflict; they never retry blindly.
var ErrNoRowsUpdated = errors.New("no rows updated")

// Store aggregates the per-entity repositories over one backing database.
// Atomic runs fn against a store bound to a single serializable transaction;
// any error rolls the whole transaction back.
type Store interface {
	Users() UserRepository
	Ancestry() AncestryRepository
	InviteCodes() InviteCodeRepository
	Products() ProductRepository
	Orders() OrderRepository
	StatusHistory() StatusHistoryRepository
	UserOrders() UserOrderRepository

	Atomic(ctx context.Context, fn func(Store) error) error
}

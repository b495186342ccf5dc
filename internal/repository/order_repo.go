package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"telemart/storecore/internal/model"
)

// StatusPatch carries the fields an order transition may set alongside the
// status column. Nil fields are left untouched.
type StatusPatch struct {
	TransactionID     *string
	PaidAt            *time.Time
	ExternalPaymentID *string
	PaymentData       []byte
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByExternalPaymentID(ctx context.Context, externalID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	// UpdateStatus moves from -> to only if the order still holds the from
	// status; a missed guard yields ErrNoRowsUpdated so the losing side of a
	// race can re-read instead of overwriting.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, patch StatusPatch) error
	// MarkChecked records a provider poll; status is never touched.
	MarkChecked(ctx context.Context, id uuid.UUID, checkedAt time.Time, paymentData []byte) error
	ListDueForExpiration(ctx context.Context, now time.Time, limit int) ([]model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
}

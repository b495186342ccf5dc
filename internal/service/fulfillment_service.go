package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/repository"
)

// FulfillmentService runs the per-UserOrder delivery machine. It is triggered
// externally once an order is paid and deliberately knows nothing about
// payment state.
type FulfillmentService interface {
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.UserOrder, error)
	// Complete marks the delivery done and sets completedAt.
	Complete(ctx context.Context, userOrderID uuid.UUID) error
	Cancel(ctx context.Context, userOrderID uuid.UUID) error
}

type fulfillmentService struct {
	store repository.Store
}

func NewFulfillmentService(store repository.Store) FulfillmentService {
	return &fulfillmentService{store: store}
}

func (s *fulfillmentService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.UserOrder, error) {
	userOrder, err := s.store.UserOrders().GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFulfillmentNotFound
		}
		return nil, fmt.Errorf("load user order: %w", err)
	}
	return userOrder, nil
}

func (s *fulfillmentService) Complete(ctx context.Context, userOrderID uuid.UUID) error {
	now := time.Now()
	return s.finalize(ctx, userOrderID, model.FulfillmentCompleted, &now)
}

func (s *fulfillmentService) Cancel(ctx context.Context, userOrderID uuid.UUID) error {
	return s.finalize(ctx, userOrderID, model.FulfillmentCancelled, nil)
}

func (s *fulfillmentService) finalize(ctx context.Context, userOrderID uuid.UUID, to model.FulfillmentStatus, completedAt *time.Time) error {
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		userOrder, err := tx.UserOrders().GetByID(ctx, userOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFulfillmentNotFound
			}
			return fmt.Errorf("load user order: %w", err)
		}
		if userOrder.Status == to {
			return nil
		}
		if userOrder.Status.IsTerminal() {
			return ErrFulfillmentFinalized
		}
		if err := tx.UserOrders().UpdateStatus(ctx, userOrderID, model.FulfillmentPending, to, completedAt); err != nil {
			if errors.Is(err, repository.ErrNoRowsUpdated) {
				return ErrFulfillmentFinalized
			}
			return fmt.Errorf("update fulfillment status: %w", err)
		}
		return nil
	})
}

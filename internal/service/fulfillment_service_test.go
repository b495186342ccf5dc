package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/repository"
)

func createPendingUserOrder(t *testing.T, store repository.Store) *model.UserOrder {
	t.Helper()
	order := createOrder(t, newOrderService(store), orderParams(t, store))
	userOrder, err := store.UserOrders().GetByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("load user order: %v", err)
	}
	return userOrder
}

func TestCompleteSetsCompletedAt(t *testing.T) {
	store := newTestStore()
	svc := NewFulfillmentService(store)
	ctx := context.Background()
	userOrder := createPendingUserOrder(t, store)

	if err := svc.Complete(ctx, userOrder.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := svc.GetByOrder(ctx, userOrder.OrderID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != model.FulfillmentCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("completedAt not set")
	}

	// Re-completing is a no-op.
	if err := svc.Complete(ctx, userOrder.ID); err != nil {
		t.Fatalf("duplicate complete: %v", err)
	}
}

func TestCancelPending(t *testing.T) {
	store := newTestStore()
	svc := NewFulfillmentService(store)
	ctx := context.Background()
	userOrder := createPendingUserOrder(t, store)

	if err := svc.Cancel(ctx, userOrder.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, err := svc.GetByOrder(ctx, userOrder.OrderID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != model.FulfillmentCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
	if got.CompletedAt != nil {
		t.Fatalf("cancelled delivery has completedAt %v", got.CompletedAt)
	}
}

func TestFinalizedDeliveryRejectsOppositeOutcome(t *testing.T) {
	store := newTestStore()
	svc := NewFulfillmentService(store)
	ctx := context.Background()
	userOrder := createPendingUserOrder(t, store)

	if err := svc.Complete(ctx, userOrder.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := svc.Cancel(ctx, userOrder.ID); !errors.Is(err, ErrFulfillmentFinalized) {
		t.Fatalf("expected ErrFulfillmentFinalized, got %v", err)
	}
}

func TestFulfillmentUnknownIDs(t *testing.T) {
	store := newTestStore()
	svc := NewFulfillmentService(store)
	ctx := context.Background()

	if _, err := svc.GetByOrder(ctx, uuid.New()); !errors.Is(err, ErrFulfillmentNotFound) {
		t.Fatalf("expected ErrFulfillmentNotFound, got %v", err)
	}
	if err := svc.Complete(ctx, uuid.New()); !errors.Is(err, ErrFulfillmentNotFound) {
		t.Fatalf("expected ErrFulfillmentNotFound, got %v", err)
	}
}

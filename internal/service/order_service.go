package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/repository"
)

// CreateOrderParams captures an order request. The exchange rate comes from
// the caller's quote and is locked into the order for the validity window.
type CreateOrderParams struct {
	UserID           uuid.UUID
	ProductID        uuid.UUID
	Quantity         int
	PaymentType      model.PaymentType
	ExchangeRate     decimal.Decimal
	RateValidSeconds int  // 0 means the configured default
	CustomExpiration *int // seconds; overrides RateValidSeconds when set
}

// TransitionMeta is recorded verbatim in the status history. TransactionID is
// mandatory for transitions to Paid.
type TransitionMeta struct {
	TransactionID string         `json:"transaction_id,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Source        string         `json:"source,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

type OrderService interface {
	Create(ctx context.Context, params CreateOrderParams) (*model.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	GetByExternalPaymentID(ctx context.Context, externalID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	History(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error)

	// Transition applies a table-guarded state change. Re-applying the
	// current status is an idempotent no-op; the losing side of a concurrent
	// race gets ErrTransitionConflict.
	Transition(ctx context.Context, orderID uuid.UUID, to model.OrderStatus, meta TransitionMeta) error
	// AttachExternalPayment records the provider's acknowledgment and moves
	// the order Created -> AwaitingPayment.
	AttachExternalPayment(ctx context.Context, orderID uuid.UUID, externalID string, paymentData []byte) error
	// MarkChecked records a provider poll; it never changes status.
	MarkChecked(ctx context.Context, orderID uuid.UUID, paymentData []byte) error
	// ExpireDue transitions every open order past its window to Expired and
	// returns how many it expired. Safe to run concurrently across instances.
	ExpireDue(ctx context.Context, batchSize int) (int, error)
}

type orderService struct {
	store                   repository.Store
	defaultRateValidSeconds int
}

func NewOrderService(store repository.Store, defaultRateValidSeconds int) OrderService {
	if defaultRateValidSeconds <= 0 {
		defaultRateValidSeconds = 600
	}
	return &orderService{store: store, defaultRateValidSeconds: defaultRateValidSeconds}
}

func (s *orderService) Create(ctx context.Context, params CreateOrderParams) (*model.Order, error) {
	if params.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}
	if !params.PaymentType.Valid() {
		return nil, fmt.Errorf("unknown payment type %q: %w", params.PaymentType, ErrValidation)
	}
	if params.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("exchange rate must be positive: %w", ErrValidation)
	}

	rateValidSeconds := params.RateValidSeconds
	if rateValidSeconds <= 0 {
		rateValidSeconds = s.defaultRateValidSeconds
	}
	windowSeconds := rateValidSeconds
	if params.CustomExpiration != nil {
		windowSeconds = *params.CustomExpiration
	}
	if windowSeconds < 1 {
		return nil, fmt.Errorf("expiration window must be positive: %w", ErrValidation)
	}

	var order *model.Order
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByID(ctx, params.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", err)
		}

		product, err := tx.Products().GetByID(ctx, params.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("load product: %w", err)
		}
		if !product.IsActive {
			return ErrProductInactive
		}

		now := time.Now()
		fiatAmount := product.EffectivePrice().Mul(decimal.NewFromInt(int64(params.Quantity)))
		amount := fiatAmount
		if params.PaymentType == model.PaymentTypeCrypto {
			amount = fiatAmount.DivRound(params.ExchangeRate, 18)
		}

		order = &model.Order{
			UserID:           params.UserID,
			PaymentType:      params.PaymentType,
			Amount:           amount,
			FiatAmount:       fiatAmount,
			ExchangeRate:     params.ExchangeRate,
			RateValidSeconds: rateValidSeconds,
			CustomExpiration: params.CustomExpiration,
			ExpireAt:         now.Add(time.Duration(windowSeconds) * time.Second),
			Status:           model.OrderStatusCreated,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		entry := &model.StatusHistoryEntry{
			OrderID:   order.ID,
			ToStatus:  model.OrderStatusCreated,
			ChangedAt: now,
		}
		if err := tx.StatusHistory().Append(ctx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}

		userOrder := &model.UserOrder{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  params.Quantity,
			Status:    model.FulfillmentPending,
		}
		if err := tx.UserOrders().Create(ctx, userOrder); err != nil {
			return fmt.Errorf("create user order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Get(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

func (s *orderService) GetByExternalPaymentID(ctx context.Context, externalID string) (*model.Order, error) {
	order, err := s.store.Orders().GetByExternalPaymentID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order by external id: %w", err)
	}
	return order, nil
}

func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return s.store.Orders().ListByUser(ctx, userID)
}

func (s *orderService) History(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	return s.store.StatusHistory().ListByOrder(ctx, orderID)
}

func (s *orderService) Transition(ctx context.Context, orderID uuid.UUID, to model.OrderStatus, meta TransitionMeta) error {
	if !to.Valid() {
		return fmt.Errorf("unknown status %q: %w", to, ErrValidation)
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		return s.transitionTx(ctx, tx, orderID, to, meta, repository.StatusPatch{})
	})
}

func (s *orderService) transitionTx(ctx context.Context, tx repository.Store, orderID uuid.UUID, to model.OrderStatus, meta TransitionMeta, patch repository.StatusPatch) error {
	order, err := tx.Orders().GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("load order: %w", err)
	}

	// Duplicate webhook / poll delivery: already there, nothing to do.
	if order.Status == to {
		return nil
	}
	if !model.CanTransition(order.Status, to) {
		return fmt.Errorf("%s -> %s: %w", order.Status, to, ErrInvalidTransition)
	}

	now := time.Now()
	switch to {
	case model.OrderStatusPaid:
		if meta.TransactionID == "" {
			return ErrMissingTransactionID
		}
		patch.TransactionID = &meta.TransactionID
		patch.PaidAt = &now
	case model.OrderStatusExpired:
		// The sweep may only retire orders whose window has elapsed.
		if !order.IsDue(now) {
			return fmt.Errorf("order not yet due at %s: %w", order.ExpireAt.Format(time.RFC3339), ErrInvalidTransition)
		}
	}

	if err := tx.Orders().UpdateStatus(ctx, orderID, order.Status, to, patch); err != nil {
		if errors.Is(err, repository.ErrNoRowsUpdated) {
			current, rerr := tx.Orders().GetByID(ctx, orderID)
			if rerr != nil {
				return fmt.Errorf("re-read after missed guard: %w", rerr)
			}
			if current.Status == to {
				return nil
			}
			return ErrTransitionConflict
		}
		return fmt.Errorf("update status: %w", err)
	}

	metadata, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal transition metadata: %w", err)
	}
	entry := &model.StatusHistoryEntry{
		OrderID:    orderID,
		FromStatus: order.Status,
		ToStatus:   to,
		ChangedAt:  now,
		Metadata:   metadata,
	}
	if err := tx.StatusHistory().Append(ctx, entry); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *orderService) AttachExternalPayment(ctx context.Context, orderID uuid.UUID, externalID string, paymentData []byte) error {
	if externalID == "" {
		return fmt.Errorf("external payment id is empty: %w", ErrValidation)
	}
	patch := repository.StatusPatch{
		ExternalPaymentID: &externalID,
		PaymentData:       paymentData,
	}
	meta := TransitionMeta{Source: "provider", Reason: "payment registered", Extra: map[string]any{"external_payment_id": externalID}}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		return s.transitionTx(ctx, tx, orderID, model.OrderStatusAwaitingPayment, meta, patch)
	})
}

func (s *orderService) MarkChecked(ctx context.Context, orderID uuid.UUID, paymentData []byte) error {
	err := s.store.Orders().MarkChecked(ctx, orderID, time.Now(), paymentData)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func (s *orderService) ExpireDue(ctx context.Context, batchSize int) (int, error) {
	due, err := s.store.Orders().ListDueForExpiration(ctx, time.Now(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("list due orders: %w", err)
	}

	expired := 0
	meta := TransitionMeta{Source: "sweep", Reason: "validity window elapsed"}
	for _, order := range due {
		err := s.Transition(ctx, order.ID, model.OrderStatusExpired, meta)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
			// A payment landed between the listing and the transition; the
			// first valid transition won, which is the contract.
		default:
			return expired, fmt.Errorf("expire order %s: %w", order.ID, err)
		}
	}
	return expired, nil
}

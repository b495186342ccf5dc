package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/payment"
	"telemart/storecore/internal/repository"
	"telemart/storecore/internal/service"
)

const pollLeaseKey = "worker:poll:lease"

// Poller asks the payment provider about every order awaiting payment and
// feeds observations into the order state machine. Duplicate observations are
// no-ops there, so overlapping poll cycles are harmless.
type Poller struct {
	orders   service.OrderService
	store    repository.Store
	provider payment.Provider
	state    repository.StateStore
	logger   *zap.Logger
	interval time.Duration
	batch    int
}

func NewPoller(orders service.OrderService, store repository.Store, provider payment.Provider, state repository.StateStore, logger *zap.Logger, interval time.Duration, batch int) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		orders:   orders,
		store:    store,
		provider: provider,
		state:    state,
		logger:   logger,
		interval: interval,
		batch:    batch,
	}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("payment poller started", zap.Duration("interval", p.interval))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("payment poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	acquired, err := p.state.SetNX(ctx, pollLeaseKey, []byte("1"), p.interval)
	if err != nil {
		p.logger.Warn("poll lease check failed, polling anyway", zap.Error(err))
	} else if !acquired {
		return
	}

	pending, err := p.store.Orders().ListByStatus(ctx, model.OrderStatusAwaitingPayment, p.batch)
	if err != nil {
		p.logger.Error("list awaiting orders failed", zap.Error(err))
		return
	}

	for _, order := range pending {
		if order.ExternalPaymentID == nil {
			continue
		}
		p.checkOrder(ctx, order)
	}
}

func (p *Poller) checkOrder(ctx context.Context, order model.Order) {
	snapshot, err := p.provider.FetchStatus(ctx, *order.ExternalPaymentID)
	if err != nil {
		p.logger.Warn("provider poll failed",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return
	}

	if err := p.orders.MarkChecked(ctx, order.ID, snapshot.RawData); err != nil {
		p.logger.Warn("mark checked failed",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	meta := service.TransitionMeta{
		TransactionID: snapshot.TransactionID,
		Source:        "poller",
	}
	var terr error
	switch snapshot.State {
	case payment.StateSucceeded:
		terr = p.orders.Transition(ctx, order.ID, model.OrderStatusPaid, meta)
	case payment.StateFailed:
		meta.Reason = "provider reported failure"
		terr = p.orders.Transition(ctx, order.ID, model.OrderStatusFailed, meta)
	default:
		return
	}

	switch {
	case terr == nil:
		p.logger.Info("order transitioned from poll",
			zap.String("order_id", order.ID.String()), zap.String("state", string(snapshot.State)))
	case errors.Is(terr, service.ErrConflict), errors.Is(terr, service.ErrInvalidTransition):
		// Lost the race against a webhook or the sweep; the winner's
		// transition stands.
	case errors.Is(terr, service.ErrIntegrity):
		p.logger.Error("provider reported success without a transaction id",
			zap.String("order_id", order.ID.String()), zap.Error(terr))
	default:
		p.logger.Error("order transition failed",
			zap.String("order_id", order.ID.String()), zap.Error(terr))
	}
}

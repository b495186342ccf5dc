package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"telemart/storecore/internal/repository"
	"telemart/storecore/internal/service"
)

const sweepLeaseKey = "worker:sweep:lease"

// Sweeper periodically retires open orders whose validity window has elapsed.
// The transition table makes the sweep idempotent, so the lease is only an
// optimization to avoid redundant scans across instances.
type Sweeper struct {
	orders   service.OrderService
	state    repository.StateStore
	logger   *zap.Logger
	interval time.Duration
	batch    int
	leaseTTL time.Duration
}

func NewSweeper(orders service.OrderService, state repository.StateStore, logger *zap.Logger, interval time.Duration, batch int, leaseTTL time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if leaseTTL <= 0 {
		leaseTTL = interval
	}
	return &Sweeper{
		orders:   orders,
		state:    state,
		logger:   logger,
		interval: interval,
		batch:    batch,
		leaseTTL: leaseTTL,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("expiration sweeper started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiration sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	acquired, err := s.state.SetNX(ctx, sweepLeaseKey, []byte("1"), s.leaseTTL)
	if err != nil {
		s.logger.Warn("sweep lease check failed, sweeping anyway", zap.Error(err))
	} else if !acquired {
		return
	}

	expired, err := s.orders.ExpireDue(ctx, s.batch)
	if err != nil {
		s.logger.Error("expiration sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("expired overdue orders", zap.Int("count", expired))
	}
}

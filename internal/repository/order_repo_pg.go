package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
)

type pgOrderRepository struct {
	db *gorm.DB
}

func NewPGOrderRepository(db *gorm.DB) OrderRepository {
	return &pgOrderRepository{db: db}
}

func (r *pgOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *pgOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *pgOrderRepository) GetByExternalPaymentID(ctx context.Context, externalID string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).
		Where("external_payment_id = ?", externalID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *pgOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *pgOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, patch StatusPatch) error {
	updates := map[string]interface{}{"status": to}
	if patch.TransactionID != nil {
		updates["transaction_id"] = *patch.TransactionID
	}
	if patch.PaidAt != nil {
		updates["paid_at"] = *patch.PaidAt
	}
	if patch.ExternalPaymentID != nil {
		updates["external_payment_id"] = *patch.ExternalPaymentID
	}
	if patch.PaymentData != nil {
		updates["payment_data"] = patch.PaymentData
	}

	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsUpdated
	}
	return nil
}

func (r *pgOrderRepository) MarkChecked(ctx context.Context, id uuid.UUID, checkedAt time.Time, paymentData []byte) error {
	updates := map[string]interface{}{"last_checked_at": checkedAt}
	if paymentData != nil {
		updates["payment_data"] = paymentData
	}
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pgOrderRepository) ListDueForExpiration(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.WithContext(ctx).
		Where("status IN ? AND expire_at < ?",
			[]model.OrderStatus{model.OrderStatusCreated, model.OrderStatusAwaitingPayment}, now).
		Order("expire_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *pgOrderRepository) ListByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

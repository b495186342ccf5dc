package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
)

type pgUserOrderRepository struct {
	db *gorm.DB
}

func NewPGUserOrderRepository(db *gorm.DB) UserOrderRepository {
	return &pgUserOrderRepository{db: db}
}

func (r *pgUserOrderRepository) Create(ctx context.Context, userOrder *model.UserOrder) error {
	return r.db.WithContext(ctx).Create(userOrder).Error
}

func (r *pgUserOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.UserOrder, error) {
	var userOrder model.UserOrder
	if err := r.db.WithContext(ctx).First(&userOrder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &userOrder, nil
}

func (r *pgUserOrderRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*model.UserOrder, error) {
	var userOrder model.UserOrder
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&userOrder).Error; err != nil {
		return nil, err
	}
	return &userOrder, nil
}

func (r *pgUserOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.FulfillmentStatus, completedAt *time.Time) error {
	updates := map[string]interface{}{"status": to}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	res := r.db.WithContext(ctx).
		Model(&model.UserOrder{}).
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

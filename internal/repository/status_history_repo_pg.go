package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
)

type pgStatusHistoryRepository struct {
	db *gorm.DB
}

func NewPGStatusHistoryRepository(db *gorm.DB) StatusHistoryRepository {
	return &pgStatusHistoryRepository{db: db}
}

func (r *pgStatusHistoryRepository) Append(ctx context.Context, entry *model.StatusHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *pgStatusHistoryRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	var entries []model.StatusHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

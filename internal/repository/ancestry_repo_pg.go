package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
)

type pgAncestryRepository struct {
	db *gorm.DB
}

func NewPGAncestryRepository(db *gorm.DB) AncestryRepository {
	return &pgAncestryRepository{db: db}
}

func (r *pgAncestryRepository) InsertBatch(ctx context.Context, rows []model.AncestryRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *pgAncestryRepository) Ancestors(ctx context.Context, descendantID uuid.UUID) ([]model.AncestryRow, error) {
	var rows []model.AncestryRow
	if err := r.db.WithContext(ctx).
		Where("descendant_id = ?", descendantID).
		Order("depth ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *pgAncestryRepository) Descendants(ctx context.Context, ancestorID uuid.UUID) ([]model.AncestryRow, error) {
	var rows []model.AncestryRow
	if err := r.db.WithContext(ctx).
		Where("ancestor_id = ? AND depth > 0", ancestorID).
		Order("depth ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *pgAncestryRepository) HasSelfRow(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AncestryRow{}).
		Where("ancestor_id = ? AND descendant_id = ? AND depth = 0", userID, userID).
		Count(&count).Error
	return count > 0, err
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
)

type pgProductRepository struct {
	db *gorm.DB
}

func NewPGProductRepository(db *gorm.DB) ProductRepository {
	return &pgProductRepository{db: db}
}

func (r *pgProductRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *pgProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *pgProductRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("is_active = true").
		Order("created_at ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

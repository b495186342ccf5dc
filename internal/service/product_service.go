package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/repository"
)

type ProductService interface {
	Create(ctx context.Context, name string, kind model.ProductKind, price decimal.Decimal, value int64, discount decimal.Decimal) (*model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)
}

type productService struct {
	store repository.Store
}

func NewProductService(store repository.Store) ProductService {
	return &productService{store: store}
}

func (s *productService) Create(ctx context.Context, name string, kind model.ProductKind, price decimal.Decimal, value int64, discount decimal.Decimal) (*model.Product, error) {
	if name == "" {
		return nil, fmt.Errorf("product name is empty: %w", ErrValidation)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("price must be positive: %w", ErrValidation)
	}
	if discount.IsNegative() || discount.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("discount must be in [0, 1): %w", ErrValidation)
	}

	product := &model.Product{
		Name:     name,
		Kind:     kind,
		Price:    price,
		Value:    value,
		Discount: discount,
		IsActive: true,
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *productService) ListActive(ctx context.Context) ([]model.Product, error) {
	return s.store.Products().ListActive(ctx)
}

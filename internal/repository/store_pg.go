package repository

import (
	"context"

	"gorm.io/gorm"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore returns a Store backed by PostgreSQL via GORM.
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Users() UserRepository                   { return NewPGUserRepository(s.db) }
func (s *pgStore) Ancestry() AncestryRepository            { return NewPGAncestryRepository(s.db) }
func (s *pgStore) InviteCodes() InviteCodeRepository       { return NewPGInviteCodeRepository(s.db) }
func (s *pgStore) Products() ProductRepository             { return NewPGProductRepository(s.db) }
func (s *pgStore) Orders() OrderRepository                 { return NewPGOrderRepository(s.db) }
func (s *pgStore) StatusHistory() StatusHistoryRepository  { return NewPGStatusHistoryRepository(s.db) }
func (s *pgStore) UserOrders() UserOrderRepository         { return NewPGUserOrderRepository(s.db) }

func (s *pgStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}

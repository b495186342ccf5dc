package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/repository"
	"telemart/storecore/pkg/crypto"
)

type InviteService interface {
	// Issue creates a single-use code owned by ownerID. A zero ttl means the
	// code never expires.
	Issue(ctx context.Context, ownerID uuid.UUID, ttl time.Duration) (*model.InviteCode, error)
	// Redeem consumes the code exactly once and joins redeemerID under the
	// code's owner in the same transaction: a used code without a graph edge
	// cannot exist. Returns the inviter's id.
	Redeem(ctx context.Context, code string, redeemerID uuid.UUID) (uuid.UUID, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.InviteCode, error)
}

type inviteService struct {
	store repository.Store
}

func NewInviteService(store repository.Store) InviteService {
	return &inviteService{store: store}
}

func (s *inviteService) Issue(ctx context.Context, ownerID uuid.UUID, ttl time.Duration) (*model.InviteCode, error) {
	if _, err := s.store.Users().GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load owner: %w", err)
	}

	code, err := crypto.GenerateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("generate invite code: %w", err)
	}

	inviteCode := &model.InviteCode{
		Code:    code,
		OwnerID: ownerID,
	}
	if ttl > 0 {
		expiresAt := time.Now().Add(ttl)
		inviteCode.ExpiresAt = &expiresAt
	}
	if err := s.store.InviteCodes().Create(ctx, inviteCode); err != nil {
		return nil, fmt.Errorf("create invite code: %w", err)
	}
	return inviteCode, nil
}

func (s *inviteService) Redeem(ctx context.Context, code string, redeemerID uuid.UUID) (uuid.UUID, error) {
	var inviterID uuid.UUID
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		inviteCode, err := tx.InviteCodes().GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCodeNotFound
			}
			return fmt.Errorf("load invite code: %w", err)
		}

		if inviteCode.IsUsed {
			return ErrCodeAlreadyUsed
		}
		if inviteCode.IsExpired(time.Now()) {
			return ErrCodeExpired
		}
		if inviteCode.OwnerID == redeemerID {
			return ErrOwnCodeRedeem
		}

		// The guard on is_used decides the winner of a concurrent redeem.
		if err := tx.InviteCodes().MarkUsed(ctx, inviteCode.ID, redeemerID); err != nil {
			if errors.Is(err, repository.ErrNoRowsUpdated) {
				return ErrCodeAlreadyUsed
			}
			return fmt.Errorf("mark invite code used: %w", err)
		}

		if err := joinTx(ctx, tx, redeemerID, inviteCode.OwnerID); err != nil {
			return err
		}
		inviterID = inviteCode.OwnerID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return inviterID, nil
}

func (s *inviteService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.InviteCode, error) {
	return s.store.InviteCodes().ListByOwner(ctx, ownerID)
}

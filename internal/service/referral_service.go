package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/repository"
)

type ReferralService interface {
	// Join binds newUserID under inviterID, materializing the full closure:
	// one row per ancestor of the inviter (depth+1) plus the new user's
	// depth-0 self-row. All rows land or none do.
	Join(ctx context.Context, newUserID, inviterID uuid.UUID) error
	// Root registers a user with no inviter: just the self-row.
	Root(ctx context.Context, userID uuid.UUID) error
	Ancestors(ctx context.Context, userID uuid.UUID) ([]model.AncestryRow, error)
	Descendants(ctx context.Context, userID uuid.UUID) ([]model.AncestryRow, error)
}

type referralService struct {
	store repository.Store
}

func NewReferralService(store repository.Store) ReferralService {
	return &referralService{store: store}
}

func (s *referralService) Join(ctx context.Context, newUserID, inviterID uuid.UUID) error {
	if newUserID == inviterID {
		return ErrSelfInvite
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		return joinTx(ctx, tx, newUserID, inviterID)
	})
}

// joinTx runs the graph join inside an existing transaction so that invite
// redemption can share it.
func joinTx(ctx context.Context, tx repository.Store, newUserID, inviterID uuid.UUID) error {
	joined, err := tx.Ancestry().HasSelfRow(ctx, newUserID)
	if err != nil {
		return fmt.Errorf("check existing rows: %w", err)
	}
	if joined {
		return ErrAlreadyJoined
	}

	inviterChain, err := tx.Ancestry().Ancestors(ctx, inviterID)
	if err != nil {
		return fmt.Errorf("load inviter ancestors: %w", err)
	}
	if len(inviterChain) == 0 {
		return ErrUnknownInviter
	}

	owner := inviterID
	rows := make([]model.AncestryRow, 0, len(inviterChain)+1)
	rows = append(rows, model.AncestryRow{
		AncestorID:   newUserID,
		DescendantID: newUserID,
		Depth:        0,
		OwnerID:      &owner,
	})
	for _, ancestor := range inviterChain {
		rows = append(rows, model.AncestryRow{
			AncestorID:   ancestor.AncestorID,
			DescendantID: newUserID,
			Depth:        ancestor.Depth + 1,
			OwnerID:      &owner,
		})
	}
	if err := tx.Ancestry().InsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("insert ancestry rows: %w", err)
	}

	if err := tx.Users().SetInviter(ctx, newUserID, inviterID); err != nil {
		return fmt.Errorf("set inviter: %w", err)
	}
	return nil
}

func (s *referralService) Root(ctx context.Context, userID uuid.UUID) error {
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		return rootTx(ctx, tx, userID)
	})
}

func rootTx(ctx context.Context, tx repository.Store, userID uuid.UUID) error {
	joined, err := tx.Ancestry().HasSelfRow(ctx, userID)
	if err != nil {
		return fmt.Errorf("check existing rows: %w", err)
	}
	if joined {
		return ErrAlreadyJoined
	}
	row := model.AncestryRow{AncestorID: userID, DescendantID: userID, Depth: 0}
	if err := tx.Ancestry().InsertBatch(ctx, []model.AncestryRow{row}); err != nil {
		return fmt.Errorf("insert self row: %w", err)
	}
	return nil
}

func (s *referralService) Ancestors(ctx context.Context, userID uuid.UUID) ([]model.AncestryRow, error) {
	rows, err := s.store.Ancestry().Ancestors(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ancestors: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrUserNotFound
	}
	return rows, nil
}

func (s *referralService) Descendants(ctx context.Context, userID uuid.UUID) ([]model.AncestryRow, error) {
	joined, err := s.store.Ancestry().HasSelfRow(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check self row: %w", err)
	}
	if !joined {
		return nil, ErrUserNotFound
	}
	rows, err := s.store.Ancestry().Descendants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load descendants: %w", err)
	}
	return rows, nil
}

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
)

type CreateUserParams struct {
	Username    string
	DisplayName string
	// InviteCode, when set, redeems the code and joins the new user under
	// its owner atomically with user creation.
	InviteCode string
}

type UserService interface {
	Create(ctx context.Context, params CreateUserParams) (*model.User, error)
	Get(ctx context.Context, userID uuid.UUID) (*model.User, error)
	GrantVIP(ctx context.Context, userID uuid.UUID, level int, until *time.Time) error
	// AdjustCoins applies delta to the balance; it never drops below zero.
	AdjustCoins(ctx context.Context, userID uuid.UUID, delta int64) error
}

type userService struct {
	store repository.Store
}

func NewUserService(store repository.Store) UserService {
	return &userService{store: store}
}

func (s *userService) Create(ctx context.Context, params CreateUserParams) (*model.User, error) {
	var user *model.User
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		user = &model.User{
			Username:    params.Username,
			DisplayName: params.DisplayName,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		if params.InviteCode == "" {
			// No inviter: the user roots their own referral subtree.
			return rootTx(ctx, tx, user.ID)
		}

		inviteCode, err := tx.InviteCodes().GetByCode(ctx, params.InviteCode)
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
		if err := tx.InviteCodes().MarkUsed(ctx, inviteCode.ID, user.ID); err != nil {
			if errors.Is(err, repository.ErrNoRowsUpdated) {
				return ErrCodeAlreadyUsed
			}
			return fmt.Errorf("mark invite code used: %w", err)
		}
		return joinTx(ctx, tx, user.ID, inviteCode.OwnerID)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *userService) GrantVIP(ctx context.Context, userID uuid.UUID, level int, until *time.Time) error {
	if level < 1 {
		return fmt.Errorf("vip level must be at least 1: %w", ErrValidation)
	}
	err := s.store.Users().GrantVIP(ctx, userID, level, until)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *userService) AdjustCoins(ctx context.Context, userID uuid.UUID, delta int64) error {
	err := s.store.Users().AdjustCoins(ctx, userID, delta)
	if errors.Is(err, repository.ErrNoRowsUpdated) {
		// Either the user is unknown or the balance would go negative.
		if _, gerr := s.store.Users().GetByID(ctx, userID); errors.Is(gerr, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return ErrInsufficientCoins
	}
	return err
}

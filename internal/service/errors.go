package service

import (
	"errors"
	"fmt"
)

// Error kinds. Specific sentinels below wrap exactly one kind, so callers can
// branch on either the case (errors.Is(err, ErrCodeAlreadyUsed)) or the kind
// (errors.Is(err, ErrConflict)).
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrIntegrity marks a contract violation by the caller; it is logged
	// loudly and should never occur in a healthy deployment.
	ErrIntegrity = errors.New("integrity error")
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrCodeNotFound    = fmt.Errorf("invite code %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)

	ErrUnknownInviter = fmt.Errorf("inviter has no referral record: %w", ErrNotFound)
	ErrAlreadyJoined  = fmt.Errorf("user already joined the referral graph: %w", ErrConflict)
	ErrSelfInvite     = fmt.Errorf("user cannot invite themselves: %w", ErrValidation)

	ErrCodeAlreadyUsed = fmt.Errorf("invite code already used: %w", ErrConflict)
	ErrCodeExpired     = fmt.Errorf("invite code expired: %w", ErrValidation)
	ErrOwnCodeRedeem   = fmt.Errorf("invite code cannot be redeemed by its owner: %w", ErrValidation)

	ErrProductInactive       = fmt.Errorf("product is not active: %w", ErrValidation)
	ErrTransitionConflict    = fmt.Errorf("order changed concurrently: %w", ErrConflict)
	ErrMissingTransactionID  = fmt.Errorf("transition to paid requires a transaction id: %w", ErrIntegrity)
	ErrInsufficientCoins     = fmt.Errorf("coin balance cannot go negative: %w", ErrConflict)
	ErrFulfillmentFinalized  = fmt.Errorf("fulfillment already finalized: %w", ErrInvalidTransition)
	ErrFulfillmentNotFound   = fmt.Errorf("fulfillment %w", ErrNotFound)
)

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCreateUserWithoutCodeRootsSubtree(t *testing.T) {
	store := newTestStore()
	svc := NewUserService(store)

	user, err := svc.Create(context.Background(), CreateUserParams{Username: "alice"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	rows := mustAncestors(t, store, user.ID)
	if len(rows) != 1 || !rows[0].IsSelf() {
		t.Fatalf("expected a single self-row, got %+v", rows)
	}
	if user.InviterID != nil {
		t.Fatalf("root user has an inviter: %v", user.InviterID)
	}
}

func TestCreateUserWithInviteCode(t *testing.T) {
	store := newTestStore()
	svc := NewUserService(store)
	ctx := context.Background()

	owner := createRootUser(t, store, "owner")
	code, err := NewInviteService(store).Issue(ctx, owner.ID, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	user, err := svc.Create(ctx, CreateUserParams{Username: "bob", InviteCode: code.Code})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	rows := mustAncestors(t, store, user.ID)
	if len(rows) != 2 || rows[1].AncestorID != owner.ID || rows[1].Depth != 1 {
		t.Fatalf("expected owner at depth 1, got %+v", rows)
	}

	reloaded, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.InviterID == nil || *reloaded.InviterID != owner.ID {
		t.Fatalf("expected inviter %s, got %v", owner.ID, reloaded.InviterID)
	}

	usedCode, err := store.InviteCodes().GetByCode(ctx, code.Code)
	if err != nil {
		t.Fatalf("reload code: %v", err)
	}
	if !usedCode.IsUsed {
		t.Fatal("redeemed code not marked used")
	}
}

func TestCreateUserWithUnknownCode(t *testing.T) {
	store := newTestStore()
	svc := NewUserService(store)

	_, err := svc.Create(context.Background(), CreateUserParams{Username: "bob", InviteCode: "nope"})
	if !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

// A rejected code must roll user creation back with it.
func TestCreateUserRollsBackOnUsedCode(t *testing.T) {
	store := newTestStore()
	svc := NewUserService(store)
	ctx := context.Background()

	owner := createRootUser(t, store, "owner")
	code, err := NewInviteService(store).Issue(ctx, owner.ID, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Create(ctx, CreateUserParams{Username: "first", InviteCode: code.Code}); err != nil {
		t.Fatalf("first redeem: %v", err)
	}

	if _, err := svc.Create(ctx, CreateUserParams{Username: "second", InviteCode: code.Code}); !errors.Is(err, ErrCodeAlreadyUsed) {
		t.Fatalf("expected ErrCodeAlreadyUsed, got %v", err)
	}

	// Only the first redeemer hangs under the owner.
	descendants, err := store.Ancestry().Descendants(ctx, owner.ID)
	if err != nil {
		t.Fatalf("descendants: %v", err)
	}
	if len(descendants) != 1 {
		t.Fatalf("expected one descendant, got %d", len(descendants))
	}
}

func TestAdjustCoins(t *testing.T) {
	store := newTestStore()
	svc := NewUserService(store)
	ctx := context.Background()

	user := createRootUser(t, store, "alice")
	if err := svc.AdjustCoins(ctx, user.ID, 100); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := svc.AdjustCoins(ctx, user.ID, -40); err != nil {
		t.Fatalf("debit: %v", err)
	}

	if err := svc.AdjustCoins(ctx, user.ID, -100); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("expected ErrInsufficientCoins, got %v", err)
	}

	got, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.CoinBalance != 60 {
		t.Fatalf("balance = %d, want 60", got.CoinBalance)
	}
}

func TestAdjustCoinsUnknownUser(t *testing.T) {
	store := newTestStore()
	if err := NewUserService(store).AdjustCoins(context.Background(), uuid.New(), 10); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGrantVIP(t *testing.T) {
	store := newTestStore()
	svc := NewUserService(store)
	ctx := context.Background()

	user := createRootUser(t, store, "alice")
	until := time.Now().Add(30 * 24 * time.Hour)
	if err := svc.GrantVIP(ctx, user.ID, 2, &until); err != nil {
		t.Fatalf("grant vip: %v", err)
	}

	got, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.IsVIP || got.VIPLevel != 2 {
		t.Fatalf("vip not granted: isVIP=%v level=%d", got.IsVIP, got.VIPLevel)
	}
	if got.VIPUntil == nil || !got.VIPUntil.Equal(until) {
		t.Fatalf("vip until = %v, want %v", got.VIPUntil, until)
	}

	if err := svc.GrantVIP(ctx, user.ID, 0, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for level 0, got %v", err)
	}
	if err := svc.GrantVIP(ctx, uuid.New(), 1, nil); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

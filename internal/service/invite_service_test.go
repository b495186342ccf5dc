package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestIssueAndRedeem(t *testing.T) {
	store := newTestStore()
	invites := NewInviteService(store)
	ctx := context.Background()

	owner := createRootUser(t, store, "owner")
	redeemer := createUser(t, store, "redeemer")

	code, err := invites.Issue(ctx, owner.ID, 24*time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if code.Code == "" {
		t.Fatal("issued code has empty code string")
	}
	if code.ExpiresAt == nil {
		t.Fatal("issued code with ttl has no expiry")
	}

	inviterID, err := invites.Redeem(ctx, code.Code, redeemer.ID)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if inviterID != owner.ID {
		t.Fatalf("expected inviter %s, got %s", owner.ID, inviterID)
	}

	// Redeemer now hangs under the owner at depth 1.
	ancestors := mustAncestors(t, store, redeemer.ID)
	if len(ancestors) != 2 {
		t.Fatalf("expected 2 ancestry rows, got %d", len(ancestors))
	}
	if ancestors[1].AncestorID != owner.ID || ancestors[1].Depth != 1 {
		t.Fatalf("expected owner at depth 1, got (%s, %d)", ancestors[1].AncestorID, ancestors[1].Depth)
	}

	reloaded, err := store.InviteCodes().GetByCode(ctx, code.Code)
	if err != nil {
		t.Fatalf("reload code: %v", err)
	}
	if !reloaded.IsUsed || reloaded.UsedByUserID == nil || *reloaded.UsedByUserID != redeemer.ID {
		t.Fatalf("code not marked used by redeemer: %+v", reloaded)
	}

	// A later redemption attempt by anyone else fails AlreadyUsed.
	other := createUser(t, store, "other")
	if _, err := invites.Redeem(ctx, code.Code, other.ID); !errors.Is(err, ErrCodeAlreadyUsed) {
		t.Fatalf("expected ErrCodeAlreadyUsed, got %v", err)
	}
}

func TestIssueWithoutTTLNeverExpires(t *testing.T) {
	store := newTestStore()
	owner := createRootUser(t, store, "owner")

	code, err := NewInviteService(store).Issue(context.Background(), owner.ID, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if code.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", code.ExpiresAt)
	}
}

func TestIssueUnknownOwner(t *testing.T) {
	store := newTestStore()
	user := createUser(t, store, "ghost")
	store2 := newTestStore() // owner does not exist here

	if _, err := NewInviteService(store2).Issue(context.Background(), user.ID, 0); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRedeemExpiredCode(t *testing.T) {
	store := newTestStore()
	invites := NewInviteService(store)
	ctx := context.Background()

	owner := createRootUser(t, store, "owner")
	redeemer := createUser(t, store, "redeemer")

	code, err := invites.Issue(ctx, owner.ID, time.Nanosecond)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := invites.Redeem(ctx, code.Code, redeemer.ID); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
}

func TestRedeemOwnCode(t *testing.T) {
	store := newTestStore()
	invites := NewInviteService(store)
	ctx := context.Background()

	owner := createRootUser(t, store, "owner")
	code, err := invites.Issue(ctx, owner.ID, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := invites.Redeem(ctx, code.Code, owner.ID); !errors.Is(err, ErrOwnCodeRedeem) {
		t.Fatalf("expected ErrOwnCodeRedeem, got %v", err)
	}
}

func TestRedeemUnknownCode(t *testing.T) {
	store := newTestStore()
	redeemer := createUser(t, store, "redeemer")

	if _, err := NewInviteService(store).Redeem(context.Background(), "no-such-code", redeemer.ID); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

// A failed graph join must roll the redemption back: the code stays unused.
func TestRedeemRollsBackWhenJoinFails(t *testing.T) {
	store := newTestStore()
	invites := NewInviteService(store)
	ctx := context.Background()

	owner := createRootUser(t, store, "owner")
	redeemer := createRootUser(t, store, "redeemer") // already in the graph

	code, err := invites.Issue(ctx, owner.ID, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := invites.Redeem(ctx, code.Code, redeemer.ID); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}

	reloaded, err := store.InviteCodes().GetByCode(ctx, code.Code)
	if err != nil {
		t.Fatalf("reload code: %v", err)
	}
	if reloaded.IsUsed {
		t.Fatal("rolled-back redemption left the code marked used")
	}
}

func TestConcurrentRedeemExactlyOnce(t *testing.T) {
	store := newTestStore()
	invites := NewInviteService(store)
	ctx := context.Background()

	owner := createRootUser(t, store, "owner")
	first := createUser(t, store, "first")
	second := createUser(t, store, "second")

	code, err := invites.Issue(ctx, owner.ID, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = invites.Redeem(ctx, code.Code, first.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = invites.Redeem(ctx, code.Code, second.ID)
	}()
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrCodeAlreadyUsed):
			conflicts++
		default:
			t.Fatalf("unexpected redeem error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner and one AlreadyUsed, got %d/%d", wins, conflicts)
	}

	// Exactly one new edge under the owner.
	descendants, err := store.Ancestry().Descendants(ctx, owner.ID)
	if err != nil {
		t.Fatalf("descendants: %v", err)
	}
	if len(descendants) != 1 {
		t.Fatalf("expected exactly one new ancestry edge, got %d", len(descendants))
	}
}

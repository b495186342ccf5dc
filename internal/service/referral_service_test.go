package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRootCreatesSingleSelfRow(t *testing.T) {
	store := newTestStore()
	user := createRootUser(t, store, "alice")

	rows := mustAncestors(t, store, user.ID)
	if len(rows) != 1 {
		t.Fatalf("expected exactly one ancestry row, got %d", len(rows))
	}
	if !rows[0].IsSelf() {
		t.Fatalf("expected a (U, U, 0) self-row, got %+v", rows[0])
	}
}

func TestRootTwiceFailsAlreadyJoined(t *testing.T) {
	store := newTestStore()
	user := createRootUser(t, store, "alice")

	err := NewReferralService(store).Root(context.Background(), user.ID)
	if !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
}

func TestJoinChainDepths(t *testing.T) {
	store := newTestStore()
	svc := NewReferralService(store)
	ctx := context.Background()

	a := createRootUser(t, store, "a")
	b := createUser(t, store, "b")
	c := createUser(t, store, "c")

	if err := svc.Join(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("join b under a: %v", err)
	}
	if err := svc.Join(ctx, c.ID, b.ID); err != nil {
		t.Fatalf("join c under b: %v", err)
	}

	ancestors, err := svc.Ancestors(ctx, c.ID)
	if err != nil {
		t.Fatalf("ancestors of c: %v", err)
	}
	if len(ancestors) != 3 {
		t.Fatalf("expected 3 ancestors, got %d", len(ancestors))
	}
	want := []struct {
		ancestor uuid.UUID
		depth    int
	}{
		{c.ID, 0},
		{b.ID, 1},
		{a.ID, 2},
	}
	for i, w := range want {
		if ancestors[i].AncestorID != w.ancestor || ancestors[i].Depth != w.depth {
			t.Errorf("ancestors[%d] = (%s, %d), want (%s, %d)",
				i, ancestors[i].AncestorID, ancestors[i].Depth, w.ancestor, w.depth)
		}
	}

	descendants, err := svc.Descendants(ctx, a.ID)
	if err != nil {
		t.Fatalf("descendants of a: %v", err)
	}
	if len(descendants) != 2 {
		t.Fatalf("expected 2 descendants, got %d", len(descendants))
	}
	found := map[uuid.UUID]int{}
	for _, row := range descendants {
		found[row.DescendantID] = row.Depth
	}
	if found[b.ID] != 1 || found[c.ID] != 2 {
		t.Fatalf("unexpected descendant depths: %v", found)
	}
}

func TestJoinSetsDirectInviter(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	a := createRootUser(t, store, "a")
	b := createUser(t, store, "b")
	if err := NewReferralService(store).Join(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	got, err := store.Users().GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.InviterID == nil || *got.InviterID != a.ID {
		t.Fatalf("expected inviter %s, got %v", a.ID, got.InviterID)
	}
}

func TestJoinUnknownInviter(t *testing.T) {
	store := newTestStore()
	b := createUser(t, store, "b")

	err := NewReferralService(store).Join(context.Background(), b.ID, uuid.New())
	if !errors.Is(err, ErrUnknownInviter) {
		t.Fatalf("expected ErrUnknownInviter, got %v", err)
	}
	if rows := mustAncestors(t, store, b.ID); len(rows) != 0 {
		t.Fatalf("failed join left %d ancestry rows behind", len(rows))
	}
}

func TestJoinAlreadyJoined(t *testing.T) {
	store := newTestStore()
	svc := NewReferralService(store)
	ctx := context.Background()

	a := createRootUser(t, store, "a")
	b := createRootUser(t, store, "b")

	err := svc.Join(ctx, b.ID, a.ID)
	if !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
}

func TestJoinSelfInvite(t *testing.T) {
	store := newTestStore()
	a := createRootUser(t, store, "a")

	err := NewReferralService(store).Join(context.Background(), a.ID, a.ID)
	if !errors.Is(err, ErrSelfInvite) {
		t.Fatalf("expected ErrSelfInvite, got %v", err)
	}
}

func TestAncestorsUnknownUser(t *testing.T) {
	store := newTestStore()
	_, err := NewReferralService(store).Ancestors(context.Background(), uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

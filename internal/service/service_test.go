package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"telemart/storecore/internal/model"
	"telemart/storecore/internal/repository"
)

// Shared helpers for the service tests, which all run against the in-memory
// Store.

func newTestStore() repository.Store {
	return repository.NewMemoryStore()
}

func createUser(t *testing.T, store repository.Store, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// createRootUser creates a user and their depth-0 self-row.
func createRootUser(t *testing.T, store repository.Store, username string) *model.User {
	t.Helper()
	user := createUser(t, store, username)
	if err := NewReferralService(store).Root(context.Background(), user.ID); err != nil {
		t.Fatalf("root user %s: %v", username, err)
	}
	return user
}

func createProduct(t *testing.T, store repository.Store, name string, price int64) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:     name,
		Kind:     model.ProductKindCoins,
		Price:    decimal.NewFromInt(price),
		Value:    1000,
		IsActive: true,
	}
	if err := store.Products().Create(context.Background(), product); err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return product
}

func mustAncestors(t *testing.T, store repository.Store, userID uuid.UUID) []model.AncestryRow {
	t.Helper()
	rows, err := store.Ancestry().Ancestors(context.Background(), userID)
	if err != nil {
		t.Fatalf("ancestors: %v", err)
	}
	return rows
}

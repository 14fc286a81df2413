// Package testutil provides shared helpers for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spendfolio/spendfolio/internal/model"
	"github.com/spendfolio/spendfolio/internal/service"
	"github.com/spendfolio/spendfolio/internal/storage"
)

// TestDB wraps an in-memory database for tests.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database and registers cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedUser creates a user with the given external id and returns it.
func (db *TestDB) SeedUser(externalID string) *model.User {
	db.t.Helper()

	ctx := context.Background()
	user := &model.User{
		ID:         uuid.NewString(),
		ExternalID: externalID,
	}
	if err := db.Storage.SaveUser(ctx, user); err != nil {
		db.t.Fatalf("failed to seed user %q: %v", externalID, err)
	}

	saved, err := db.Storage.GetUserByExternalID(ctx, externalID)
	if err != nil {
		db.t.Fatalf("failed to reload user %q: %v", externalID, err)
	}
	return saved
}

// SeedStore creates a store, optionally pre-categorized, and returns it.
func (db *TestDB) SeedStore(name string, categoryID *int) *model.Store {
	db.t.Helper()

	ctx := context.Background()
	store := &model.Store{
		ID:         uuid.NewString(),
		Name:       name,
		CategoryID: categoryID,
	}
	if err := db.Storage.SaveStore(ctx, store); err != nil {
		db.t.Fatalf("failed to seed store %q: %v", name, err)
	}

	saved, err := db.Storage.GetStoreByName(ctx, name)
	if err != nil {
		db.t.Fatalf("failed to reload store %q: %v", name, err)
	}
	return saved
}

// SeedConsumption creates one consumption record for the user at the store.
func (db *TestDB) SeedConsumption(userID, storeID string, amount float64, purchasedAt time.Time) {
	db.t.Helper()

	record := model.ConsumptionRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		StoreID:     storeID,
		Amount:      amount,
		PurchasedAt: purchasedAt.UTC(),
	}
	record.Hash = record.GenerateHash()

	if err := db.Storage.SaveConsumptions(context.Background(), []model.ConsumptionRecord{record}); err != nil {
		db.t.Fatalf("failed to seed consumption: %v", err)
	}
}

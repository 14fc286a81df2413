package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/spendfolio/spendfolio/internal/model"
	"github.com/spendfolio/spendfolio/internal/service"
)

// Importer writes parsed purchases into the consumption ledger, creating
// users and stores on first sight. Imports are idempotent: duplicate records
// are detected by content hash and silently skipped.
type Importer struct {
	storage service.Storage
	parser  *Parser
	logger  *slog.Logger
}

// NewImporter creates a new consumption importer.
func NewImporter(storage service.Storage, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		storage: storage,
		parser:  NewParser(),
		logger:  logger,
	}
}

// ImportFile parses an OFX file and stores its purchases for the user,
// returning how many records were submitted.
func (i *Importer) ImportFile(ctx context.Context, externalUserID string, reader io.Reader) (int, error) {
	user, err := i.resolveUser(ctx, externalUserID)
	if err != nil {
		return 0, err
	}

	purchases, err := i.parser.ParseFile(ctx, reader)
	if err != nil {
		return 0, err
	}
	if len(purchases) == 0 {
		i.logger.Info("no purchases found in file", "user", externalUserID)
		return 0, nil
	}

	// Cache store lookups; statement files repeat merchants heavily.
	storeIDs := make(map[string]string)

	records := make([]model.ConsumptionRecord, 0, len(purchases))
	for _, purchase := range purchases {
		storeID, err := i.resolveStore(ctx, purchase.StoreName, storeIDs)
		if err != nil {
			return 0, err
		}

		record := model.ConsumptionRecord{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			StoreID:     storeID,
			Amount:      purchase.Amount,
			PurchasedAt: purchase.PostedAt.UTC(),
		}
		record.Hash = record.GenerateHash()
		records = append(records, record)
	}

	if err := i.storage.SaveConsumptions(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to save consumptions: %w", err)
	}

	i.logger.Info("imported consumption records",
		"user", externalUserID,
		"records", len(records))
	return len(records), nil
}

// resolveUser finds the user by external id, creating the row on first
// import.
func (i *Importer) resolveUser(ctx context.Context, externalUserID string) (*model.User, error) {
	user, err := i.storage.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &model.User{
		ID:         uuid.NewString(),
		ExternalID: externalUserID,
	}
	if err := i.storage.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Re-read in case a concurrent import created the row first.
	created, err := i.storage.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	if created != nil {
		return created, nil
	}
	return user, nil
}

// resolveStore finds or creates the store, caching ids across the batch.
func (i *Importer) resolveStore(ctx context.Context, name string, cache map[string]string) (string, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}

	store, err := i.storage.GetStoreByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to look up store %q: %w", name, err)
	}

	if store == nil {
		store = &model.Store{
			ID:   uuid.NewString(),
			Name: name,
		}
		if err := i.storage.SaveStore(ctx, store); err != nil {
			return "", fmt.Errorf("failed to create store %q: %w", name, err)
		}
	}

	cache[name] = store.ID
	return store.ID, nil
}

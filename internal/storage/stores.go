package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendfolio/spendfolio/internal/model"
)

// GetStoreByName returns the store with the given name, or nil if absent.
func (s *SQLiteStorage) GetStoreByName(ctx context.Context, name string) (*model.Store, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, category_id, created_at
		FROM stores
		WHERE name = ?`

	var store model.Store
	var categoryID sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&store.ID, &store.Name, &categoryID, &store.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Store not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query store: %w", err)
	}

	if categoryID.Valid {
		id := int(categoryID.Int64)
		store.CategoryID = &id
	}

	return &store, nil
}

// SaveStore inserts a store if it does not already exist.
func (s *SQLiteStorage) SaveStore(ctx context.Context, store *model.Store) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStore(store); err != nil {
		return err
	}

	if store.CreatedAt.IsZero() {
		store.CreatedAt = time.Now().UTC()
	}

	var categoryID sql.NullInt64
	if store.CategoryID != nil {
		categoryID = sql.NullInt64{Int64: int64(*store.CategoryID), Valid: true}
	}

	query := `
		INSERT INTO stores (id, name, category_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, store.ID, store.Name, categoryID, store.CreatedAt); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}

	return nil
}

// GetUncategorizedStores returns the distinct stores referenced by a user's
// consumption records in [start, end) that have no category assigned.
func (s *SQLiteStorage) GetUncategorizedStores(ctx context.Context, userID string, start, end time.Time) ([]model.Store, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	query := `
		SELECT DISTINCT st.id, st.name, st.created_at
		FROM stores st
		JOIN consumptions c ON c.store_id = st.id
		WHERE c.user_id = ? AND c.purchased_at >= ? AND c.purchased_at < ?
		  AND st.category_id IS NULL
		ORDER BY st.name`

	rows, err := s.db.QueryContext(ctx, query, userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query uncategorized stores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stores []model.Store
	for rows.Next() {
		var store model.Store
		if err := rows.Scan(&store.ID, &store.Name, &store.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	slog.Debug("retrieved uncategorized stores", "count", len(stores))
	return stores, nil
}

// AssignStoreCategory assigns a category to a store. The assignment is
// write-once: a store that already has a category is left untouched.
func (s *SQLiteStorage) AssignStoreCategory(ctx context.Context, storeID string, categoryID int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(storeID, "storeID"); err != nil {
		return err
	}

	query := `
		UPDATE stores
		SET category_id = ?
		WHERE id = ? AND category_id IS NULL`

	result, err := s.db.ExecContext(ctx, query, categoryID, storeID)
	if err != nil {
		return fmt.Errorf("failed to assign store category: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		slog.Debug("store already categorized, skipping assignment", "store_id", storeID)
	}

	return nil
}

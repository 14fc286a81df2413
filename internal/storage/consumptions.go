package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendfolio/spendfolio/internal/model"
)

// SaveConsumptions inserts consumption records, skipping duplicates by hash.
func (s *SQLiteStorage) SaveConsumptions(ctx context.Context, records []model.ConsumptionRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateConsumptions(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO consumptions (id, hash, user_id, store_id, amount, purchased_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	saved := 0
	for _, rec := range records {
		hash := rec.Hash
		if hash == "" {
			hash = rec.GenerateHash()
		}
		result, err := stmt.ExecContext(ctx,
			rec.ID, hash, rec.UserID, rec.StoreID, rec.Amount, rec.PurchasedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert consumption %s: %w", rec.ID, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			saved++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit consumptions: %w", err)
	}

	slog.Debug("saved consumption records", "total", len(records), "inserted", saved)
	return nil
}

// CountConsumptionsByPeriod counts a user's consumption records with a
// purchase time in [start, end).
func (s *SQLiteStorage) CountConsumptionsByPeriod(ctx context.Context, userID string, start, end time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	query := `
		SELECT COUNT(*)
		FROM consumptions
		WHERE user_id = ? AND purchased_at >= ? AND purchased_at < ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, start.UTC(), end.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count consumptions: %w", err)
	}
	return count, nil
}

// SumConsumptionsByPeriod sums all of a user's spend in [start, end),
// regardless of whether the store has a category assigned.
func (s *SQLiteStorage) SumConsumptionsByPeriod(ctx context.Context, userID string, start, end time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM consumptions
		WHERE user_id = ? AND purchased_at >= ? AND purchased_at < ?`

	var total float64
	if err := s.db.QueryRowContext(ctx, query, userID, start.UTC(), end.UTC()).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum consumptions: %w", err)
	}
	return total, nil
}

// CategorySpendByPeriod sums a user's spend per category in [start, end).
// Only records whose store has an assigned category contribute; the result
// maps category id to summed amount.
func (s *SQLiteStorage) CategorySpendByPeriod(ctx context.Context, userID string, start, end time.Time) (map[int]float64, error) {
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
		SELECT st.category_id, SUM(c.amount)
		FROM consumptions c
		JOIN stores st ON st.id = c.store_id
		WHERE c.user_id = ? AND c.purchased_at >= ? AND c.purchased_at < ?
		  AND st.category_id IS NOT NULL
		GROUP BY st.category_id`

	rows, err := s.db.QueryContext(ctx, query, userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query category spend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sums := make(map[int]float64)
	for rows.Next() {
		var categoryID int
		var amount float64
		if err := rows.Scan(&categoryID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan category spend: %w", err)
		}
		sums[categoryID] = amount
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category spend: %w", err)
	}

	return sums, nil
}

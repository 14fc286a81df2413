package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spendfolio/spendfolio/internal/model"
)

// GetRecommendationsByPeriod returns a user's recommendations created in
// [start, end), ordered by descending score and capped at three rows. The
// cap makes reads well-behaved even when racing writers stored extras.
func (s *SQLiteStorage) GetRecommendationsByPeriod(ctx context.Context, userID string, start, end time.Time) ([]model.Recommendation, error) {
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
		SELECT id, user_id, stock_name, score, created_at
		FROM recommendations
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY score DESC, id ASC
		LIMIT 3`

	rows, err := s.db.QueryContext(ctx, query, userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []model.Recommendation
	for rows.Next() {
		var rec model.Recommendation
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.StockName, &rec.Score, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}

	return recs, nil
}

// GetRecommendationByStock returns a user's recommendation for a specific
// stock created in [start, end), or nil if absent.
func (s *SQLiteStorage) GetRecommendationByStock(ctx context.Context, userID, stockName string, start, end time.Time) (*model.Recommendation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(stockName, "stockName"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, stock_name, score, created_at
		FROM recommendations
		WHERE user_id = ? AND stock_name = ? AND created_at >= ? AND created_at < ?
		ORDER BY score DESC
		LIMIT 1`

	var rec model.Recommendation
	err := s.db.QueryRowContext(ctx, query, userID, stockName, start.UTC(), end.UTC()).Scan(
		&rec.ID, &rec.UserID, &rec.StockName, &rec.Score, &rec.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Recommendation not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation: %w", err)
	}

	return &rec, nil
}

// SaveRecommendation inserts a single recommendation row. Callers persist
// a month's rows as independent inserts; there is deliberately no
// transaction or uniqueness constraint spanning the set.
func (s *SQLiteStorage) SaveRecommendation(ctx context.Context, rec *model.Recommendation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecommendation(rec); err != nil {
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations (user_id, stock_name, score, created_at)
		VALUES (?, ?, ?, ?)`,
		rec.UserID, rec.StockName, rec.Score, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save recommendation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get recommendation ID: %w", err)
	}
	rec.ID = id

	return nil
}

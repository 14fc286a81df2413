package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendfolio/spendfolio/internal/model"
)

// GetMonthlyStats returns the stat rows for (user, month), joined with the
// category name and ordered by percentage descending.
func (s *SQLiteStorage) GetMonthlyStats(ctx context.Context, userID string, month time.Time) ([]model.MonthlyStat, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT ms.user_id, ms.category_id, cat.name, ms.month, ms.percentage
		FROM monthly_stats ms
		JOIN categories cat ON cat.id = ms.category_id
		WHERE ms.user_id = ? AND ms.month = ?
		ORDER BY ms.percentage DESC`

	rows, err := s.db.QueryContext(ctx, query, userID, month.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []model.MonthlyStat
	for rows.Next() {
		var stat model.MonthlyStat
		if err := rows.Scan(&stat.UserID, &stat.CategoryID, &stat.CategoryName, &stat.Month, &stat.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan monthly stat: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly stats: %w", err)
	}

	return stats, nil
}

// SaveMonthlyStats bulk-inserts stat rows for one (user, month) period.
func (s *SQLiteStorage) SaveMonthlyStats(ctx context.Context, stats []model.MonthlyStat) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateStats(stats); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO monthly_stats (user_id, category_id, month, percentage)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, stat := range stats {
		if _, err := stmt.ExecContext(ctx,
			stat.UserID, stat.CategoryID, stat.Month.UTC(), stat.Percentage); err != nil {
			return fmt.Errorf("failed to insert monthly stat: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit monthly stats: %w", err)
	}

	slog.Info("saved monthly stats",
		"user_id", stats[0].UserID,
		"month", stats[0].Month.Format("2006-01"),
		"count", len(stats))
	return nil
}

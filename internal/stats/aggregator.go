// Package stats aggregates a user's monthly consumption into category-level
// spending percentages.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendfolio/spendfolio/internal/common"
	"github.com/spendfolio/spendfolio/internal/model"
	"github.com/spendfolio/spendfolio/internal/service"
)

// Classifier assigns a category label to a store name. Implementations never
// fail; they fall back to a default label instead.
type Classifier interface {
	Classify(ctx context.Context, storeName string) string
}

// Aggregator computes per-category spending percentages for one user and
// month, persisting the result exactly once per (user, month).
type Aggregator struct {
	storage    service.Storage
	classifier Classifier
	clock      common.Clock
	logger     *slog.Logger
}

// NewAggregator creates a new monthly spending aggregator.
func NewAggregator(storage service.Storage, classifier Classifier, clock common.Clock, logger *slog.Logger) *Aggregator {
	if clock == nil {
		clock = common.NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		storage:    storage,
		classifier: classifier,
		clock:      clock,
		logger:     logger,
	}
}

// Aggregate computes and persists the spending stats for the calendar month
// preceding target (or preceding now when target is nil). The operation is
// idempotent per (user, month): once a stat set exists it is authoritative
// and never recomputed, even if consumption records arrive later.
func (a *Aggregator) Aggregate(ctx context.Context, externalUserID string, target *time.Time) error {
	user, err := a.storage.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return fmt.Errorf("failed to resolve user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: user %s", common.ErrNotFound, externalUserID)
	}

	ref := a.clock.Now()
	if target != nil {
		ref = *target
	}
	start, end := priorMonthWindow(ref)

	a.logger.Info("aggregating monthly spending",
		"user", externalUserID,
		"month", start.Format("2006-01"))

	count, err := a.storage.CountConsumptionsByPeriod(ctx, user.ID, start, end)
	if err != nil {
		return fmt.Errorf("failed to count consumptions: %w", err)
	}
	if count == 0 {
		a.logger.Info("no consumption data for period",
			"user", externalUserID,
			"month", start.Format("2006-01"))
		return nil
	}

	if err := a.classifyStores(ctx, user.ID, start, end); err != nil {
		return err
	}

	total, err := a.storage.SumConsumptionsByPeriod(ctx, user.ID, start, end)
	if err != nil {
		return fmt.Errorf("failed to sum consumptions: %w", err)
	}

	sums, err := a.storage.CategorySpendByPeriod(ctx, user.ID, start, end)
	if err != nil {
		return fmt.Errorf("failed to sum category spend: %w", err)
	}

	existing, err := a.storage.GetMonthlyStats(ctx, user.ID, start)
	if err != nil {
		return fmt.Errorf("failed to check existing stats: %w", err)
	}
	if len(existing) > 0 {
		a.logger.Info("stats already exist for period, skipping",
			"user", externalUserID,
			"month", start.Format("2006-01"))
		return nil
	}

	stats := make([]model.MonthlyStat, 0, len(sums))
	for categoryID, amount := range sums {
		if amount == 0 {
			continue
		}
		percentage := 0.0
		if total > 0 {
			percentage = amount / total * 100
		}
		stats = append(stats, model.MonthlyStat{
			UserID:     user.ID,
			CategoryID: categoryID,
			Month:      start,
			Percentage: percentage,
		})
	}

	if len(stats) == 0 {
		return nil
	}

	if err := a.storage.SaveMonthlyStats(ctx, stats); err != nil {
		return fmt.Errorf("failed to save monthly stats: %w", err)
	}

	return nil
}

// classifyStores assigns categories to the period's uncategorized stores.
// A failure on an individual store is logged and skipped so the rest of the
// batch still gets classified.
func (a *Aggregator) classifyStores(ctx context.Context, userID string, start, end time.Time) error {
	stores, err := a.storage.GetUncategorizedStores(ctx, userID, start, end)
	if err != nil {
		return fmt.Errorf("failed to load uncategorized stores: %w", err)
	}

	for _, store := range stores {
		if err := a.assignCategory(ctx, &store); err != nil {
			a.logger.Error("failed to assign category to store",
				"store", store.Name,
				"error", err)
		}
	}

	return nil
}

// assignCategory classifies one store and persists the result, creating the
// category row on first use.
func (a *Aggregator) assignCategory(ctx context.Context, store *model.Store) error {
	name := a.classifier.Classify(ctx, store.Name)

	category, err := a.storage.CreateCategory(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create category %q: %w", name, err)
	}

	if err := a.storage.AssignStoreCategory(ctx, store.ID, category.ID); err != nil {
		return fmt.Errorf("failed to assign category: %w", err)
	}

	a.logger.Info("assigned category to store",
		"store", store.Name,
		"category", category.Name)
	return nil
}

// GetStats returns the user's spending breakdown for the month preceding
// now, aggregating it synchronously first if it does not exist yet.
func (a *Aggregator) GetStats(ctx context.Context, externalUserID string) (*model.SpendingStats, error) {
	user, err := a.storage.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", common.ErrNotFound, externalUserID)
	}

	start, _ := priorMonthWindow(a.clock.Now())

	rows, err := a.storage.GetMonthlyStats(ctx, user.ID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly stats: %w", err)
	}

	if len(rows) == 0 {
		if err := a.Aggregate(ctx, externalUserID, nil); err != nil {
			return nil, err
		}
		rows, err = a.storage.GetMonthlyStats(ctx, user.ID, start)
		if err != nil {
			return nil, fmt.Errorf("failed to reload monthly stats: %w", err)
		}
	}

	stats := make([]model.CategoryPercentage, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, model.CategoryPercentage{
			Category:   row.CategoryName,
			Percentage: row.Percentage,
		})
	}

	return &model.SpendingStats{
		PeriodStart: start,
		Stats:       stats,
	}, nil
}

// priorMonthWindow returns the half-open [start, end) window of the calendar
// month preceding ref, in UTC.
func priorMonthWindow(ref time.Time) (time.Time, time.Time) {
	ref = ref.UTC()
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	return monthStart.AddDate(0, -1, 0), monthStart
}

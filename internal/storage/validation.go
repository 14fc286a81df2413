// Package storage provides the data persistence layer for the spendfolio application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spendfolio/spendfolio/internal/model"
)

// Validation errors.
var (
	ErrNilContext            = errors.New("context cannot be nil")
	ErrEmptyString           = errors.New("string parameter cannot be empty")
	ErrNilParameter          = errors.New("parameter cannot be nil")
	ErrEmptySlice            = errors.New("slice cannot be empty")
	ErrInvalidDateRange      = errors.New("start date must be before end date")
	ErrInvalidUser           = errors.New("invalid user")
	ErrInvalidConsumption    = errors.New("invalid consumption record")
	ErrInvalidStore          = errors.New("invalid store")
	ErrInvalidStat           = errors.New("invalid monthly stat")
	ErrInvalidRecommendation = errors.New("invalid recommendation")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateUser validates a user.
func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if user.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidUser)
	}
	if user.ExternalID == "" {
		return fmt.Errorf("%w: missing external ID", ErrInvalidUser)
	}
	return nil
}

// validateConsumptions validates a slice of consumption records.
func validateConsumptions(records []model.ConsumptionRecord) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}

	for i, rec := range records {
		if err := validateConsumption(&rec); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
	}
	return nil
}

// validateConsumption validates a single consumption record.
func validateConsumption(rec *model.ConsumptionRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidConsumption)
	}
	if rec.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidConsumption)
	}
	if rec.StoreID == "" {
		return fmt.Errorf("%w: missing store ID", ErrInvalidConsumption)
	}
	if rec.Amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidConsumption)
	}
	if rec.PurchasedAt.IsZero() {
		return fmt.Errorf("%w: missing purchase time", ErrInvalidConsumption)
	}
	return nil
}

// validateStore validates a store.
func validateStore(store *model.Store) error {
	if store == nil {
		return fmt.Errorf("%w: store", ErrNilParameter)
	}
	if store.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidStore)
	}
	if strings.TrimSpace(store.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidStore)
	}
	return nil
}

// validateStats validates a slice of monthly stats.
func validateStats(stats []model.MonthlyStat) error {
	if stats == nil {
		return fmt.Errorf("%w: stats", ErrNilParameter)
	}
	if len(stats) == 0 {
		return fmt.Errorf("%w: stats", ErrEmptySlice)
	}
	for i, stat := range stats {
		if stat.UserID == "" {
			return fmt.Errorf("stat at index %d: %w: missing user ID", i, ErrInvalidStat)
		}
		if stat.CategoryID == 0 {
			return fmt.Errorf("stat at index %d: %w: missing category ID", i, ErrInvalidStat)
		}
		if stat.Month.IsZero() {
			return fmt.Errorf("stat at index %d: %w: missing month", i, ErrInvalidStat)
		}
		if stat.Percentage < 0 || stat.Percentage > 100 {
			return fmt.Errorf("stat at index %d: %w: percentage must be between 0 and 100", i, ErrInvalidStat)
		}
	}
	return nil
}

// validateRecommendation validates a recommendation.
func validateRecommendation(rec *model.Recommendation) error {
	if rec == nil {
		return fmt.Errorf("%w: recommendation", ErrNilParameter)
	}
	if rec.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidRecommendation)
	}
	if strings.TrimSpace(rec.StockName) == "" {
		return fmt.Errorf("%w: missing stock name", ErrInvalidRecommendation)
	}
	if rec.Score < 0 || rec.Score > 100 {
		return fmt.Errorf("%w: score must be between 0 and 100", ErrInvalidRecommendation)
	}
	return nil
}

// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/spendfolio/spendfolio/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// User operations. Users are owned by the identity subsystem; the
	// application resolves them by external id and never deletes them.
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) error

	// Consumption operations. Records are read-only after import.
	SaveConsumptions(ctx context.Context, records []model.ConsumptionRecord) error
	CountConsumptionsByPeriod(ctx context.Context, userID string, start, end time.Time) (int, error)
	SumConsumptionsByPeriod(ctx context.Context, userID string, start, end time.Time) (float64, error)
	CategorySpendByPeriod(ctx context.Context, userID string, start, end time.Time) (map[int]float64, error)

	// Store operations
	GetStoreByName(ctx context.Context, name string) (*model.Store, error)
	SaveStore(ctx context.Context, store *model.Store) error
	GetUncategorizedStores(ctx context.Context, userID string, start, end time.Time) ([]model.Store, error)
	AssignStoreCategory(ctx context.Context, storeID string, categoryID int) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)

	// Monthly stat operations
	GetMonthlyStats(ctx context.Context, userID string, month time.Time) ([]model.MonthlyStat, error)
	SaveMonthlyStats(ctx context.Context, stats []model.MonthlyStat) error

	// Recommendation operations
	GetRecommendationsByPeriod(ctx context.Context, userID string, start, end time.Time) ([]model.Recommendation, error)
	GetRecommendationByStock(ctx context.Context, userID, stockName string, start, end time.Time) (*model.Recommendation, error)
	SaveRecommendation(ctx context.Context, rec *model.Recommendation) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

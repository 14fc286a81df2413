// Package recommend produces AI stock recommendations and briefings derived
// from a user's monthly spending breakdown.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spendfolio/spendfolio/internal/common"
	"github.com/spendfolio/spendfolio/internal/llm"
	"github.com/spendfolio/spendfolio/internal/model"
	"github.com/spendfolio/spendfolio/internal/service"
)

// StatsProvider supplies a user's spending breakdown for the prior month.
type StatsProvider interface {
	GetStats(ctx context.Context, externalUserID string) (*model.SpendingStats, error)
}

// Engine generates at most three stock recommendations per user per calendar
// month. Once three exist for a month they are returned verbatim and never
// regenerated.
type Engine struct {
	storage   service.Storage
	client    llm.Client
	stats     StatsProvider
	clock     common.Clock
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// NewEngine creates a new recommendation engine.
func NewEngine(storage service.Storage, client llm.Client, stats StatsProvider, clock common.Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = common.NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		storage: storage,
		client:  client,
		stats:   stats,
		clock:   clock,
		logger:  logger,
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// GetRecommendations returns the user's stock picks for the current calendar
// month, generating them first if fewer than three exist. Generation is
// fail-soft: an unusable model response yields an empty set rather than an
// error, so the caller can retry on a later request.
func (e *Engine) GetRecommendations(ctx context.Context, externalUserID string) (*model.RecommendationSet, error) {
	user, err := e.storage.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", common.ErrNotFound, externalUserID)
	}

	now := e.clock.Now()
	start, end := currentMonthWindow(now)

	existing, err := e.storage.GetRecommendationsByPeriod(ctx, user.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}
	if len(existing) >= 3 {
		// A write race can store more than three rows for the month;
		// readers still see at most three.
		return recommendationSet(now, existing[:3]), nil
	}

	summary, err := e.spendingSummary(ctx, externalUserID)
	if err != nil {
		return nil, err
	}
	if summary == "" {
		e.logger.Info("no spending data to recommend from", "user", externalUserID)
		return &model.RecommendationSet{Date: now, Stocks: []string{}}, nil
	}

	picks, err := e.generatePicks(ctx, summary)
	if err != nil {
		e.logger.Error("stock recommendation failed",
			"user", externalUserID,
			"error", err)
		return &model.RecommendationSet{Date: now, Stocks: []string{}}, nil
	}

	e.persistPicks(ctx, user.ID, picks)

	recs := make([]model.Recommendation, 0, len(picks))
	for _, pick := range picks {
		recs = append(recs, model.Recommendation{
			UserID:    user.ID,
			StockName: pick.Name,
			Score:     pick.Score,
		})
	}
	sortByScore(recs)
	return recommendationSet(now, recs), nil
}

// generatePicks asks the model for three picks and parses the response.
func (e *Engine) generatePicks(ctx context.Context, summary string) ([]llm.StockPick, error) {
	prompt := llm.RecommendationPrompt(summary)

	var response string
	err := common.WithRetry(ctx, func() error {
		resp, err := e.client.Generate(ctx, prompt)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		response = resp
		return nil
	}, e.retryOpts)
	if err != nil {
		return nil, err
	}

	return llm.ParseStockPicks(response)
}

// persistPicks stores each pick concurrently. Individual insert failures are
// logged and do not fail the request; no uniqueness constraint protects the
// set, so concurrent callers can race to more than three rows.
func (e *Engine) persistPicks(ctx context.Context, userID string, picks []llm.StockPick) {
	var wg sync.WaitGroup
	for _, pick := range picks {
		wg.Add(1)
		go func(pick llm.StockPick) {
			defer wg.Done()
			rec := &model.Recommendation{
				UserID:    userID,
				StockName: pick.Name,
				Score:     pick.Score,
				CreatedAt: e.clock.Now().UTC(),
			}
			if err := e.storage.SaveRecommendation(ctx, rec); err != nil {
				e.logger.Error("failed to save recommendation",
					"stock", pick.Name,
					"error", err)
			}
		}(pick)
	}
	wg.Wait()
}

// spendingSummary formats the user's prior-month breakdown for prompting.
// An empty string means there is nothing to recommend from.
func (e *Engine) spendingSummary(ctx context.Context, externalUserID string) (string, error) {
	stats, err := e.stats.GetStats(ctx, externalUserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", err
		}
		e.logger.Error("failed to load spending stats",
			"user", externalUserID,
			"error", err)
		return "", nil
	}
	if stats == nil || len(stats.Stats) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(stats.Stats))
	for _, s := range stats.Stats {
		parts = append(parts, fmt.Sprintf("%s %.1f%%", s.Category, s.Percentage))
	}
	return strings.Join(parts, ", "), nil
}

// recommendationSet maps stored recommendations to the caller-facing view.
func recommendationSet(date time.Time, recs []model.Recommendation) *model.RecommendationSet {
	stocks := make([]string, 0, len(recs))
	for _, rec := range recs {
		stocks = append(stocks, rec.StockName)
	}
	return &model.RecommendationSet{Date: date, Stocks: stocks}
}

// sortByScore orders recommendations by descending score, matching the
// storage ordering for sets read back later.
func sortByScore(recs []model.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}

// currentMonthWindow returns the half-open [start, end) window of ref's
// calendar month, in UTC.
func currentMonthWindow(ref time.Time) (time.Time, time.Time) {
	ref = ref.UTC()
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

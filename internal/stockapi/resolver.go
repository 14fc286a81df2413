package stockapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/spendfolio/spendfolio/internal/common"
	"github.com/spendfolio/spendfolio/internal/model"
)

// maxPriceAttempts bounds how many trading days the resolver walks back
// looking for a quote before giving up.
const maxPriceAttempts = 10

// QuoteFetcher fetches one stock's quote for one basis date.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, stockName string, date time.Time) (*model.StockQuote, error)
}

// Resolver finds the most recent available quote for a stock by walking back
// through trading days. The upstream publishes nothing on holidays, so a
// quiet empty day just means the search moves one trading day earlier.
type Resolver struct {
	fetcher QuoteFetcher
	clock   common.Clock
	logger  *slog.Logger
}

// NewResolver creates a price resolver on top of a quote fetcher.
func NewResolver(fetcher QuoteFetcher, clock common.Clock, logger *slog.Logger) *Resolver {
	if clock == nil {
		clock = common.NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fetcher: fetcher,
		clock:   clock,
		logger:  logger,
	}
}

// GetPrice returns the stock's latest available quote, starting from the
// last trading day before today and walking back up to ten attempts.
// Transport and upstream errors propagate immediately; exhausting all
// attempts without data returns (nil, nil).
func (r *Resolver) GetPrice(ctx context.Context, stockName string) (*model.StockQuote, error) {
	now := r.clock.Now().UTC()
	return r.GetPriceAsOf(ctx, stockName, startOfDay(now).AddDate(0, 0, -1))
}

// GetPriceAsOf is GetPrice anchored at an explicit as-of date instead of
// yesterday.
func (r *Resolver) GetPriceAsOf(ctx context.Context, stockName string, asOf time.Time) (*model.StockQuote, error) {
	candidate := lastTradingDayOnOrBefore(startOfDay(asOf))

	for attempt := 0; attempt < maxPriceAttempts; attempt++ {
		quote, err := r.fetcher.FetchQuote(ctx, stockName, candidate)
		if err != nil {
			return nil, err
		}
		if quote != nil {
			return quote, nil
		}

		r.logger.Info("no quote for basis date, trying earlier trading day",
			"stock", stockName,
			"date", candidate.Format("2006-01-02"))
		candidate = lastTradingDayOnOrBefore(candidate.AddDate(0, 0, -1))
	}

	r.logger.Warn("no quote found within attempt window", "stock", stockName)
	return nil, nil
}

// lastTradingDayOnOrBefore walks back from date to the nearest weekday,
// checking at most ten days. The bound can never be hit with a real
// calendar; if it somehow is, the original date comes back unchanged.
func lastTradingDayOnOrBefore(date time.Time) time.Time {
	candidate := date
	for i := 0; i < 10; i++ {
		switch candidate.Weekday() {
		case time.Saturday, time.Sunday:
			candidate = candidate.AddDate(0, 0, -1)
		default:
			return candidate
		}
	}
	return date
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendfolio/spendfolio/internal/common"
	"github.com/spendfolio/spendfolio/internal/model"
	"github.com/spendfolio/spendfolio/internal/testutil"
)

type stubClient struct {
	response string
	err      error
	calls    int
}

func (s *stubClient) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type stubStats struct {
	stats *model.SpendingStats
	err   error
}

func (s *stubStats) GetStats(_ context.Context, _ string) (*model.SpendingStats, error) {
	return s.stats, s.err
}

var testClock = common.FixedClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))

func spendingFixture() *stubStats {
	return &stubStats{stats: &model.SpendingStats{
		PeriodStart: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Stats: []model.CategoryPercentage{
			{Category: "Food & Drink", Percentage: 60},
			{Category: "Transport", Percentage: 40},
		},
	}}
}

func TestGetRecommendations(t *testing.T) {
	ctx := context.Background()
	august := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	september := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("generates and persists three picks", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := db.SeedUser("user-1")
		client := &stubClient{response: "Samsung Electronics:85, LG Chem:78, Naver:82"}
		engine := NewEngine(db.Storage, client, spendingFixture(), testClock, nil)

		set, err := engine.GetRecommendations(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Samsung Electronics", "Naver", "LG Chem"}, set.Stocks)

		recs, err := db.Storage.GetRecommendationsByPeriod(ctx, user.ID, august, september)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "Samsung Electronics", recs[0].StockName)
		assert.InDelta(t, 85.0, recs[0].Score, 0.001)
	})

	t.Run("existing set is returned without generation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := db.SeedUser("user-1")
		for _, rec := range []model.Recommendation{
			{UserID: user.ID, StockName: "Kakao", Score: 90, CreatedAt: august.AddDate(0, 0, 2)},
			{UserID: user.ID, StockName: "Coupang", Score: 80, CreatedAt: august.AddDate(0, 0, 2)},
			{UserID: user.ID, StockName: "Hyundai Motor", Score: 70, CreatedAt: august.AddDate(0, 0, 2)},
		} {
			r := rec
			require.NoError(t, db.Storage.SaveRecommendation(ctx, &r))
		}

		client := &stubClient{response: "A:1, B:2, C:3"}
		engine := NewEngine(db.Storage, client, spendingFixture(), testClock, nil)

		set, err := engine.GetRecommendations(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Kakao", "Coupang", "Hyundai Motor"}, set.Stocks)
		assert.Zero(t, client.calls)
	})

	t.Run("extra rows from a write race are capped on read", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := db.SeedUser("user-1")
		for _, rec := range []model.Recommendation{
			{UserID: user.ID, StockName: "Kakao", Score: 90, CreatedAt: august.AddDate(0, 0, 2)},
			{UserID: user.ID, StockName: "Coupang", Score: 80, CreatedAt: august.AddDate(0, 0, 2)},
			{UserID: user.ID, StockName: "Hyundai Motor", Score: 70, CreatedAt: august.AddDate(0, 0, 2)},
			{UserID: user.ID, StockName: "Naver", Score: 95, CreatedAt: august.AddDate(0, 0, 2)},
		} {
			r := rec
			require.NoError(t, db.Storage.SaveRecommendation(ctx, &r))
		}

		client := &stubClient{response: "A:1, B:2, C:3"}
		engine := NewEngine(db.Storage, client, spendingFixture(), testClock, nil)

		set, err := engine.GetRecommendations(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Naver", "Kakao", "Coupang"}, set.Stocks)
		assert.Zero(t, client.calls)
	})

	t.Run("last month's set does not satisfy this month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := db.SeedUser("user-1")
		july := august.AddDate(0, -1, 0)
		for _, name := range []string{"Kakao", "Coupang", "Hyundai Motor"} {
			rec := model.Recommendation{UserID: user.ID, StockName: name, Score: 75, CreatedAt: july.AddDate(0, 0, 5)}
			require.NoError(t, db.Storage.SaveRecommendation(ctx, &rec))
		}

		client := &stubClient{response: "Samsung Electronics:85, LG Chem:78, Naver:82"}
		engine := NewEngine(db.Storage, client, spendingFixture(), testClock, nil)

		set, err := engine.GetRecommendations(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1, client.calls)
		assert.Len(t, set.Stocks, 3)
		assert.Contains(t, set.Stocks, "Samsung Electronics")
	})

	t.Run("no spending data yields empty set without writes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := db.SeedUser("user-1")
		client := &stubClient{response: "A:1, B:2, C:3"}
		stats := &stubStats{stats: &model.SpendingStats{Stats: []model.CategoryPercentage{}}}
		engine := NewEngine(db.Storage, client, stats, testClock, nil)

		set, err := engine.GetRecommendations(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, set.Stocks)
		assert.Zero(t, client.calls)

		recs, err := db.Storage.GetRecommendationsByPeriod(ctx, user.ID, august, september)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("malformed model output fails soft", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := db.SeedUser("user-1")
		client := &stubClient{response: "I would rather not pick stocks."}
		engine := NewEngine(db.Storage, client, spendingFixture(), testClock, nil)

		set, err := engine.GetRecommendations(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, set.Stocks)

		recs, err := db.Storage.GetRecommendationsByPeriod(ctx, user.ID, august, september)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("unknown user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		engine := NewEngine(db.Storage, &stubClient{}, spendingFixture(), testClock, nil)

		_, err := engine.GetRecommendations(ctx, "nobody")
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrNotFound))
	})
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendfolio/spendfolio/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStorage, externalID string) *model.User {
	t.Helper()
	ctx := context.Background()

	user := &model.User{ID: uuid.NewString(), ExternalID: externalID}
	require.NoError(t, s.SaveUser(ctx, user))

	saved, err := s.GetUserByExternalID(ctx, externalID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	return saved
}

func seedStore(t *testing.T, s *SQLiteStorage, name string) *model.Store {
	t.Helper()
	ctx := context.Background()

	store := &model.Store{ID: uuid.NewString(), Name: name}
	require.NoError(t, s.SaveStore(ctx, store))

	saved, err := s.GetStoreByName(ctx, name)
	require.NoError(t, err)
	require.NotNil(t, saved)
	return saved
}

func seedConsumption(t *testing.T, s *SQLiteStorage, userID, storeID string, amount float64, at time.Time) {
	t.Helper()

	record := model.ConsumptionRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		StoreID:     storeID,
		Amount:      amount,
		PurchasedAt: at.UTC(),
	}
	record.Hash = record.GenerateHash()
	require.NoError(t, s.SaveConsumptions(context.Background(), []model.ConsumptionRecord{record}))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	t.Run("absent user is nil not error", func(t *testing.T) {
		user, err := s.GetUserByExternalID(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("save and reload", func(t *testing.T) {
		user := seedUser(t, s, "ext-1")
		assert.Equal(t, "ext-1", user.ExternalID)
		assert.NotEmpty(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("duplicate external id keeps first row", func(t *testing.T) {
		first := seedUser(t, s, "ext-dup")
		dup := &model.User{ID: uuid.NewString(), ExternalID: "ext-dup"}
		require.NoError(t, s.SaveUser(ctx, dup))

		reloaded, err := s.GetUserByExternalID(ctx, "ext-dup")
		require.NoError(t, err)
		assert.Equal(t, first.ID, reloaded.ID)
	})
}

func TestConsumptions(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	user := seedUser(t, s, "ext-1")
	store := seedStore(t, s, "Sushi Palace")

	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	seedConsumption(t, s, user.ID, store.ID, 300, july.AddDate(0, 0, 4))
	seedConsumption(t, s, user.ID, store.ID, 700, july.AddDate(0, 0, 20))
	seedConsumption(t, s, user.ID, store.ID, 999, august.AddDate(0, 0, 1))

	t.Run("count respects half open window", func(t *testing.T) {
		count, err := s.CountConsumptionsByPeriod(ctx, user.ID, july, august)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("boundary record belongs to the next window", func(t *testing.T) {
		seedConsumption(t, s, user.ID, store.ID, 50, august)
		count, err := s.CountConsumptionsByPeriod(ctx, user.ID, july, august)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("sum over window", func(t *testing.T) {
		total, err := s.SumConsumptionsByPeriod(ctx, user.ID, july, august)
		require.NoError(t, err)
		assert.InDelta(t, 1000.0, total, 0.001)
	})

	t.Run("empty window sums to zero", func(t *testing.T) {
		total, err := s.SumConsumptionsByPeriod(ctx, user.ID, july.AddDate(-1, 0, 0), july.AddDate(-1, 1, 0))
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("duplicate hash is skipped on insert", func(t *testing.T) {
		record := model.ConsumptionRecord{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			StoreID:     store.ID,
			Amount:      300,
			PurchasedAt: july.AddDate(0, 0, 4),
		}
		record.Hash = record.GenerateHash()
		require.NoError(t, s.SaveConsumptions(ctx, []model.ConsumptionRecord{record}))

		count, err := s.CountConsumptionsByPeriod(ctx, user.ID, july, august)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestCategorySpendByPeriod(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	user := seedUser(t, s, "ext-1")

	food, err := s.CreateCategory(ctx, "Food & Drink")
	require.NoError(t, err)

	categorized := seedStore(t, s, "Sushi Palace")
	require.NoError(t, s.AssignStoreCategory(ctx, categorized.ID, food.ID))
	uncategorized := seedStore(t, s, "Mystery Shop")

	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	seedConsumption(t, s, user.ID, categorized.ID, 300, july.AddDate(0, 0, 2))
	seedConsumption(t, s, user.ID, categorized.ID, 200, july.AddDate(0, 0, 3))
	seedConsumption(t, s, user.ID, uncategorized.ID, 500, july.AddDate(0, 0, 4))

	sums, err := s.CategorySpendByPeriod(ctx, user.ID, july, august)
	require.NoError(t, err)

	// Uncategorized spend contributes to the total but not to any category.
	require.Len(t, sums, 1)
	assert.InDelta(t, 500.0, sums[food.ID], 0.001)

	total, err := s.SumConsumptionsByPeriod(ctx, user.ID, july, august)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, total, 0.001)
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	t.Run("category assignment is write once", func(t *testing.T) {
		store := seedStore(t, s, "Sushi Palace")
		food, err := s.CreateCategory(ctx, "Food & Drink")
		require.NoError(t, err)
		transport, err := s.CreateCategory(ctx, "Transport")
		require.NoError(t, err)

		require.NoError(t, s.AssignStoreCategory(ctx, store.ID, food.ID))
		require.NoError(t, s.AssignStoreCategory(ctx, store.ID, transport.ID))

		reloaded, err := s.GetStoreByName(ctx, "Sushi Palace")
		require.NoError(t, err)
		require.NotNil(t, reloaded.CategoryID)
		assert.Equal(t, food.ID, *reloaded.CategoryID)
	})

	t.Run("uncategorized stores are scoped to the window", func(t *testing.T) {
		user := seedUser(t, s, "ext-window")
		inWindow := seedStore(t, s, "July Shop")
		outOfWindow := seedStore(t, s, "August Shop")

		july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		august := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		seedConsumption(t, s, user.ID, inWindow.ID, 10, july.AddDate(0, 0, 1))
		seedConsumption(t, s, user.ID, outOfWindow.ID, 10, august.AddDate(0, 0, 1))

		stores, err := s.GetUncategorizedStores(ctx, user.ID, july, august)
		require.NoError(t, err)
		require.Len(t, stores, 1)
		assert.Equal(t, "July Shop", stores[0].Name)
	})
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	t.Run("create then get", func(t *testing.T) {
		created, err := s.CreateCategory(ctx, "Food & Drink")
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		found, err := s.GetCategoryByName(ctx, "Food & Drink")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("create is idempotent by name", func(t *testing.T) {
		first, err := s.CreateCategory(ctx, "Transport")
		require.NoError(t, err)
		second, err := s.CreateCategory(ctx, "Transport")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("absent category is nil not error", func(t *testing.T) {
		found, err := s.GetCategoryByName(ctx, "Nope")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("list is ordered by name", func(t *testing.T) {
		_, err := s.CreateCategory(ctx, "Entertainment")
		require.NoError(t, err)

		categories, err := s.GetCategories(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(categories), 3)
		for i := 1; i < len(categories); i++ {
			assert.LessOrEqual(t, categories[i-1].Name, categories[i].Name)
		}
	})
}

func TestMonthlyStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	user := seedUser(t, s, "ext-1")

	food, err := s.CreateCategory(ctx, "Food & Drink")
	require.NoError(t, err)
	transport, err := s.CreateCategory(ctx, "Transport")
	require.NoError(t, err)

	july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveMonthlyStats(ctx, []model.MonthlyStat{
		{UserID: user.ID, CategoryID: food.ID, Month: july, Percentage: 30},
		{UserID: user.ID, CategoryID: transport.ID, Month: july, Percentage: 70},
	}))

	rows, err := s.GetMonthlyStats(ctx, user.ID, july)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Transport", rows[0].CategoryName)
	assert.InDelta(t, 70.0, rows[0].Percentage, 0.001)
	assert.Equal(t, "Food & Drink", rows[1].CategoryName)

	other, err := s.GetMonthlyStats(ctx, user.ID, july.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRecommendations(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	user := seedUser(t, s, "ext-1")

	august := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	september := august.AddDate(0, 1, 0)

	for _, rec := range []model.Recommendation{
		{UserID: user.ID, StockName: "LG Chem", Score: 78, CreatedAt: august.AddDate(0, 0, 3)},
		{UserID: user.ID, StockName: "Samsung Electronics", Score: 85, CreatedAt: august.AddDate(0, 0, 3)},
		{UserID: user.ID, StockName: "Naver", Score: 82, CreatedAt: august.AddDate(0, 0, 3)},
		{UserID: user.ID, StockName: "Kakao", Score: 95, CreatedAt: august.AddDate(0, -1, 0)},
	} {
		r := rec
		require.NoError(t, s.SaveRecommendation(ctx, &r))
		assert.NotZero(t, r.ID)
	}

	t.Run("period filter and score ordering", func(t *testing.T) {
		recs, err := s.GetRecommendationsByPeriod(ctx, user.ID, august, september)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "Samsung Electronics", recs[0].StockName)
		assert.Equal(t, "Naver", recs[1].StockName)
		assert.Equal(t, "LG Chem", recs[2].StockName)
	})

	t.Run("lookup by stock", func(t *testing.T) {
		rec, err := s.GetRecommendationByStock(ctx, user.ID, "Naver", august, september)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.InDelta(t, 82.0, rec.Score, 0.001)
	})

	t.Run("lookup outside window is nil", func(t *testing.T) {
		rec, err := s.GetRecommendationByStock(ctx, user.ID, "Kakao", august, september)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("read is capped at three rows", func(t *testing.T) {
		extra := model.Recommendation{UserID: user.ID, StockName: "Coupang", Score: 90, CreatedAt: august.AddDate(0, 0, 4)}
		require.NoError(t, s.SaveRecommendation(ctx, &extra))

		recs, err := s.GetRecommendationsByPeriod(ctx, user.ID, august, september)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, "Coupang", recs[0].StockName)
		assert.Equal(t, "Samsung Electronics", recs[1].StockName)
		assert.Equal(t, "Naver", recs[2].StockName)
	})
}

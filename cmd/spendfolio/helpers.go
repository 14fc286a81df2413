package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/spendfolio/spendfolio/internal/common"
	"github.com/spendfolio/spendfolio/internal/llm"
	"github.com/spendfolio/spendfolio/internal/service"
	"github.com/spendfolio/spendfolio/internal/stockapi"
	"github.com/spendfolio/spendfolio/internal/storage"
)

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/spendfolio/spendfolio.db"
	}
	dbPath = expandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("could not open the database", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("could not migrate the database", err)
	}

	return store, nil
}

// initLLMClient builds the generation client from config.
func initLLMClient(ctx context.Context) (llm.Client, error) {
	cfg := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}

	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, common.NewUserError("could not initialize the AI provider (check llm.provider and llm.api_key)", err)
	}
	return client, nil
}

// initStockClient builds the market price client from config.
func initStockClient() (*stockapi.Client, error) {
	client, err := stockapi.NewClient(stockapi.Config{
		ServiceKey: viper.GetString("stock.service_key"),
		BaseURL:    viper.GetString("stock.base_url"),
		Timeout:    viper.GetDuration("stock.timeout"),
	}, nil)
	if err != nil {
		return nil, common.NewUserError("could not initialize the market data client (check stock.service_key)", err)
	}
	return client, nil
}

// expandPath expands ~ and environment variables in a path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// llmClientConfig reads the retry settings shared by the classifier and engine.
func llmClientConfig() llm.Config {
	return llm.Config{
		MaxRetries: viper.GetInt("llm.max_retries"),
		RetryDelay: viper.GetDuration("llm.retry_delay"),
	}
}

// parseMonth parses a YYYY-MM flag into the first day of the month, UTC.
func parseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", s, err)
	}
	return t, nil
}

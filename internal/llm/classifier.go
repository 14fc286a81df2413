package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/spendfolio/spendfolio/internal/common"
	"github.com/spendfolio/spendfolio/internal/model"
	"github.com/spendfolio/spendfolio/internal/service"
)

// CategoryLister supplies the current set of known categories as prompt
// context for classification.
type CategoryLister interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
}

// Classifier maps store names to category labels using a generation API.
// Classification is purely advisory: it never persists anything and never
// returns an error, falling back to the default label instead.
type Classifier struct {
	client     Client
	categories CategoryLister
	logger     *slog.Logger
	retryOpts  service.RetryOptions
}

// NewClassifier creates a new generation-backed store classifier.
func NewClassifier(client Client, categories CategoryLister, cfg Config, logger *slog.Logger) *Classifier {
	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Classifier{
		client:     client,
		categories: categories,
		logger:     logger,
		retryOpts:  retryOpts,
	}
}

// Classify returns a category name for the store. Any failure along the way
// (category lookup, generation call, unusable response) yields the default
// label rather than an error.
func (c *Classifier) Classify(ctx context.Context, storeName string) string {
	names, err := c.categoryNames(ctx)
	if err != nil {
		c.logger.Error("failed to load categories for classification",
			"store", storeName,
			"error", err)
		return DefaultCategory
	}

	prompt := classifyPrompt(storeName, names)

	var category string
	err = common.WithRetry(ctx, func() error {
		response, err := c.client.Generate(ctx, prompt)
		if err != nil {
			c.logger.Warn("classification attempt failed",
				"store", storeName,
				"error", err)
			return &common.RetryableError{Err: err, Retryable: true}
		}
		category = response
		return nil
	}, c.retryOpts)

	if err != nil {
		c.logger.Error("classification failed, using default category",
			"store", storeName,
			"error", err)
		return DefaultCategory
	}

	category = cleanCategoryLabel(category)
	if category == "" {
		c.logger.Warn("empty classification response, using default category",
			"store", storeName)
		return DefaultCategory
	}

	c.logger.Info("classified store",
		"store", storeName,
		"category", category)
	return category
}

// categoryNames returns the known category names for prompt context.
func (c *Classifier) categoryNames(ctx context.Context) ([]string, error) {
	categories, err := c.categories.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
	}
	return names, nil
}

// cleanCategoryLabel reduces a model response to a single category label.
func cleanCategoryLabel(response string) string {
	label := cleanMarkdownWrapper(response)
	if idx := strings.IndexByte(label, '\n'); idx >= 0 {
		label = label[:idx]
	}
	label = strings.Trim(label, `"'`)
	return strings.TrimSpace(label)
}

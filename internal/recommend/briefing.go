package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spendfolio/spendfolio/internal/common"
	"github.com/spendfolio/spendfolio/internal/llm"
	"github.com/spendfolio/spendfolio/internal/model"
)

// GetBriefing returns an AI-written briefing for a stock recommended to the
// user this month. Callers always get a well-formed briefing: if the model
// call fails or its output cannot be repaired into valid JSON, a
// deterministic fallback briefing is returned instead of an error.
func (e *Engine) GetBriefing(ctx context.Context, externalUserID, stockName string) (*model.StockBriefing, error) {
	user, err := e.storage.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", common.ErrNotFound, externalUserID)
	}

	start, end := currentMonthWindow(e.clock.Now())
	rec, err := e.storage.GetRecommendationByStock(ctx, user.ID, stockName, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no recommendation for stock %s", common.ErrNotFound, stockName)
	}

	refDate := priorDay(e.clock.Now())
	score := int(math.Round(rec.Score))

	summary, err := e.spendingSummary(ctx, externalUserID)
	if err != nil {
		summary = ""
	}

	payload, err := e.generateBriefing(ctx, stockName, summary)
	if err != nil {
		e.logger.Error("briefing generation failed, using fallback",
			"stock", stockName,
			"error", err)
		return fallbackBriefing(stockName, score, refDate), nil
	}

	news := make([]model.BriefingNews, 0, len(payload.News))
	for _, item := range payload.News {
		news = append(news, model.BriefingNews{
			Date:    refDate,
			Link:    item.Link,
			Summary: item.Summary,
		})
	}

	return &model.StockBriefing{
		Reason: payload.Reason,
		Summary: model.BriefingSummary{
			Date:     refDate,
			Contents: payload.Contents,
		},
		News:  news,
		Score: score,
	}, nil
}

// generateBriefing asks the model for a briefing and repairs its JSON.
func (e *Engine) generateBriefing(ctx context.Context, stockName, summary string) (*llm.BriefingPayload, error) {
	prompt := llm.BriefingPrompt(stockName, summary)

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

	return llm.RepairBriefingJSON(response)
}

// fallbackBriefing builds the briefing served when the model output is
// unusable. It carries the recommendation score and a placeholder news item
// so the caller still sees a complete object.
func fallbackBriefing(stockName string, score int, refDate time.Time) *model.StockBriefing {
	return &model.StockBriefing{
		Reason: fmt.Sprintf("%s was recommended based on your recent spending pattern.", stockName),
		Summary: model.BriefingSummary{
			Date:     refDate,
			Contents: fmt.Sprintf("A market summary for %s is currently unavailable. Please check back later.", stockName),
		},
		News: []model.BriefingNews{
			{
				Date:    refDate,
				Link:    "",
				Summary: fmt.Sprintf("No recent news available for %s.", stockName),
			},
		},
		Score: score,
	}
}

// priorDay returns the UTC start of the day before ref.
func priorDay(ref time.Time) time.Time {
	ref = ref.UTC()
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -1)
}

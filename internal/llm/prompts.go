package llm

import (
	"fmt"
	"strings"
)

// DefaultCategory is the label used when a store cannot be classified.
const DefaultCategory = "Other"

// classifyPrompt builds the prompt asking the model to categorize a store.
func classifyPrompt(storeName string, categories []string) string {
	categoryList := "(none yet)"
	if len(categories) > 0 {
		categoryList = strings.Join(categories, ", ")
	}

	return fmt.Sprintf(`Classify the store "%s" into a spending category.

Existing categories (reuse one of these when it fits):
%s

Example category names:
Food & Drink, Transport, Shopping, Healthcare, Education, Entertainment, Utilities, Finance, Telecom, %s

Instructions:
1. If an existing category fits, respond with that exact category name.
2. Otherwise respond with a single short category label.
3. If the store genuinely cannot be categorized, respond with "%s".

Respond with the category name only, nothing else.`,
		storeName, categoryList, DefaultCategory, DefaultCategory)
}

// RecommendationPrompt builds the prompt asking the model for three stock
// picks derived from a spending summary.
func RecommendationPrompt(spendingSummary string) string {
	return fmt.Sprintf(`Analyze this user's spending pattern from last month and recommend 3 listed stocks, each with a relevance score from 0 to 100.

Spending pattern: %s

Requirements:
1. Pick stocks in industries connected to the spending pattern.
2. Use real, exchange-listed company names.
3. Respond with the exact company name (e.g. Samsung Electronics, LG Chem, Naver).
4. Score each pick 0-100 by how strongly it relates to the spending pattern.

Response format: "stock1:score1, stock2:score2, stock3:score3" (e.g. "Samsung Electronics:85, LG Chem:78, Naver:82")`,
		spendingSummary)
}

// BriefingPrompt builds the prompt asking the model for a briefing on a
// previously recommended stock.
func BriefingPrompt(stockName, spendingSummary string) string {
	context := ""
	if spendingSummary != "" {
		context = fmt.Sprintf("\nThe stock was recommended from this spending pattern: %s\n", spendingSummary)
	}

	return fmt.Sprintf(`Write a briefing about the stock "%s" for a retail investor.%s
Respond with a single JSON object in exactly this shape:
{"reason": "...", "contents": "...", "news": [{"link": "...", "summary": "..."}]}

Constraints:
- "reason": why this stock suits the user, 2-3 sentences.
- "contents": a current market summary for the stock, 3-4 sentences.
- "news": 1-3 recent news items with a link and a one-sentence summary each.
- No placeholder text. No markdown fencing. JSON only.`,
		stockName, context)
}

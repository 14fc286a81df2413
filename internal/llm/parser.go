package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spendfolio/spendfolio/internal/common"
)

const (
	// stockPickCount is the number of picks a recommendation response must
	// contain to be accepted.
	stockPickCount = 3
	// maxStockNameLen caps stock names coming back from the model.
	maxStockNameLen = 20
	// defaultPickScore replaces scores the model got wrong.
	defaultPickScore = 50
)

// StockPick is one parsed stock recommendation.
type StockPick struct {
	Name  string
	Score float64
}

// ParseStockPicks parses a "name:score, name:score, name:score" response.
// Items are split on the final colon so names containing stray colons still
// parse; a non-numeric or out-of-range score falls back to the default.
// The result is accepted only when exactly three well-formed picks remain;
// anything else is rejected wholesale.
func ParseStockPicks(content string) ([]StockPick, error) {
	content = cleanMarkdownWrapper(content)

	items := strings.Split(content, ",")
	picks := make([]StockPick, 0, stockPickCount)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name := item
		score := float64(defaultPickScore)
		if idx := strings.LastIndex(item, ":"); idx >= 0 {
			name = strings.TrimSpace(item[:idx])
			score = parsePickScore(item[idx+1:])
		}

		if name == "" {
			continue
		}
		if runes := []rune(name); len(runes) > maxStockNameLen {
			name = string(runes[:maxStockNameLen])
		}

		picks = append(picks, StockPick{Name: name, Score: score})
		if len(picks) == stockPickCount {
			break
		}
	}

	if len(picks) != stockPickCount {
		return nil, fmt.Errorf("%w: expected %d stock picks, got %d",
			common.ErrMalformedResponse, stockPickCount, len(picks))
	}

	return picks, nil
}

// parsePickScore parses a relevance score, substituting the default for
// anything non-numeric or outside [0, 100].
func parsePickScore(s string) float64 {
	score, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || score < 0 || score > 100 {
		return defaultPickScore
	}
	return score
}

// BriefingNewsPayload is one news item in a raw briefing response.
type BriefingNewsPayload struct {
	Link    string `json:"link"`
	Summary string `json:"summary"`
}

// BriefingPayload is the structured content of a briefing response before
// any domain mapping. It is untrusted model output.
type BriefingPayload struct {
	Reason   string                `json:"reason"`
	Contents string                `json:"contents"`
	News     []BriefingNewsPayload `json:"news"`
}

// RepairBriefingJSON parses a briefing response, tolerating the usual model
// sloppiness: markdown code fences are stripped and trailing chatter after
// the final closing brace is discarded before unmarshalling.
func RepairBriefingJSON(content string) (*BriefingPayload, error) {
	content = cleanMarkdownWrapper(content)

	if idx := strings.LastIndex(content, "}"); idx >= 0 {
		content = content[:idx+1]
	}

	var payload BriefingPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: failed to parse briefing JSON: %v", common.ErrMalformedResponse, err)
	}

	if strings.TrimSpace(payload.Reason) == "" || strings.TrimSpace(payload.Contents) == "" {
		return nil, fmt.Errorf("%w: briefing missing reason or contents", common.ErrMalformedResponse)
	}

	return &payload, nil
}

// cleanMarkdownWrapper strips markdown code-fence markers that models wrap
// around structured output despite instructions not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "```")
		}
	}
	if strings.HasSuffix(content, "```") {
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}

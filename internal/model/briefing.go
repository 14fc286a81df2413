package model

import "time"

// BriefingNews is a single news item attached to a stock briefing.
type BriefingNews struct {
	Date    time.Time
	Link    string
	Summary string
}

// BriefingSummary is the market summary section of a briefing.
type BriefingSummary struct {
	Date     time.Time
	Contents string
}

// StockBriefing is the AI-generated rationale and market context for a
// previously recommended stock. Callers always receive a well-formed
// briefing; unusable model output is replaced with a deterministic fallback.
type StockBriefing struct {
	Reason  string
	Summary BriefingSummary
	News    []BriefingNews
	Score   int
}

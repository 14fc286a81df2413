package model

import "time"

// Recommendation is one AI-recommended stock for a user. At most three
// recommendations exist per (user, calendar month); once three exist the set
// is frozen for that month.
type Recommendation struct {
	CreatedAt time.Time
	UserID    string
	StockName string
	ID        int64
	Score     float64 // relevance, 0-100
}

// RecommendationSet is the caller-facing view of a month's recommendations.
type RecommendationSet struct {
	Date   time.Time
	Stocks []string // ordered by descending score
}

package model

import "time"

// MonthlyStat holds one category's share of a user's total spend for one
// calendar month. For a fixed (user, month) the stat set is written at most
// once and then treated as authoritative.
type MonthlyStat struct {
	Month        time.Time // first instant of the month, UTC
	UserID       string
	CategoryName string
	CategoryID   int
	Percentage   float64 // 0-100
}

// CategoryPercentage is one line of a spending summary.
type CategoryPercentage struct {
	Category   string
	Percentage float64
}

// SpendingStats is a user's aggregated spending breakdown for one period.
type SpendingStats struct {
	PeriodStart time.Time
	Stats       []CategoryPercentage // sorted by percentage descending
}

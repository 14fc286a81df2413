package model

import "time"

// StockQuote is a market quote for a single stock on a basis date. Quotes are
// produced fresh on every lookup and never persisted.
type StockQuote struct {
	Date            time.Time
	Name            string
	Current         float64
	FluctuationRate float64
	VsAmount        float64
}

package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// ConsumptionRecord is a single purchase a user made at a store.
// Records are immutable once written.
type ConsumptionRecord struct {
	PurchasedAt time.Time
	ID          string
	UserID      string
	StoreID     string
	Hash        string
	Amount      float64
}

// GenerateHash creates a unique hash for duplicate detection on import.
func (c *ConsumptionRecord) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		c.PurchasedAt.UTC().Format(time.RFC3339),
		c.Amount,
		c.StoreID,
		c.UserID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

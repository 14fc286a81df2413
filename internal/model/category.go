package model

import "time"

// Category is a spending category, globally unique by name. Categories are
// created on first use by the classifier and never deleted.
type Category struct {
	CreatedAt time.Time
	Name      string
	ID        int
}

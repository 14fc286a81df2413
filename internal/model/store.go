package model

import "time"

// Store is a merchant a user has spent money at. A store gets a category
// assigned at most once; once set it is never reassigned.
type Store struct {
	CreatedAt  time.Time
	ID         string
	Name       string
	CategoryID *int // nil until the classifier assigns one
}

// Categorized reports whether the store already has a category.
func (s *Store) Categorized() bool {
	return s.CategoryID != nil
}

// Package model defines the core domain types shared across the application.
package model

import "time"

// User links the external identity provider's identifier to the internal one.
// Users are owned by the identity subsystem; this application only reads them.
type User struct {
	CreatedAt  time.Time
	ID         string // internal UUID
	ExternalID string // opaque identifier from the identity provider
}
